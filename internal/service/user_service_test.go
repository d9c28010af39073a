package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/logger"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/service/mocks"
	"github.com/fsdevblog/groph-market/internal/service/tokens"
	"github.com/fsdevblog/groph-market/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-market/pkg/uow/mocks"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockUOW      *uowmocks.MockUOW
	mockTX       *uowmocks.MockTX
	mockUserRepo *mocks.MockUserRepository
	mockPsswd    *mocks.MockPasswordHasher
	mockMailer   *mocks.MockMailer
	jwtSecret    []byte
	userService  *UserService
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(mockCtrl)
	s.mockTX = uowmocks.NewMockTX(mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(mockCtrl)
	s.mockPsswd = mocks.NewMockPasswordHasher(mockCtrl)
	s.mockMailer = mocks.NewMockMailer(mockCtrl)

	s.jwtSecret = []byte("secret")

	// Мок получения репозитория из uow. Выполняется в инициализации сервиса.
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()

	// Инициализация сервиса.
	userService, servErr := NewUserService(s.mockUOW, s.jwtSecret, s.mockPsswd, s.mockMailer, logger.New(io.Discard))
	s.Require().NoError(servErr)
	s.userService = userService
}

func (s *UserServiceTestSuite) TestLogin() {
	savedUserUsername := "saved_user"
	// аргументы вызовов для кейсов ниже.
	argsOk := LoginUserArgs{
		Username: savedUserUsername,
		Password: "<PASSWORD>",
	}
	argsWrongUsername := LoginUserArgs{
		Username: "wrong_user",
		Password: "<PASSWORD>",
	}
	argsWrongPass := LoginUserArgs{
		Username: savedUserUsername,
		Password: "wrong pass",
	}

	validHashPassword := "hash ok"

	savedUser := domain.User{
		ID:        1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Username:  savedUserUsername,
		Password:  validHashPassword,
		Role:      domain.RoleCustomer,
	}

	// Мок для сравнения пароля.
	s.mockPsswd.EXPECT().ComparePassword(argsOk.Password, validHashPassword).Return(true)
	s.mockPsswd.EXPECT().ComparePassword(argsWrongUsername.Password, validHashPassword).Times(0)
	s.mockPsswd.EXPECT().ComparePassword(argsWrongPass.Password, validHashPassword).Return(false)

	// Мок репозитория.
	s.mockUserRepo.EXPECT().
		FindByUsername(gomock.Any(), savedUserUsername).
		Return(&savedUser, nil).Times(2)

	s.mockUserRepo.EXPECT().
		FindByUsername(gomock.Any(), argsWrongUsername.Username).
		Return(nil, domain.ErrRecordNotFound)

	cases := []struct {
		name    string
		args    LoginUserArgs
		wantErr error
	}{
		{name: "ok", args: argsOk, wantErr: nil},
		{name: "wrong username", args: argsWrongUsername, wantErr: domain.ErrRecordNotFound},
		{name: "wrong password", args: argsWrongPass, wantErr: domain.ErrPasswordMissMatch},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			user, tokenStr, err := s.userService.Login(s.T().Context(), t.args)
			s.Require().ErrorIs(err, t.wantErr)

			if t.wantErr == nil {
				s.Require().NotNil(user)
				s.NotEmpty(tokenStr)

				token, tokenErr := tokens.ValidateUserJWT(tokenStr, s.jwtSecret)
				s.Require().NoError(tokenErr)
				s.Equal(token.Claims.(*tokens.UserClaims).ID, savedUser.ID) //nolint:errcheck
			}
		})
	}
}

func (s *UserServiceTestSuite) TestRegister() {
	argsOk := RegisterUserArgs{
		Username: gofakeit.Username(),
		Email:    gofakeit.Email(),
		Password: "<PASSWORD>",
		Role:     domain.RoleCustomer,
	}
	argsDuplicate := RegisterUserArgs{
		Username: "duplicateUser",
		Email:    "duplicate@example.com",
		Password: "<PASSWORD>",
		Role:     domain.RoleCustomer,
	}

	validHashedPassword := "hashedPassword"

	createdUser := domain.User{
		ID:        1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Username:  argsOk.Username,
		Email:     argsOk.Email,
		Password:  validHashedPassword,
		Role:      domain.RoleCustomer,
	}

	// Мок транзакции uow.
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).MinTimes(1)

	// Мок хеширования пароля.
	s.mockPsswd.EXPECT().HashPassword(argsOk.Password).Return(validHashedPassword, nil).Times(2)

	// Мок репозитория.
	s.mockUserRepo.EXPECT().
		Create(gomock.Any(), gomock.Eq(repoargs.CreateUser{
			Username: argsOk.Username,
			Email:    argsOk.Email,
			Password: validHashedPassword,
			Role:     domain.RoleCustomer,
		})).
		Return(&createdUser, nil)

	s.mockUserRepo.EXPECT().
		Create(gomock.Any(), gomock.Eq(repoargs.CreateUser{
			Username: argsDuplicate.Username,
			Email:    argsDuplicate.Email,
			Password: validHashedPassword,
			Role:     domain.RoleCustomer,
		})).
		Return(nil, domain.ErrDuplicateKey)

	// Мок uow.
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).AnyTimes()

	// Письмо уходит в фоне, дожидаемся его через канал.
	mailSent := make(chan string, 1)
	s.mockMailer.EXPECT().
		SendVerification(gomock.Any(), argsOk.Email, argsOk.Username, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, token string) error {
			mailSent <- token
			return nil
		})

	cases := []struct {
		name     string
		args     RegisterUserArgs
		wantErr  error
		wantUser *domain.User
		wantMail bool
	}{
		{
			name:     "ok",
			args:     argsOk,
			wantUser: &createdUser,
			wantMail: true,
		},
		{
			name:    "duplicate username or email",
			args:    argsDuplicate,
			wantErr: domain.ErrDuplicateKey,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			user, err := s.userService.Register(s.T().Context(), t.args)

			s.Require().ErrorIs(err, t.wantErr)
			s.Equal(t.wantUser, user)

			if t.wantMail {
				select {
				case token := <-mailSent:
					// в письме уходит verification токен, не сессионный.
					claims, claimsErr := tokens.ValidateVerificationJWT(token, s.jwtSecret)
					s.Require().NoError(claimsErr)
					s.Equal(createdUser.ID, claims.ID)
				case <-time.After(time.Second):
					s.Fail("verification mail was not sent")
				}
			}
		})
	}
}

func (s *UserServiceTestSuite) TestVerify() {
	var userID int64 = 42

	token, tokenErr := tokens.GenerateVerificationJWT(userID, time.Hour, s.jwtSecret)
	s.Require().NoError(tokenErr)

	expiredToken, expTokenErr := tokens.GenerateVerificationJWT(userID, -time.Hour, s.jwtSecret)
	s.Require().NoError(expTokenErr)

	verifiedUser := domain.User{ID: userID, Username: "verified", IsVerified: true}

	s.mockUserRepo.EXPECT().
		MarkVerified(gomock.Any(), userID).
		Return(&verifiedUser, nil)

	s.Run("ok", func() {
		user, err := s.userService.Verify(s.T().Context(), token)
		s.Require().NoError(err)
		s.True(user.IsVerified)
	})

	s.Run("expired token", func() {
		_, err := s.userService.Verify(s.T().Context(), expiredToken)
		s.Require().Error(err)
	})

	s.Run("garbage token", func() {
		_, err := s.userService.Verify(s.T().Context(), "garbage")
		s.Require().Error(err)
	})
}

func (s *UserServiceTestSuite) TestUpdateProfile() {
	caller := &domain.User{ID: 7, Username: "old_name", Role: domain.RoleCustomer}

	newUsername := "new_username"
	newPassword := "NewPassword1!"
	hashedPassword := "hashed new password"

	s.mockPsswd.EXPECT().HashPassword(newPassword).Return(hashedPassword, nil)

	s.mockUserRepo.EXPECT().
		Update(gomock.Any(), caller.ID, gomock.Eq(repoargs.UpdateUser{
			Username: &newUsername,
			Password: &hashedPassword,
		})).
		Return(&domain.User{ID: caller.ID, Username: newUsername}, nil)

	user, err := s.userService.UpdateProfile(s.T().Context(), caller, UpdateProfileArgs{
		Username: &newUsername,
		Password: &newPassword,
	})
	s.Require().NoError(err)
	s.Equal(newUsername, user.Username)
}
