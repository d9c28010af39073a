package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/service/tokens"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

const (
	JWTTokenExpire             = 24 * time.Hour
	JWTVerificationTokenExpire = 48 * time.Hour
)

type UserService struct {
	uow            uow.UOW
	userRepo       UserRepository
	hasher         PasswordHasher
	mailer         Mailer
	jwtTokenSecret []byte
	logger         *logrus.Logger
}

func NewUserService(
	u uow.UOW,
	jwtTokenSecret []byte,
	hasher PasswordHasher,
	mailer Mailer,
	l *logrus.Logger,
) (*UserService, error) {
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &UserService{
		uow:            u,
		userRepo:       userRepo,
		hasher:         hasher,
		mailer:         mailer,
		jwtTokenSecret: jwtTokenSecret,
		logger:         l,
	}, nil
}

type RegisterUserArgs struct {
	Username string
	Email    string
	Password string
	Role     domain.RoleType
}

// Register создает юзера и после коммита отправляет письмо подтверждения email
// (fire-and-forget: ошибка отправки логируется, но регистрацию не откатывает).
// Дубликат юзернейма или email возвращается как domain.ErrDuplicateKey.
func (s *UserService) Register(ctx context.Context, args RegisterUserArgs) (*domain.User, error) {
	password, hashErr := s.hasher.HashPassword(args.Password)
	if hashErr != nil {
		return nil, fmt.Errorf("registering user: %s", hashErr.Error())
	}

	var user *domain.User
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}
		var userErr error
		user, userErr = userRepo.Create(c, repoargs.CreateUser{
			Username: args.Username,
			Email:    args.Email,
			Password: password,
			Role:     args.Role,
		})
		return userErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("registering user: %w", txErr)
	}

	s.sendVerificationMail(*user)
	return user, nil
}

func (s *UserService) sendVerificationMail(user domain.User) {
	token, tokenErr := tokens.GenerateVerificationJWT(user.ID, JWTVerificationTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		s.logger.WithError(tokenErr).WithField("UserID", user.ID).Error("generating verification token")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second) //nolint:mnd
		defer cancel()
		if sendErr := s.mailer.SendVerification(ctx, user.Email, user.Username, token); sendErr != nil {
			s.logger.WithError(sendErr).WithField("UserID", user.ID).Error("sending verification email")
		}
	}()
}

type LoginUserArgs struct {
	Username string
	Password string
}

// Login аутентифицирует по паре логин/пароль. Возвращает юзера и сессионный
// jwt токен. Для неизвестного юзернейма - domain.ErrRecordNotFound, для
// неверного пароля - domain.ErrPasswordMissMatch.
func (s *UserService) Login(ctx context.Context, args LoginUserArgs) (*domain.User, string, error) {
	user, findErr := s.userRepo.FindByUsername(ctx, args.Username)
	if findErr != nil {
		return nil, "", fmt.Errorf("login: %w", findErr)
	}

	if !s.hasher.ComparePassword(args.Password, user.Password) {
		return nil, "", fmt.Errorf("login: %w", domain.ErrPasswordMissMatch)
	}

	token, tokenErr := tokens.GenerateUserJWT(user.ID, user.Username, JWTTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", fmt.Errorf("login: %s", tokenErr.Error())
	}
	return user, token, nil
}

// Verify отмечает юзера из verification-токена как подтвержденного.
func (s *UserService) Verify(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, claimsErr := tokens.ValidateVerificationJWT(tokenString, s.jwtTokenSecret)
	if claimsErr != nil {
		return nil, fmt.Errorf("verifying user: %w", claimsErr)
	}

	user, markErr := s.userRepo.MarkVerified(ctx, claims.ID)
	if markErr != nil {
		return nil, fmt.Errorf("verifying user: %w", markErr)
	}
	return user, nil
}

// FindByID используется шлюзом авторизации для резолва владельца токена.
func (s *UserService) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return user, nil
}

type UpdateProfileArgs struct {
	Username *string
	Password *string
}

// UpdateProfile обновляет юзернейм и/или пароль текущего юзера.
func (s *UserService) UpdateProfile(
	ctx context.Context,
	caller *domain.User,
	args UpdateProfileArgs,
) (*domain.User, error) {
	updateArgs := repoargs.UpdateUser{Username: args.Username}
	if args.Password != nil {
		hashed, hashErr := s.hasher.HashPassword(*args.Password)
		if hashErr != nil {
			return nil, fmt.Errorf("updating profile: %s", hashErr.Error())
		}
		updateArgs.Password = &hashed
	}

	user, updErr := s.userRepo.Update(ctx, caller.ID, updateArgs)
	if updErr != nil {
		return nil, fmt.Errorf("updating profile: %w", updErr)
	}
	return user, nil
}
