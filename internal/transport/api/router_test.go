package api

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/service/tokens"
	"github.com/fsdevblog/groph-market/internal/storage/images"
	"github.com/fsdevblog/groph-market/internal/transport/api/mocks"
)

var jwtTestSecret = []byte("test-secret")

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// handlerSuite общая обвязка для тестов хендлеров: роутер со всеми
// замоканными сервисами и хелперы авторизации.
type handlerSuite struct {
	suite.Suite
	mockCtrl    *gomock.Controller
	userSvc     *mocks.MockUserServicer
	productSvc  *mocks.MockProductServicer
	businessSvc *mocks.MockBusinessServicer
	orderSvc    *mocks.MockOrderServicer
	adminSvc    *mocks.MockAdminServicer
	imageDir    string
	router      *gin.Engine
}

func (s *handlerSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.userSvc = mocks.NewMockUserServicer(s.mockCtrl)
	s.productSvc = mocks.NewMockProductServicer(s.mockCtrl)
	s.businessSvc = mocks.NewMockBusinessServicer(s.mockCtrl)
	s.orderSvc = mocks.NewMockOrderServicer(s.mockCtrl)
	s.adminSvc = mocks.NewMockAdminServicer(s.mockCtrl)

	s.imageDir = s.T().TempDir()
	imageStore, storeErr := images.NewStore(s.imageDir)
	s.Require().NoError(storeErr)

	router, routerErr := New(RouterArgs{
		UserService:     s.userSvc,
		ProductService:  s.productSvc,
		BusinessService: s.businessSvc,
		OrderService:    s.orderSvc,
		AdminService:    s.adminSvc,
		ImageStore:      imageStore,
		JWTSecretKey:    jwtTestSecret,
		BaseURL:         "http://localhost:8080",
	})
	s.Require().NoError(routerErr)
	s.router = router
}

func (s *handlerSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

// authHeader выдает Bearer заголовок для юзера и мокает его резолв
// в AuthRequired middleware.
func (s *handlerSuite) authHeader(user *domain.User) string {
	token, tokenErr := tokens.GenerateUserJWT(user.ID, user.Username, time.Hour, jwtTestSecret)
	s.Require().NoError(tokenErr)

	s.userSvc.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil).AnyTimes()
	return "Bearer " + token
}

func (s *handlerSuite) decodeBody(resp *http.Response) map[string]any {
	defer resp.Body.Close() //nolint:errcheck

	var body map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	return body
}
