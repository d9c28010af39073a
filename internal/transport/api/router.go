package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-market/internal/storage/images"
	"github.com/fsdevblog/groph-market/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	TokenRoute        = "/auth/token"
	VerificationRoute = "/auth/verification"
	RegistrationRoute = "/user/registration"

	UserGroup     = "/user"
	ProductGroup  = "/product"
	BusinessGroup = "/business"
	OrderGroup    = "/order"
	AdminGroup    = "/admin"

	// StaticImagesRoute публичный префикс, под которым отдаются загруженные файлы.
	StaticImagesRoute = "/static/images"
)

type RouterArgs struct {
	Logger          *logrus.Logger
	UserService     UserServicer
	ProductService  ProductServicer
	BusinessService BusinessServicer
	OrderService    OrderServicer
	AdminService    AdminServicer
	ImageStore      *images.Store
	JWTSecretKey    []byte
	// StaticDir каталог с загруженными изображениями, пустая строка отключает раздачу.
	StaticDir string
	BaseURL   string
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	if args.StaticDir != "" {
		r.Static(StaticImagesRoute, args.StaticDir)
	}

	authHandler := NewAuthHandler(args.UserService)
	usersHandler := NewUsersHandler(args.UserService, args.BusinessService, args.OrderService)
	productsHandler := NewProductsHandler(args.ProductService, args.ImageStore, args.BaseURL)
	businessHandler := NewBusinessHandler(args.BusinessService, args.ImageStore, args.BaseURL)
	ordersHandler := NewOrdersHandler(args.OrderService)
	adminHandler := NewAdminHandler(args.AdminService)

	auth := middlewares.AuthRequired(args.JWTSecretKey, args.UserService)

	r.POST(TokenRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Token)
	r.GET(VerificationRoute, authHandler.Verification)
	r.POST(RegistrationRoute, middlewares.NonAuthRequired(args.JWTSecretKey), usersHandler.Register)

	user := r.Group(UserGroup, auth)
	user.POST("/me", usersHandler.Me)
	user.PUT("/", usersHandler.Update)

	// чтение каталога публичное, мутации только для авторизованных.
	product := r.Group(ProductGroup)
	product.GET("/", productsHandler.Index)
	product.GET("/:id", productsHandler.Show)
	product.POST("/products", auth, productsHandler.Create)
	product.PUT("/:id", auth, productsHandler.Update)
	product.DELETE("/:id", auth, productsHandler.Delete)
	product.POST("/product_image/:id", auth, productsHandler.UploadImage)

	business := r.Group(BusinessGroup, auth)
	business.POST("/", businessHandler.Create)
	business.PUT("/:id", businessHandler.Update)
	business.DELETE("/:id", businessHandler.Delete)
	business.GET("/me", businessHandler.Me)
	business.GET("/default", businessHandler.Default)
	business.POST("/business_logo/:id", businessHandler.UploadLogo)

	order := r.Group(OrderGroup, auth)
	order.POST("/", ordersHandler.Create)
	order.GET("/", ordersHandler.Index)
	order.PUT("/status/:id", ordersHandler.UpdateStatus)
	order.PUT("/:id", ordersHandler.Update)
	order.DELETE("/:id", ordersHandler.Delete)

	admin := r.Group(AdminGroup, auth)
	admin.GET("/", adminHandler.Users)
	admin.DELETE("/:id", adminHandler.DeleteUser)
	admin.GET("/get_products", adminHandler.Products)
	admin.DELETE("/delete_products/:id", adminHandler.DeleteProduct)
	admin.GET("/get_orders", adminHandler.Orders)
	admin.PUT("/:id", adminHandler.UpdateOrderStatus)

	return r, nil
}
