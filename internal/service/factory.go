package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-market/pkg/uow"
)

type AppServices struct {
	UserService     *UserService
	ProductService  *ProductService
	BusinessService *BusinessService
	OrderService    *OrderService
	AdminService    *AdminService
}

type FactoryArgs struct {
	UOW       uow.UOW
	JWTSecret []byte
	Hasher    PasswordHasher
	Mailer    Mailer
	Publisher EventPublisher
	Logger    *logrus.Logger
}

func Factory(args FactoryArgs) (*AppServices, error) {
	userService, userServiceErr := NewUserService(args.UOW, args.JWTSecret, args.Hasher, args.Mailer, args.Logger)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	productService, productServiceErr := NewProductService(args.UOW)
	if productServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", productServiceErr.Error())
	}

	businessService, businessServiceErr := NewBusinessService(args.UOW)
	if businessServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", businessServiceErr.Error())
	}

	orderService, orderServiceErr := NewOrderService(args.UOW, args.Publisher, args.Logger)
	if orderServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", orderServiceErr.Error())
	}

	adminService, adminServiceErr := NewAdminService(args.UOW)
	if adminServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", adminServiceErr.Error())
	}

	return &AppServices{
		UserService:     userService,
		ProductService:  productService,
		BusinessService: businessService,
		OrderService:    orderService,
		AdminService:    adminService,
	}, nil
}
