package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-market/internal/config"
	"github.com/fsdevblog/groph-market/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/service"
	"github.com/fsdevblog/groph-market/internal/service/psswd"
	"github.com/fsdevblog/groph-market/internal/storage/images"
	"github.com/fsdevblog/groph-market/internal/transport/api"
	"github.com/fsdevblog/groph-market/internal/transport/events"
	"github.com/fsdevblog/groph-market/internal/transport/mail"
	"github.com/fsdevblog/groph-market/pkg/uow"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app on %s", a.Config.RunAddress)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	imageStore, storeErr := images.NewStore(a.Config.StaticDir)
	if storeErr != nil {
		return fmt.Errorf("app run: %s", storeErr.Error())
	}

	services, sErr := service.Factory(service.FactoryArgs{
		UOW:       unitOfWork,
		JWTSecret: []byte(a.Config.JWTSecret),
		Hasher:    psswd.PasswordHash(""),
		Mailer:    a.mailer(),
		Publisher: a.publisher(),
		Logger:    a.Logger,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router, routerErr := api.New(api.RouterArgs{
		Logger:          a.Logger,
		UserService:     services.UserService,
		ProductService:  services.ProductService,
		BusinessService: services.BusinessService,
		OrderService:    services.OrderService,
		AdminService:    services.AdminService,
		ImageStore:      imageStore,
		JWTSecretKey:    []byte(a.Config.JWTSecret),
		StaticDir:       a.Config.StaticDir,
		BaseURL:         a.Config.BaseURL,
	})
	if routerErr != nil {
		return fmt.Errorf("app run: %s", routerErr.Error())
	}

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

// mailer возвращает smtp клиент, либо лог-заглушку когда smtp не настроен.
func (a *App) mailer() service.Mailer {
	if a.Config.SMTPHost == "" {
		a.Logger.Warn("SMTP is not configured, verification links go to the log")
		return &mail.LogMailer{Logger: a.Logger}
	}
	return mail.NewClient(mail.SMTPConfig{
		Host:     a.Config.SMTPHost,
		Port:     a.Config.SMTPPort,
		Username: a.Config.SMTPUsername,
		Password: a.Config.SMTPPassword,
		From:     a.Config.SMTPFrom,
	}, a.Config.BaseURL)
}

// publisher возвращает kafka паблишер событий заказов, либо no-op заглушку
// когда брокеры не настроены.
func (a *App) publisher() service.EventPublisher {
	if len(a.Config.KafkaBrokers) == 0 {
		a.Logger.Warn("Kafka brokers are not configured, order events are disabled")
		return &events.NoopPublisher{}
	}
	return events.NewKafkaPublisher(a.Config.KafkaBrokers, a.Config.KafkaTopic)
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewUserRepository(dbtx)
		},
		repoargs.BusinessRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewBusinessRepository(dbtx)
		},
		repoargs.ProductRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewProductRepository(dbtx)
		},
		repoargs.OrderRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewOrderRepository(dbtx)
		},
	}
	for name, factoryFn := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factoryFn); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}
