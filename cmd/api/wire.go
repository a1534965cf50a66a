//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 运行 `wire gen ./cmd/api` 生成wire_gen.go；main.go当前保留手动装配，
// 两者产出一致，切换到Wire时用InitializeApp()替换main里的组装段落
package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appcashier "github.com/xiebiao/pharmacy/internal/application/cashier"
	appcatalog "github.com/xiebiao/pharmacy/internal/application/catalog"
	applicense "github.com/xiebiao/pharmacy/internal/application/license"
	appreservation "github.com/xiebiao/pharmacy/internal/application/reservation"
	appsale "github.com/xiebiao/pharmacy/internal/application/sale"
	appstock "github.com/xiebiao/pharmacy/internal/application/stock"
	apptransfer "github.com/xiebiao/pharmacy/internal/application/transfer"
	appuser "github.com/xiebiao/pharmacy/internal/application/user"
	"github.com/xiebiao/pharmacy/internal/domain/license"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/domain/user"
	"github.com/xiebiao/pharmacy/internal/infrastructure/config"
	"github.com/xiebiao/pharmacy/internal/infrastructure/notify"
	"github.com/xiebiao/pharmacy/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/pharmacy/internal/infrastructure/persistence/redis"
	apihttp "github.com/xiebiao/pharmacy/internal/interface/http"
	"github.com/xiebiao/pharmacy/internal/interface/http/handler"
	"github.com/xiebiao/pharmacy/internal/interface/http/middleware"
	"github.com/xiebiao/pharmacy/pkg/jwt"
	"github.com/xiebiao/pharmacy/pkg/mq"
)

// infrastructureSet 基础设施：配置、数据库、Redis、事件通知
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
	provideNotifier,
)

// repositorySet 仓储层
// TxManager是具体类型，按各应用包的消费方接口绑定
var repositorySet = wire.NewSet(
	mysql.NewTxManager,
	wire.Bind(new(appstock.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appreservation.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(apptransfer.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appsale.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appcashier.TxManager), new(*mysql.TxManager)),

	mysql.NewUserRepository,
	mysql.NewProductRepository,
	mysql.NewStoreRepository,
	mysql.NewLotRepository,
	mysql.NewMovementRepository,
	mysql.NewReservationRepository,
	mysql.NewReservationHolds,
	mysql.NewTransferRepository,
	mysql.NewSaleRepository,
	mysql.NewPaymentRepository,
	mysql.NewSessionRepository,
	mysql.NewCashMovementRepository,
	mysql.NewLicenseRepository,

	provideSessionStore,
	redis.NewCachedFeatureChecker,
	wire.Bind(new(license.FeatureChecker), new(*redis.CachedFeatureChecker)),
	wire.Bind(new(applicense.CacheInvalidator), new(*redis.CachedFeatureChecker)),
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	user.NewService,
	stock.NewService,
)

// applicationSet 应用层用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshTokenUseCase,

	appcatalog.NewCreateProductUseCase,
	appcatalog.NewUpdateProductUseCase,
	appcatalog.NewListProductsUseCase,
	appcatalog.NewCreateStoreUseCase,
	appcatalog.NewListStoresUseCase,

	appstock.NewReceiveStockUseCase,
	appstock.NewAdjustStockUseCase,
	appstock.NewAvailabilityUseCase,
	appstock.NewListLotsUseCase,
	appstock.NewListMovementsUseCase,

	appsale.NewCreateSaleUseCase,
	appsale.NewSettleSaleUseCase,
	appsale.NewCancelSaleUseCase,
	appsale.NewGetSaleUseCase,
	appsale.NewListSalesUseCase,

	appcashier.NewOpenSessionUseCase,
	appcashier.NewCloseSessionUseCase,
	appcashier.NewCashInOutUseCase,
	appcashier.NewGetSessionUseCase,
	appcashier.NewListSessionsUseCase,

	appreservation.NewRequestReservationUseCase,
	appreservation.NewApproveReservationUseCase,
	appreservation.NewRejectReservationUseCase,
	appreservation.NewCancelReservationUseCase,
	appreservation.NewFulfillReservationUseCase,
	appreservation.NewListReservationsUseCase,

	apptransfer.NewCreateTransferUseCase,
	apptransfer.NewSendTransferUseCase,
	apptransfer.NewReceiveTransferUseCase,
	apptransfer.NewCancelTransferUseCase,
	apptransfer.NewGetTransferUseCase,
	apptransfer.NewListTransfersUseCase,

	applicense.NewUpdatePlanUseCase,
	applicense.NewGetPlanUseCase,
)

// interfaceSet 接口层：中间件、处理器、路由
var interfaceSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	middleware.NewLicenseMiddleware,

	handler.NewUserHandler,
	handler.NewCatalogHandler,
	handler.NewStockHandler,
	handler.NewSaleHandler,
	handler.NewCashierHandler,
	handler.NewReservationHandler,
	handler.NewTransferHandler,
	handler.NewLicenseHandler,
	wire.Struct(new(apihttp.Handlers), "*"),

	provideRouter,
)

// provideJWTManager 从配置提取JWT参数
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建会话存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideNotifier 按配置选择事件通知实现
// MQ未开启时降级为no-op，开发环境无需RabbitMQ
func provideNotifier(cfg *config.Config) (notify.Notifier, error) {
	if !cfg.MQ.Enabled {
		return notify.NewNoopNotifier(), nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		return nil, err
	}
	return notify.NewAMQPNotifier(publisher), nil
}

// provideRouter 装配Gin引擎
func provideRouter(
	cfg *config.Config,
	handlers apihttp.Handlers,
	authMW *middleware.AuthMiddleware,
	licenseMW *middleware.LicenseMiddleware,
) *gin.Engine {
	return apihttp.NewRouter(handlers, authMW, licenseMW, cfg.Server.Mode)
}

// InitializeApp 初始化整个应用（Wire Injector）
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil
}
