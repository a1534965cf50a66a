package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appcashier "github.com/xiebiao/pharmacy/internal/application/cashier"
	appcatalog "github.com/xiebiao/pharmacy/internal/application/catalog"
	applicense "github.com/xiebiao/pharmacy/internal/application/license"
	appreservation "github.com/xiebiao/pharmacy/internal/application/reservation"
	appsale "github.com/xiebiao/pharmacy/internal/application/sale"
	appstock "github.com/xiebiao/pharmacy/internal/application/stock"
	apptransfer "github.com/xiebiao/pharmacy/internal/application/transfer"
	appuser "github.com/xiebiao/pharmacy/internal/application/user"
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
	"github.com/xiebiao/pharmacy/pkg/metrics"
	"github.com/xiebiao/pharmacy/pkg/mq"
	"github.com/xiebiao/pharmacy/pkg/tracing"
)

// main 主程序入口
// 依赖注入链：Repository ← Service ← UseCase ← Handler ← Router
// （wire.go提供等价的Wire装配，`wire gen ./cmd/api`生成）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化Prometheus指标
	metrics.InitMetrics()

	// 3. 初始化链路追踪（可选）
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化链路追踪失败: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	// 4. 初始化数据库与Redis
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. 事件通知（MQ未开启时降级为no-op，开发环境无需RabbitMQ）
	notifier := notify.NewNoopNotifier()
	if cfg.MQ.Enabled {
		publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化消息队列失败: %v", err)
		}
		defer publisher.Close()
		notifier = notify.NewAMQPNotifier(publisher)
	}

	// 6. 基础设施层
	txManager := mysql.NewTxManager(db)
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	storeRepo := mysql.NewStoreRepository(db)
	lotRepo := mysql.NewLotRepository(db)
	movementRepo := mysql.NewMovementRepository(db)
	reservationRepo := mysql.NewReservationRepository(db)
	reservationHolds := mysql.NewReservationHolds(db)
	transferRepo := mysql.NewTransferRepository(db)
	saleRepo := mysql.NewSaleRepository(db)
	paymentRepo := mysql.NewPaymentRepository(db)
	sessionRepo := mysql.NewSessionRepository(db)
	cashRepo := mysql.NewCashMovementRepository(db)
	licenseRepo := mysql.NewLicenseRepository(db)

	sessionStore := redis.NewSessionStore(redisClient)
	featureChecker := redis.NewCachedFeatureChecker(redisClient, licenseRepo)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 7. 领域层
	userService := user.NewService(userRepo)
	stockService := stock.NewService(lotRepo, movementRepo, reservationHolds)

	// 8. 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	refreshUseCase := appuser.NewRefreshTokenUseCase(userRepo, jwtManager)

	createProductUseCase := appcatalog.NewCreateProductUseCase(productRepo)
	updateProductUseCase := appcatalog.NewUpdateProductUseCase(productRepo)
	listProductsUseCase := appcatalog.NewListProductsUseCase(productRepo)
	createStoreUseCase := appcatalog.NewCreateStoreUseCase(storeRepo)
	listStoresUseCase := appcatalog.NewListStoresUseCase(storeRepo)

	receiveStockUseCase := appstock.NewReceiveStockUseCase(stockService, productRepo, txManager)
	adjustStockUseCase := appstock.NewAdjustStockUseCase(stockService, txManager)
	availabilityUseCase := appstock.NewAvailabilityUseCase(stockService)
	listLotsUseCase := appstock.NewListLotsUseCase(stockService)
	listMovementsUseCase := appstock.NewListMovementsUseCase(stockService)

	createSaleUseCase := appsale.NewCreateSaleUseCase(saleRepo, productRepo)
	settleSaleUseCase := appsale.NewSettleSaleUseCase(saleRepo, paymentRepo, productRepo,
		sessionRepo, cashRepo, stockService, txManager, notifier)
	cancelSaleUseCase := appsale.NewCancelSaleUseCase(saleRepo, txManager)
	getSaleUseCase := appsale.NewGetSaleUseCase(saleRepo, paymentRepo)
	listSalesUseCase := appsale.NewListSalesUseCase(saleRepo)

	openSessionUseCase := appcashier.NewOpenSessionUseCase(sessionRepo, txManager)
	closeSessionUseCase := appcashier.NewCloseSessionUseCase(sessionRepo, cashRepo, txManager)
	cashInOutUseCase := appcashier.NewCashInOutUseCase(sessionRepo, cashRepo, txManager)
	getSessionUseCase := appcashier.NewGetSessionUseCase(sessionRepo, cashRepo)
	listSessionsUseCase := appcashier.NewListSessionsUseCase(sessionRepo)

	requestReservationUseCase := appreservation.NewRequestReservationUseCase(
		reservationRepo, productRepo, storeRepo)
	approveReservationUseCase := appreservation.NewApproveReservationUseCase(
		reservationRepo, lotRepo, reservationHolds, txManager, notifier)
	rejectReservationUseCase := appreservation.NewRejectReservationUseCase(
		reservationRepo, txManager, notifier)
	cancelReservationUseCase := appreservation.NewCancelReservationUseCase(reservationRepo, txManager)
	fulfillReservationUseCase := appreservation.NewFulfillReservationUseCase(reservationRepo, txManager)
	listReservationsUseCase := appreservation.NewListReservationsUseCase(reservationRepo)

	createTransferUseCase := apptransfer.NewCreateTransferUseCase(transferRepo, productRepo, storeRepo)
	sendTransferUseCase := apptransfer.NewSendTransferUseCase(transferRepo, stockService, txManager, notifier)
	receiveTransferUseCase := apptransfer.NewReceiveTransferUseCase(
		transferRepo, lotRepo, movementRepo, txManager, notifier)
	cancelTransferUseCase := apptransfer.NewCancelTransferUseCase(transferRepo, txManager)
	getTransferUseCase := apptransfer.NewGetTransferUseCase(transferRepo)
	listTransfersUseCase := apptransfer.NewListTransfersUseCase(transferRepo)

	updatePlanUseCase := applicense.NewUpdatePlanUseCase(licenseRepo, featureChecker)
	getPlanUseCase := applicense.NewGetPlanUseCase(licenseRepo)

	// 9. 接口层
	handlers := apihttp.Handlers{
		User: handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase, refreshUseCase),
		Catalog: handler.NewCatalogHandler(createProductUseCase, updateProductUseCase,
			listProductsUseCase, createStoreUseCase, listStoresUseCase),
		Stock: handler.NewStockHandler(receiveStockUseCase, adjustStockUseCase,
			availabilityUseCase, listLotsUseCase, listMovementsUseCase),
		Sale: handler.NewSaleHandler(createSaleUseCase, settleSaleUseCase,
			cancelSaleUseCase, getSaleUseCase, listSalesUseCase),
		Cashier: handler.NewCashierHandler(openSessionUseCase, closeSessionUseCase,
			cashInOutUseCase, getSessionUseCase, listSessionsUseCase),
		Reservation: handler.NewReservationHandler(requestReservationUseCase,
			approveReservationUseCase, rejectReservationUseCase, cancelReservationUseCase,
			fulfillReservationUseCase, listReservationsUseCase),
		Transfer: handler.NewTransferHandler(createTransferUseCase, sendTransferUseCase,
			receiveTransferUseCase, cancelTransferUseCase, getTransferUseCase, listTransfersUseCase),
		License: handler.NewLicenseHandler(updatePlanUseCase, getPlanUseCase),
	}
	authMW := middleware.NewAuthMiddleware(jwtManager, sessionStore)
	licenseMW := middleware.NewLicenseMiddleware(featureChecker)

	router := apihttp.NewRouter(handlers, authMW, licenseMW, cfg.Server.Mode)

	// 10. 启动HTTP服务（优雅停机）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("服务启动: http://localhost%s (swagger: /swagger/index.html, metrics: /metrics)", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("收到退出信号，开始优雅停机...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("优雅停机超时，强制退出: %v", err)
	}
	log.Println("服务已退出")
}
