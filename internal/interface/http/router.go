package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/pharmacy/internal/domain/license"
	"github.com/xiebiao/pharmacy/internal/interface/http/handler"
	"github.com/xiebiao/pharmacy/internal/interface/http/middleware"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	User        *handler.UserHandler
	Catalog     *handler.CatalogHandler
	Stock       *handler.StockHandler
	Sale        *handler.SaleHandler
	Cashier     *handler.CashierHandler
	Reservation *handler.ReservationHandler
	Transfer    *handler.TransferHandler
	License     *handler.LicenseHandler
}

// NewRouter 装配Gin引擎与全部路由
// 设计说明：
// 1. 全局中间件顺序：Recovery → RequestID → Metrics（先恢复panic再记指标）
// 2. 业务路由全部挂RequireAuth，租户/门店隔离依赖JWT Claims
// 3. 调拨/预约是增值功能，整组路由挂RequireFeature，按租户套餐放行
func NewRouter(
	handlers Handlers,
	authMW *middleware.AuthMiddleware,
	licenseMW *middleware.LicenseMiddleware,
	mode string,
) *gin.Engine {
	if mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())

	// 运维端点
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 公开接口
		users := v1.Group("/users")
		{
			users.POST("/login", handlers.User.Login)
			users.POST("/refresh", handlers.User.RefreshToken)
		}

		// 需要登录的接口
		authorized := v1.Group("")
		authorized.Use(authMW.RequireAuth())
		{
			// 用户管理
			authorized.POST("/users", authMW.RequireAdmin(), handlers.User.Register)
			authorized.POST("/users/logout", handlers.User.Logout)

			// 商品目录与门店
			authorized.POST("/products", authMW.RequireAdmin(), handlers.Catalog.CreateProduct)
			authorized.PUT("/products/:id", authMW.RequireAdmin(), handlers.Catalog.UpdateProduct)
			authorized.GET("/products", handlers.Catalog.ListProducts)
			authorized.POST("/stores", authMW.RequireAdmin(), handlers.Catalog.CreateStore)
			authorized.GET("/stores", handlers.Catalog.ListStores)

			// 库存
			stock := authorized.Group("/stock")
			{
				stock.POST("/receive", handlers.Stock.Receive)
				// 盘点改账要高权限角色
				stock.POST("/adjust", authMW.RequireElevated(), handlers.Stock.Adjust)
				stock.GET("/availability", handlers.Stock.Availability)
				stock.GET("/lots", handlers.Stock.ListLots)
				stock.GET("/movements", handlers.Stock.ListMovements)
			}

			// 销售
			sales := authorized.Group("/sales")
			{
				sales.POST("", handlers.Sale.Create)
				sales.POST("/:id/settle", handlers.Sale.Settle)
				sales.POST("/:id/cancel", handlers.Sale.Cancel)
				sales.GET("/:id", handlers.Sale.Get)
				sales.GET("", handlers.Sale.List)
			}

			// 收银班次
			cashier := authorized.Group("/cashier")
			{
				cashier.POST("/sessions", handlers.Cashier.Open)
				cashier.POST("/sessions/close", handlers.Cashier.Close)
				cashier.POST("/movements", handlers.Cashier.CashInOut)
				cashier.GET("/sessions/:id", handlers.Cashier.Get)
				cashier.GET("/sessions", handlers.Cashier.List)
			}

			// 跨店预约（按租户套餐放行）
			reservations := authorized.Group("/reservations")
			reservations.Use(licenseMW.RequireFeature(license.FeatureReservations))
			{
				reservations.POST("", handlers.Reservation.Create)
				// 批准/拒绝是来源门店的审核动作，要高权限角色
				reservations.POST("/:id/approve", authMW.RequireElevated(), handlers.Reservation.Approve)
				reservations.POST("/:id/reject", authMW.RequireElevated(), handlers.Reservation.Reject)
				reservations.POST("/:id/cancel", handlers.Reservation.Cancel)
				reservations.POST("/:id/fulfill", handlers.Reservation.Fulfill)
				reservations.GET("", handlers.Reservation.List)
			}

			// 门店调拨（按租户套餐放行）
			transfers := authorized.Group("/transfers")
			transfers.Use(licenseMW.RequireFeature(license.FeatureTransfers))
			{
				transfers.POST("", handlers.Transfer.Create)
				// 发货/入库移动库存，要高权限角色
				transfers.POST("/:id/send", authMW.RequireElevated(), handlers.Transfer.Send)
				transfers.POST("/:id/receive", authMW.RequireElevated(), handlers.Transfer.Receive)
				transfers.POST("/:id/cancel", handlers.Transfer.Cancel)
				transfers.GET("/:id", handlers.Transfer.Get)
				transfers.GET("", handlers.Transfer.List)
			}

			// 套餐
			authorized.GET("/license/plan", handlers.License.GetPlan)
			authorized.PUT("/license/plan", authMW.RequireAdmin(), handlers.License.UpdatePlan)
		}
	}

	return r
}
