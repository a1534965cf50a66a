package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/pharmacy/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明:
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数(MaxOpenConns、MaxIdleConns、ConnMaxLifetime)
// 3. 开发环境开启SQL日志,生产环境关闭
// 4. 自动迁移表结构(AutoMigrate)
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 构建DSN连接字符串
	dsn := cfg.Database.DSN()

	// 2. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	// 3. 连接数据库
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 最大打开连接数(建议:CPU核数 * 2 + 磁盘数量)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	// 最大空闲连接数(建议:MaxOpenConns的1/4到1/2)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// 连接最大存活时间(防止数据库主动断开连接)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 6. 自动迁移表结构(开发环境)
	// 注意:生产环境应使用专门的迁移工具(如golang-migrate)
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 注意:AutoMigrate只会创建表、添加字段,不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&StoreModel{},
		&ProductModel{},
		&LotModel{},
		&StockMovementModel{},
		&ReservationModel{},
		&ReservationItemModel{},
		&TransferModel{},
		&TransferItemModel{},
		&SaleModel{},
		&SaleItemModel{},
		&PaymentModel{},
		&CashSessionModel{},
		&CashMovementModel{},
		&LicensePlanModel{},
	)
}

// =========================================
// GORM数据模型
// 设计说明:
// 1. 这是infrastructure层的数据模型,包含GORM tag
// 2. domain层的实体不依赖GORM,Repository负责两者转换
// 3. 所有业务表都带tenant_id,复合索引以tenant_id开头
//    (多租户隔离,查询永远按租户过滤)
// =========================================

// UserModel GORM用户模型
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	TenantID  uint      `gorm:"index:idx_user_tenant;not null;comment:租户ID"`
	StoreID   uint      `gorm:"index;not null;comment:所属门店ID"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码(bcrypt加密)"`
	Name      string    `gorm:"size:50;not null;comment:姓名"`
	Role      string    `gorm:"size:20;not null;comment:角色(attendant/pharmacist/admin)"`
	Active    bool      `gorm:"default:true;comment:是否启用"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// StoreModel GORM门店模型
type StoreModel struct {
	ID        uint      `gorm:"primaryKey"`
	TenantID  uint      `gorm:"uniqueIndex:idx_store_code;not null;comment:租户ID"`
	Code      string    `gorm:"uniqueIndex:idx_store_code;size:32;not null;comment:门店编码(租户内唯一)"`
	Name      string    `gorm:"size:100;not null;comment:门店名"`
	Address   string    `gorm:"size:255;comment:地址"`
	Active    bool      `gorm:"default:true;comment:是否营业"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (StoreModel) TableName() string {
	return "stores"
}

// ProductModel GORM商品模型
// 设计说明:
// 1. 售价使用int64存储"分"为单位(避免浮点数精度问题)
// 2. (tenant_id, sku)唯一索引,数据库层保证SKU租户内唯一
// 3. 商品不保存库存数量,库存由批号表(lots)承载
type ProductModel struct {
	ID                   uint      `gorm:"primaryKey"`
	TenantID             uint      `gorm:"uniqueIndex:idx_product_sku;not null;comment:租户ID"`
	SKU                  string    `gorm:"uniqueIndex:idx_product_sku;size:64;not null;comment:商品编码"`
	Barcode              string    `gorm:"index;size:64;comment:条码"`
	Name                 string    `gorm:"index;size:200;not null;comment:商品名"`
	Description          string    `gorm:"type:text;comment:商品描述"`
	Price                int64     `gorm:"not null;comment:售价(分)"`
	RequiresPrescription bool      `gorm:"default:false;comment:是否处方药"`
	Active               bool      `gorm:"default:true;comment:是否在售"`
	CreatedAt            time.Time `gorm:"comment:创建时间"`
	UpdatedAt            time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ProductModel) TableName() string {
	return "products"
}

// LotModel GORM批号模型
// 设计说明:
// 1. 批号键(tenant,store,product,lot_number,expiration)唯一
//    (调拨入库按此键upsert目的门店批号)
// 2. 成本使用int64存储"分"
// 3. 数量归零后Active=false(逻辑下架),流水还引用它不物理删除
// 4. FEFO查询走idx_lot_active复合索引
type LotModel struct {
	ID         uint       `gorm:"primaryKey"`
	TenantID   uint       `gorm:"uniqueIndex:idx_lot_key;index:idx_lot_active;not null;comment:租户ID"`
	StoreID    uint       `gorm:"uniqueIndex:idx_lot_key;index:idx_lot_active;not null;comment:门店ID"`
	ProductID  uint       `gorm:"uniqueIndex:idx_lot_key;index:idx_lot_active;not null;comment:商品ID"`
	LotNumber  string     `gorm:"uniqueIndex:idx_lot_key;size:64;not null;comment:批号"`
	Expiration *time.Time `gorm:"uniqueIndex:idx_lot_key;comment:有效期(NULL=无有效期)"`
	UnitCost   int64      `gorm:"not null;comment:单位成本(分)"`
	Quantity   int        `gorm:"not null;comment:当前数量"`
	Active     bool       `gorm:"index:idx_lot_active;default:true;comment:是否在架"`
	CreatedAt  time.Time  `gorm:"comment:创建时间"`
	UpdatedAt  time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (LotModel) TableName() string {
	return "lots"
}

// StockMovementModel GORM库存流水模型
// 流水只增不改(Append-Only),无UpdatedAt
type StockMovementModel struct {
	ID         uint      `gorm:"primaryKey"`
	TenantID   uint      `gorm:"index:idx_movement_lot;index:idx_movement_transfer;not null;comment:租户ID"`
	StoreID    uint      `gorm:"index;not null;comment:门店ID"`
	ProductID  uint      `gorm:"index;not null;comment:商品ID"`
	LotID      uint      `gorm:"index:idx_movement_lot;not null;comment:批号ID"`
	Type       string    `gorm:"size:16;not null;comment:流水类型"`
	Quantity   int       `gorm:"not null;comment:变更数量(正=增加,负=减少)"`
	BeforeQty  int       `gorm:"not null;comment:变更前数量"`
	AfterQty   int       `gorm:"not null;comment:变更后数量"`
	Reason     string    `gorm:"size:255;comment:原因说明"`
	SaleID     uint      `gorm:"index;comment:关联销售单ID"`
	TransferID uint      `gorm:"index:idx_movement_transfer;comment:关联调拨单ID"`
	ActorID    uint      `gorm:"not null;comment:操作人"`
	CreatedAt  time.Time `gorm:"index;comment:创建时间"`
}

// TableName 指定表名
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ReservationModel GORM预约单模型
// 与ReservationItemModel是一对多关系
type ReservationModel struct {
	ID             uint                   `gorm:"primaryKey"`
	TenantID       uint                   `gorm:"index:idx_resv_tenant;not null;comment:租户ID"`
	RequestStoreID uint                   `gorm:"index;not null;comment:请求门店ID"`
	SourceStoreID  uint                   `gorm:"index;not null;comment:来源门店ID"`
	CustomerID     uint                   `gorm:"comment:关联顾客ID"`
	Status         string                 `gorm:"index:idx_resv_tenant;size:16;not null;comment:状态"`
	Note           string                 `gorm:"size:255;comment:申请备注"`
	RejectReason   string                 `gorm:"size:255;comment:拒绝原因"`
	Items          []ReservationItemModel `gorm:"foreignKey:ReservationID"`
	CreatedAt      time.Time              `gorm:"index;comment:创建时间"`
	UpdatedAt      time.Time              `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ReservationModel) TableName() string {
	return "reservations"
}

// ReservationItemModel GORM预约明细模型
// 占用量统计(ReservationHolds)按此表JOIN主表的APPROVED状态求和
type ReservationItemModel struct {
	ID            uint `gorm:"primaryKey"`
	ReservationID uint `gorm:"index;not null;comment:预约单ID"`
	ProductID     uint `gorm:"index;not null;comment:商品ID"`
	RequestedQty  int  `gorm:"not null;comment:申请数量"`
	ReservedQty   int  `gorm:"not null;default:0;comment:占用数量(批准后=申请数量)"`
}

// TableName 指定表名
func (ReservationItemModel) TableName() string {
	return "reservation_items"
}

// TransferModel GORM调拨单模型
type TransferModel struct {
	ID                 uint                `gorm:"primaryKey"`
	TenantID           uint                `gorm:"index:idx_transfer_tenant;not null;comment:租户ID"`
	OriginStoreID      uint                `gorm:"index;not null;comment:来源门店ID"`
	DestinationStoreID uint                `gorm:"index;not null;comment:目的门店ID"`
	Status             string              `gorm:"index:idx_transfer_tenant;size:16;not null;comment:状态"`
	Note               string              `gorm:"size:255;comment:备注"`
	Items              []TransferItemModel `gorm:"foreignKey:TransferID"`
	CreatedAt          time.Time           `gorm:"index;comment:创建时间"`
	UpdatedAt          time.Time           `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (TransferModel) TableName() string {
	return "transfers"
}

// TransferItemModel GORM调拨明细模型
type TransferItemModel struct {
	ID           uint `gorm:"primaryKey"`
	TransferID   uint `gorm:"index;not null;comment:调拨单ID"`
	ProductID    uint `gorm:"index;not null;comment:商品ID"`
	RequestedQty int  `gorm:"not null;comment:申请数量"`
	SentQty      int  `gorm:"not null;default:0;comment:实际发货数量"`
}

// TableName 指定表名
func (TransferItemModel) TableName() string {
	return "transfer_items"
}

// SaleModel GORM销售单模型
// 设计说明:
// 1. SaleNo有唯一索引(业务主键)
// 2. 金额全部使用int64存储"分"
type SaleModel struct {
	ID         uint            `gorm:"primaryKey"`
	TenantID   uint            `gorm:"index:idx_sale_tenant;not null;comment:租户ID"`
	StoreID    uint            `gorm:"index;not null;comment:门店ID"`
	SaleNo     string          `gorm:"uniqueIndex;size:32;not null;comment:销售单号"`
	CustomerID uint            `gorm:"comment:关联顾客ID"`
	Status     string          `gorm:"index:idx_sale_tenant;size:16;not null;comment:状态"`
	Discount   int64           `gorm:"not null;default:0;comment:整单优惠(分)"`
	Total      int64           `gorm:"not null;comment:应收金额(分)"`
	Items      []SaleItemModel `gorm:"foreignKey:SaleID"`
	PaidAt     *time.Time      `gorm:"comment:结算时间"`
	ActorID    uint            `gorm:"not null;comment:开单人"`
	CreatedAt  time.Time       `gorm:"index;comment:创建时间"`
	UpdatedAt  time.Time       `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel GORM销售明细模型
// UnitPrice是开单时的价格快照;UnitCost/TotalCost是结算时
// FEFO消耗的加权成本快照,不随后续进货成本变化
type SaleItemModel struct {
	ID        uint  `gorm:"primaryKey"`
	SaleID    uint  `gorm:"index;not null;comment:销售单ID"`
	ProductID uint  `gorm:"index;not null;comment:商品ID"`
	Quantity  int   `gorm:"not null;comment:数量"`
	UnitPrice int64 `gorm:"not null;comment:售价快照(分)"`
	Discount  int64 `gorm:"not null;default:0;comment:明细优惠(分)"`
	UnitCost  int64 `gorm:"not null;default:0;comment:加权单位成本(分)"`
	TotalCost int64 `gorm:"not null;default:0;comment:明细总成本(分)"`
}

// TableName 指定表名
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// PaymentModel GORM收款记录模型(只增不改)
type PaymentModel struct {
	ID        uint      `gorm:"primaryKey"`
	TenantID  uint      `gorm:"index;not null;comment:租户ID"`
	SaleID    uint      `gorm:"index;not null;comment:销售单ID"`
	Method    string    `gorm:"size:16;not null;comment:收款方式"`
	Amount    int64     `gorm:"not null;comment:收款金额(分)"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (PaymentModel) TableName() string {
	return "payments"
}

// CashSessionModel GORM收银班次模型
// idx_session_open支持"门店进行中班次"的高频查询
type CashSessionModel struct {
	ID            uint       `gorm:"primaryKey"`
	TenantID      uint       `gorm:"index:idx_session_open;not null;comment:租户ID"`
	StoreID       uint       `gorm:"index:idx_session_open;not null;comment:门店ID"`
	Status        string     `gorm:"index:idx_session_open;size:16;not null;comment:状态"`
	OpenedBy      uint       `gorm:"not null;comment:开班人"`
	ClosedBy      uint       `gorm:"comment:交班人"`
	OpeningFloat  int64      `gorm:"not null;comment:备用金(分)"`
	ClosingAmount int64      `gorm:"comment:交班清点金额(分)"`
	OpenedAt      time.Time  `gorm:"comment:开班时间"`
	ClosedAt      *time.Time `gorm:"comment:交班时间"`
}

// TableName 指定表名
func (CashSessionModel) TableName() string {
	return "cash_sessions"
}

// CashMovementModel GORM现金流水模型(只增不改)
type CashMovementModel struct {
	ID        uint      `gorm:"primaryKey"`
	TenantID  uint      `gorm:"index;not null;comment:租户ID"`
	SessionID uint      `gorm:"index;not null;comment:班次ID"`
	Type      string    `gorm:"size:16;not null;comment:流水类型"`
	Amount    int64     `gorm:"not null;comment:金额(分,取款为负)"`
	SaleID    uint      `gorm:"index;comment:关联销售单ID"`
	Note      string    `gorm:"size:255;comment:备注"`
	ActorID   uint      `gorm:"not null;comment:操作人"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (CashMovementModel) TableName() string {
	return "cash_movements"
}

// LicensePlanModel GORM租户套餐模型
// Features以逗号分隔字符串存储(功能数量少,无需关联表)
type LicensePlanModel struct {
	ID        uint       `gorm:"primaryKey"`
	TenantID  uint       `gorm:"uniqueIndex;not null;comment:租户ID"`
	Name      string     `gorm:"size:32;not null;comment:套餐名"`
	Features  string     `gorm:"size:500;comment:功能开关(逗号分隔)"`
	ExpiresAt *time.Time `gorm:"comment:到期时间(NULL=永久)"`
	CreatedAt time.Time  `gorm:"comment:创建时间"`
	UpdatedAt time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (LicensePlanModel) TableName() string {
	return "license_plans"
}
