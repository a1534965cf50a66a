package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/pharmacy/internal/domain/reservation"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// reservationRepository 预约仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/reservation/repository.go定义的接口
// 2. 同时实现stock.ReservationHolds(已批准占用量统计),
//    供库存域计算可售量(可售量 = 在架批号总量 - 已批准占用量)
// 3. Reservation和Item是聚合关系,查询时Preload预加载明细
type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository 创建预约仓储
func NewReservationRepository(db *gorm.DB) reservation.Repository {
	return &reservationRepository{db: db}
}

// NewReservationHolds 以预约仓储充当库存域的占用查询
// 库存域只依赖stock.ReservationHolds小接口,不感知预约完整生命周期
func NewReservationHolds(db *gorm.DB) stock.ReservationHolds {
	return &reservationRepository{db: db}
}

// Create 创建预约单
// GORM会通过foreignKey自动保存关联的Items
func (r *reservationRepository) Create(ctx context.Context, resv *reservation.Reservation) error {
	model := toReservationModel(resv)

	db := getDB(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建预约单失败")
	}

	// 回填自增ID
	resv.ID = model.ID
	for i := range resv.Items {
		resv.Items[i].ID = model.Items[i].ID
		resv.Items[i].ReservationID = model.ID
	}
	return nil
}

// Update 更新预约单(状态、明细占用量)
// 批准时全部明细的ReservedQty一起置位,必须在事务中调用
func (r *reservationRepository) Update(ctx context.Context, resv *reservation.Reservation) error {
	db := getDB(ctx, r.db)

	// 1. 更新主表状态
	result := db.Model(&ReservationModel{}).
		Where("id = ? AND tenant_id = ?", resv.ID, resv.TenantID).
		Updates(map[string]interface{}{
			"status":        string(resv.Status),
			"reject_reason": resv.RejectReason,
			"updated_at":    resv.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新预约单失败")
	}
	if result.RowsAffected == 0 {
		return reservation.ErrReservationNotFound
	}

	// 2. 更新明细占用量(批准时置位)
	for i := range resv.Items {
		item := &resv.Items[i]
		if err := db.Model(&ReservationItemModel{}).
			Where("id = ? AND reservation_id = ?", item.ID, resv.ID).
			Update("reserved_qty", item.ReservedQty).Error; err != nil {
			return apperrors.Wrap(err, "更新预约明细失败")
		}
	}
	return nil
}

// FindByID 根据ID查找预约单(含明细)
func (r *reservationRepository) FindByID(ctx context.Context, tenantID, id uint) (*reservation.Reservation, error) {
	var model ReservationModel
	db := getDB(ctx, r.db)
	err := db.Preload("Items").Where("tenant_id = ?", tenantID).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, apperrors.Wrap(err, "查询预约单失败")
	}

	return toReservationEntity(&model), nil
}

// LockByID 悲观锁查找预约单
// 审批/取消时使用,防止并发状态竞态(如同时批准和取消)
func (r *reservationRepository) LockByID(ctx context.Context, tenantID, id uint) (*reservation.Reservation, error) {
	var model ReservationModel
	db := getDB(ctx, r.db)

	// 先FOR UPDATE锁主表行,再单独加载明细
	// (FOR UPDATE与Preload的JOIN语义在MySQL下不可靠)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ?", tenantID).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, apperrors.Wrap(err, "锁定预约单失败")
	}

	if err := db.Where("reservation_id = ?", model.ID).Find(&model.Items).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询预约明细失败")
	}

	return toReservationEntity(&model), nil
}

// List 分页查询预约单列表
func (r *reservationRepository) List(ctx context.Context, tenantID uint, params reservation.ListParams) ([]*reservation.Reservation, int64, error) {
	var models []ReservationModel
	var total int64

	db := getDB(ctx, r.db)
	query := db.Model(&ReservationModel{}).Where("tenant_id = ?", tenantID)

	if params.RequestStoreID > 0 {
		query = query.Where("request_store_id = ?", params.RequestStoreID)
	}
	if params.SourceStoreID > 0 {
		query = query.Where("source_store_id = ?", params.SourceStoreID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", string(params.Status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询预约总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询预约列表失败")
	}

	reservations := make([]*reservation.Reservation, len(models))
	for i := range models {
		reservations[i] = toReservationEntity(&models[i])
	}
	return reservations, total, nil
}

// =========================================
// stock.ReservationHolds实现
// =========================================

// ApprovedQuantity 统计(门店,商品)被已批准预约占用的数量
// JOIN主表过滤APPROVED状态,对明细reserved_qty求和
func (r *reservationRepository) ApprovedQuantity(ctx context.Context, tenantID, storeID, productID uint) (int, error) {
	return r.approvedQuantity(ctx, tenantID, storeID, productID, 0)
}

// ApprovedQuantityExcluding 统计占用数量,排除指定预约单
// 审批预约时排除自身(审批前reservedQty为0,排除是防御性的)
func (r *reservationRepository) ApprovedQuantityExcluding(ctx context.Context, tenantID, storeID, productID, reservationID uint) (int, error) {
	return r.approvedQuantity(ctx, tenantID, storeID, productID, reservationID)
}

// approvedQuantity 占用量统计(共用逻辑)
func (r *reservationRepository) approvedQuantity(ctx context.Context, tenantID, storeID, productID, excludeID uint) (int, error) {
	var total int64
	db := getDB(ctx, r.db)

	query := db.Model(&ReservationItemModel{}).
		Joins("JOIN reservations ON reservations.id = reservation_items.reservation_id").
		Where("reservations.tenant_id = ? AND reservations.source_store_id = ? AND reservations.status = ?",
			tenantID, storeID, string(reservation.StatusApproved)).
		Where("reservation_items.product_id = ?", productID)

	if excludeID > 0 {
		query = query.Where("reservations.id <> ?", excludeID)
	}

	err := query.
		Select("COALESCE(SUM(reservation_items.reserved_qty), 0)").
		Scan(&total).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计预约占用量失败")
	}
	return int(total), nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toReservationModel 领域实体 → GORM模型
func toReservationModel(resv *reservation.Reservation) *ReservationModel {
	items := make([]ReservationItemModel, len(resv.Items))
	for i, item := range resv.Items {
		items[i] = ReservationItemModel{
			ID:            item.ID,
			ReservationID: item.ReservationID,
			ProductID:     item.ProductID,
			RequestedQty:  item.RequestedQty,
			ReservedQty:   item.ReservedQty,
		}
	}

	return &ReservationModel{
		ID:             resv.ID,
		TenantID:       resv.TenantID,
		RequestStoreID: resv.RequestStoreID,
		SourceStoreID:  resv.SourceStoreID,
		CustomerID:     resv.CustomerID,
		Status:         string(resv.Status),
		Note:           resv.Note,
		RejectReason:   resv.RejectReason,
		Items:          items,
		CreatedAt:      resv.CreatedAt,
		UpdatedAt:      resv.UpdatedAt,
	}
}

// toReservationEntity GORM模型 → 领域实体
func toReservationEntity(model *ReservationModel) *reservation.Reservation {
	items := make([]reservation.Item, len(model.Items))
	for i, item := range model.Items {
		items[i] = reservation.Item{
			ID:            item.ID,
			ReservationID: item.ReservationID,
			ProductID:     item.ProductID,
			RequestedQty:  item.RequestedQty,
			ReservedQty:   item.ReservedQty,
		}
	}

	return &reservation.Reservation{
		ID:             model.ID,
		TenantID:       model.TenantID,
		RequestStoreID: model.RequestStoreID,
		SourceStoreID:  model.SourceStoreID,
		CustomerID:     model.CustomerID,
		Status:         reservation.Status(model.Status),
		Note:           model.Note,
		RejectReason:   model.RejectReason,
		Items:          items,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}
