package transfer

import (
	"time"
)

// Status 调拨单状态
type Status string

const (
	StatusDraft    Status = "DRAFT"    // 草稿(目的门店发起申请)
	StatusSent     Status = "SENT"     // 已发货(来源门店FEFO出库)
	StatusReceived Status = "RECEIVED" // 已入库(目的门店按出库流水复刻批号)
	StatusCanceled Status = "CANCELED" // 已取消(仅草稿可取消)
)

// Transfer 调拨单实体(聚合根)
// DDD设计说明:
// 1. 调拨是跨门店的库存移动:发货时来源门店FEFO出库,
//    入库时目的门店按出库流水upsert批号(复刻批号/有效期/成本)
// 2. 由目的门店(要货方)创建草稿,来源门店发货
// 3. 已发货/已入库的调拨不可取消,只能通过盘点调整流水冲正
//    (单向门策略)
type Transfer struct {
	ID                 uint
	TenantID           uint
	OriginStoreID      uint // 来源门店(发货方)
	DestinationStoreID uint // 目的门店(要货方,创建方)
	Status             Status
	Note               string
	Items              []Item
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Item 调拨明细项
// SentQty记录实际发货数量:允许部分发货,但不超过申请数量,
// 且整单只能发货一次(SENT后不能再次send,杜绝多次部分发货
// 累计超过申请上限的漏洞)
type Item struct {
	ID           uint
	TransferID   uint
	ProductID    uint
	RequestedQty int // 申请数量
	SentQty      int // 实际发货数量(发货时置位)
}

// NewTransfer 创建调拨单(工厂方法)
// 业务规则:
// - 来源门店和目的门店不能相同
// - 至少一个明细项,数量必须>0
func NewTransfer(tenantID, originStoreID, destinationStoreID uint, items []Item, note string) (*Transfer, error) {
	if originStoreID == destinationStoreID {
		return nil, ErrSameStore
	}
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range items {
		if item.RequestedQty <= 0 {
			return nil, ErrInvalidItemQuantity
		}
	}

	now := time.Now()
	return &Transfer{
		TenantID:           tenantID,
		OriginStoreID:      originStoreID,
		DestinationStoreID: destinationStoreID,
		Status:             StatusDraft,
		Note:               note,
		Items:              items,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// CanTransitionTo 检查是否可以转换到目标状态
func (t *Transfer) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusDraft:    {StatusSent, StatusCanceled},
		StatusSent:     {StatusReceived},
		StatusReceived: {}, // 终态
		StatusCanceled: {}, // 终态
	}

	allowed, exists := transitions[t.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
func (t *Transfer) TransitionTo(target Status) error {
	if !t.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	t.Status = target
	t.UpdatedAt = time.Now()
	return nil
}

// Send 发货(领域行为)
// 参数partial为nil时按申请数量全量发货;否则按传入的
// (商品→数量)部分发货,每个商品不得超过申请数量
// 实际FEFO出库和流水由应用层在同一事务内完成
func (t *Transfer) Send(partial map[uint]int) error {
	if err := t.TransitionTo(StatusSent); err != nil {
		return err
	}

	if partial == nil {
		// 全量发货
		for i := range t.Items {
			t.Items[i].SentQty = t.Items[i].RequestedQty
		}
		return nil
	}

	// 部分发货:校验每个商品都在申请明细内且不超过申请数量
	byProduct := make(map[uint]*Item, len(t.Items))
	for i := range t.Items {
		byProduct[t.Items[i].ProductID] = &t.Items[i]
	}

	sentAny := false
	for productID, qty := range partial {
		item, ok := byProduct[productID]
		if !ok {
			return ErrItemNotRequested
		}
		if qty <= 0 {
			return ErrInvalidItemQuantity
		}
		if qty > item.RequestedQty {
			return ErrExceedsRequestedQty
		}
		item.SentQty = qty
		sentAny = true
	}
	if !sentAny {
		return ErrEmptyItems
	}
	return nil
}

// MarkReceived 入库确认(领域行为)
func (t *Transfer) MarkReceived() error {
	return t.TransitionTo(StatusReceived)
}

// Cancel 取消调拨(领域行为)
// 仅草稿可取消;已发货的调拨必须通过冲正调整处理
func (t *Transfer) Cancel() error {
	return t.TransitionTo(StatusCanceled)
}

// SentItems 返回实际发货的明细(SentQty>0)
func (t *Transfer) SentItems() []Item {
	var sent []Item
	for _, item := range t.Items {
		if item.SentQty > 0 {
			sent = append(sent, item)
		}
	}
	return sent
}

// IsOriginStore 检查指定门店是否为来源门店(发货权限)
func (t *Transfer) IsOriginStore(storeID uint) bool {
	return t.OriginStoreID == storeID
}

// IsDestinationStore 检查指定门店是否为目的门店(入库/取消权限)
func (t *Transfer) IsDestinationStore(storeID uint) bool {
	return t.DestinationStoreID == storeID
}
