// Package notify 业务事件通知
//
// 事件通知是尽力而为的旁路操作:
// 1. 通知在业务事务提交后发布,发布失败不回滚业务
// 2. RabbitMQ故障时熔断器打开,后续通知直接丢弃
//    (记录metrics.NotifyDroppedTotal,保护主流程延迟)
// 3. MQ配置未开启时整体降级为no-op
package notify

import (
	"log"
	"time"

	"github.com/xiebiao/pharmacy/pkg/circuitbreaker"
	"github.com/xiebiao/pharmacy/pkg/metrics"
	"github.com/xiebiao/pharmacy/pkg/mq"
)

// 事件路由键(Topic Exchange)
const (
	EventSaleSettled         = "sale.settled"
	EventStockShortfall      = "stock.shortfall"
	EventReservationApproved = "reservation.approved"
	EventReservationRejected = "reservation.rejected"
	EventTransferSent        = "transfer.sent"
	EventTransferReceived    = "transfer.received"
)

// SaleSettledEvent 销售结算成功事件
type SaleSettledEvent struct {
	TenantID int64 `json:"tenant_id"`
	StoreID  int64 `json:"store_id"`
	SaleID   int64 `json:"sale_id"`
	Total    int64 `json:"total"`    // 应收金额(分)
	Settled  int64 `json:"settled"`  // 结算时间(unix秒)
	ActorID  int64 `json:"actor_id"` // 结算人
}

// StockShortfallEvent 可用库存不足事件
// 补货提醒的数据源:申请数量与可用数量的差即为缺口
type StockShortfallEvent struct {
	TenantID  int64 `json:"tenant_id"`
	StoreID   int64 `json:"store_id"`
	ProductID int64 `json:"product_id"`
	Requested int   `json:"requested"`
	Available int   `json:"available"`
}

// ReservationApprovedEvent 预约批准事件
type ReservationApprovedEvent struct {
	TenantID      int64 `json:"tenant_id"`
	ReservationID int64 `json:"reservation_id"`
	SourceStoreID int64 `json:"source_store_id"`
}

// ReservationRejectedEvent 预约拒绝事件(请求门店订阅后通知顾客)
type ReservationRejectedEvent struct {
	TenantID       int64  `json:"tenant_id"`
	ReservationID  int64  `json:"reservation_id"`
	RequestStoreID int64  `json:"request_store_id"`
	Reason         string `json:"reason"`
}

// TransferEvent 调拨事件(发货/入库共用)
type TransferEvent struct {
	TenantID           int64 `json:"tenant_id"`
	TransferID         int64 `json:"transfer_id"`
	OriginStoreID      int64 `json:"origin_store_id"`
	DestinationStoreID int64 `json:"destination_store_id"`
}

// Notifier 事件通知接口
// 实现必须是非阻塞失败:任何错误都在内部消化,调用方无需检查
type Notifier interface {
	// Notify 发布业务事件(尽力而为)
	Notify(routingKey string, event interface{})
}

// amqpNotifier RabbitMQ通知实现(熔断器保护)
type amqpNotifier struct {
	publisher *mq.Publisher
	breaker   *circuitbreaker.CircuitBreaker
}

// NewAMQPNotifier 创建RabbitMQ通知发布者
// 熔断策略:连续5次失败打开,30秒后半开探测
func NewAMQPNotifier(publisher *mq.Publisher) Notifier {
	breaker := circuitbreaker.NewCircuitBreaker("notify", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("通知熔断器状态变化: %s -> %s", from, to)
		if metrics.CircuitBreakerState != nil {
			metrics.SetGaugeVec(metrics.CircuitBreakerState,
				map[string]string{"name": name}, float64(to))
		}
	})

	return &amqpNotifier{
		publisher: publisher,
		breaker:   breaker,
	}
}

// Notify 发布业务事件
// 熔断器打开或发布失败时只计数丢弃,不向调用方返回错误
func (n *amqpNotifier) Notify(routingKey string, event interface{}) {
	err := n.breaker.Execute(func() error {
		return n.publisher.Publish(routingKey, event)
	})

	if err != nil {
		log.Printf("事件通知丢弃: routing_key=%s, err=%v", routingKey, err)
		if metrics.NotifyDroppedTotal != nil {
			metrics.IncCounter(metrics.NotifyDroppedTotal)
		}
	}
}

// noopNotifier 空实现(MQ未开启)
type noopNotifier struct{}

// NewNoopNotifier 创建空通知发布者
func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

// Notify 什么都不做
func (noopNotifier) Notify(routingKey string, event interface{}) {}
