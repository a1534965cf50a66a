// Package metrics 提供基于Prometheus的指标收集框架
//
// # 核心概念
//
// **1. Counter（计数器）**：只增不减的累计值
//   - 示例：HTTP请求总数、结算销售单总数、FEFO消耗的库存数量
//   - 特点：只能调用Inc()/Add()递增
//
// **2. Gauge（仪表盘）**：可增可减的瞬时值
//   - 示例：正在处理的请求数、熔断器状态
//
// **3. Histogram（直方图）**：观测值的分布
//   - 示例：HTTP请求耗时、销售结算耗时
//   - 特点：自动计算分位数（P50、P90、P99）
//
// # 指标命名规范
//
// 1. Counter以`_total`结尾：`sales_settled_total`
// 2. Histogram以单位结尾：`sale_settlement_duration_seconds`
// 3. 避免高基数标签：用store_id做标签可以（门店数有限），不要用sale_id
//
// # 使用示例
//
//	func main() {
//	    metrics.InitMetrics()
//	    http.Handle("/metrics", promhttp.Handler())
//	    ...
//	}
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path、status（200/400/409/500）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 销售业务指标

	// SalesSettledTotal 结算成功的销售单总数（Counter）
	SalesSettledTotal prometheus.Counter

	// SalesFailedTotal 结算失败的销售单总数（Counter）
	// 标签：reason（insufficient_stock/no_cash_session/other）
	SalesFailedTotal *prometheus.CounterVec

	// SaleSettlementDuration 销售结算耗时（Histogram）
	// 结算涉及锁批号、FEFO扣减、写流水，通常在数十毫秒级
	SaleSettlementDuration prometheus.Histogram

	// 库存业务指标

	// StockConsumedTotal FEFO消耗的库存数量（Counter）
	// 标签：movement_type（OUT/TRANSFER_OUT）
	StockConsumedTotal *prometheus.CounterVec

	// StockShortfallsTotal 库存不足被拒绝的操作总数（Counter）
	StockShortfallsTotal prometheus.Counter

	// LotsTouchedPerConsume 单次消耗触及的批号数分布（Histogram）
	// 批号碎片化程度的观测指标：值越大说明批号越零散
	LotsTouchedPerConsume prometheus.Histogram

	// 调拨/预约指标

	// TransfersSentTotal 调拨发货总数（Counter）
	TransfersSentTotal prometheus.Counter

	// TransfersReceivedTotal 调拨入库总数（Counter）
	TransfersReceivedTotal prometheus.Counter

	// ReservationsApprovedTotal 预约批准总数（Counter）
	ReservationsApprovedTotal prometheus.Counter

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（Gauge）
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数（Counter）
	// 标签：name（熔断器名称）、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数（Counter）
	// 标签：exchange（交换机）、routing_key（路由键）
	MessagesPublishedTotal *prometheus.CounterVec

	// NotifyDroppedTotal 通知发布失败被丢弃的总数（Counter）
	// 通知是尽力而为的旁路操作，失败只计数不影响主流程
	NotifyDroppedTotal prometheus.Counter
)

// InitMetrics 初始化所有Prometheus指标
//
// 必须在程序启动时调用一次，用于注册所有指标到全局Registry
//
// 设计要点：
// 1. 使用promauto.New*自动注册到默认Registry
// 2. Counter使用*Vec支持标签（多维度统计）
// 3. Histogram的Buckets根据业务场景定制
func InitMetrics() {
	// 防止重复初始化
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 销售业务指标
	SalesSettledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_settled_total",
			Help: "结算成功的销售单总数",
		},
	)

	SalesFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_failed_total",
			Help: "结算失败的销售单总数",
		},
		[]string{"reason"},
	)

	SaleSettlementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sale_settlement_duration_seconds",
			Help:    "销售结算耗时（秒）",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// 库存业务指标
	StockConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_consumed_total",
			Help: "FEFO消耗的库存数量",
		},
		[]string{"movement_type"},
	)

	StockShortfallsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_shortfalls_total",
			Help: "因库存不足被拒绝的操作总数",
		},
	)

	LotsTouchedPerConsume = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lots_touched_per_consume",
			Help:    "单次FEFO消耗触及的批号数",
			Buckets: []float64{1, 2, 3, 5, 8, 13},
		},
	)

	// 调拨/预约指标
	TransfersSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transfers_sent_total",
			Help: "调拨发货总数",
		},
	)

	TransfersReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transfers_received_total",
			Help: "调拨入库总数",
		},
	)

	ReservationsApprovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reservations_approved_total",
			Help: "预约批准总数",
		},
	)

	// 熔断器指标
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// 消息队列指标
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)

	NotifyDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_dropped_total",
			Help: "通知发布失败被丢弃的总数",
		},
	)
}

// IncCounter 递增Counter（便捷函数）
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// AddCounter Counter增加指定值
func AddCounter(counter prometheus.Counter, value float64) {
	counter.Add(value)
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// AddCounterVec CounterVec增加指定值（带标签）
func AddCounterVec(counter *prometheus.CounterVec, labels map[string]string, value float64) {
	counter.With(labels).Add(value)
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
