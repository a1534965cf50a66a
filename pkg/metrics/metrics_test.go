package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestInitMetrics 测试指标初始化
func TestInitMetrics(t *testing.T) {
	InitMetrics()

	// 验证核心指标已创建
	if HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal未初始化")
	}
	if SalesSettledTotal == nil {
		t.Error("SalesSettledTotal未初始化")
	}
	if StockConsumedTotal == nil {
		t.Error("StockConsumedTotal未初始化")
	}
	if CircuitBreakerState == nil {
		t.Error("CircuitBreakerState未初始化")
	}

	t.Log("✅ 所有指标初始化成功")
}

// TestInitMetricsIdempotent 测试重复初始化不会panic（promauto重复注册会panic）
func TestInitMetricsIdempotent(t *testing.T) {
	InitMetrics()
	InitMetrics() // 第二次调用应直接返回

	t.Log("✅ 重复初始化被正确忽略")
}

// TestCounter 测试Counter指标
func TestCounter(t *testing.T) {
	InitMetrics()

	initialValue := getCounterValue(t, SalesSettledTotal)

	// 递增3次
	IncCounter(SalesSettledTotal)
	IncCounter(SalesSettledTotal)
	IncCounter(SalesSettledTotal)

	value := getCounterValue(t, SalesSettledTotal)
	if value != initialValue+3 {
		t.Errorf("Counter值错误: expected=%f, got=%f", initialValue+3, value)
	}

	t.Log("✅ Counter测试通过")
}

// TestCounterVec 测试CounterVec指标
func TestCounterVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"movement_type": "OUT"}
	before := getCounterVecValue(t, StockConsumedTotal, labels)

	// FEFO扣减7件
	AddCounterVec(StockConsumedTotal, labels, 7)

	after := getCounterVecValue(t, StockConsumedTotal, labels)
	if after != before+7 {
		t.Errorf("CounterVec值错误: expected=%f, got=%f", before+7, after)
	}

	t.Log("✅ CounterVec测试通过")
}

// TestHistogram 测试Histogram指标
func TestHistogram(t *testing.T) {
	InitMetrics()

	// 记录三次消耗触及的批号数
	ObserveHistogram(LotsTouchedPerConsume, 1)
	ObserveHistogram(LotsTouchedPerConsume, 2)
	ObserveHistogram(LotsTouchedPerConsume, 5)

	// 验证样本数
	metric := &dto.Metric{}
	if err := LotsTouchedPerConsume.Write(metric); err != nil {
		t.Fatalf("读取Histogram失败: %v", err)
	}
	if metric.Histogram.GetSampleCount() < 3 {
		t.Errorf("Histogram样本数错误: expected>=3, got=%d", metric.Histogram.GetSampleCount())
	}

	t.Log("✅ Histogram测试通过")
}

// =========================================
// 测试辅助函数
// =========================================

// getCounterValue 读取Counter当前值
func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := counter.Write(metric); err != nil {
		t.Fatalf("读取Counter失败: %v", err)
	}
	return metric.Counter.GetValue()
}

// getCounterVecValue 读取CounterVec指定标签的当前值
func getCounterVecValue(t *testing.T, counter *prometheus.CounterVec, labels map[string]string) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := counter.With(labels).Write(metric); err != nil {
		t.Fatalf("读取CounterVec失败: %v", err)
	}
	return metric.Counter.GetValue()
}
