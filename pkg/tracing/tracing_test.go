package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

// TestInitTracer 测试Tracer初始化
func TestInitTracer(t *testing.T) {
	shutdown, err := InitTracer("pharmacy-test", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	defer shutdown(context.Background())

	// 验证全局TracerProvider已设置
	tracer := otel.Tracer("test")
	if tracer == nil {
		t.Error("全局TracerProvider未设置")
	}

	t.Log("✅ Tracer初始化成功")
}

// TestStartSpan 测试Span创建
func TestStartSpan(t *testing.T) {
	shutdown, err := InitTracer("pharmacy-test", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	defer shutdown(context.Background())

	t.Run("创建根Span", func(t *testing.T) {
		ctx := context.Background()

		_, span := StartSpan(ctx, "pharmacy-test", "SettleSale")
		defer span.End()

		if !span.SpanContext().IsValid() {
			t.Error("Span无效")
		}

		traceID := span.SpanContext().TraceID().String()
		if traceID == "" || traceID == "00000000000000000000000000000000" {
			t.Errorf("TraceID无效: %s", traceID)
		}

		t.Logf("✅ 根Span创建成功, TraceID=%s", traceID)
	})

	t.Run("子Span共享TraceID", func(t *testing.T) {
		ctx := context.Background()

		ctx, rootSpan := StartSpan(ctx, "pharmacy-test", "SettleSale")
		defer rootSpan.End()

		_, childSpan := StartSpan(ctx, "pharmacy-test", "ConsumeStock")
		defer childSpan.End()

		rootTraceID := rootSpan.SpanContext().TraceID().String()
		childTraceID := childSpan.SpanContext().TraceID().String()

		if rootTraceID != childTraceID {
			t.Errorf("子Span应共享TraceID: root=%s, child=%s", rootTraceID, childTraceID)
		}

		if rootSpan.SpanContext().SpanID() == childSpan.SpanContext().SpanID() {
			t.Error("子Span应有独立的SpanID")
		}

		t.Log("✅ 调用树构建正确")
	})
}

// TestExtractTraceID 测试从Context提取TraceID
func TestExtractTraceID(t *testing.T) {
	shutdown, err := InitTracer("pharmacy-test", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	defer shutdown(context.Background())

	// 无Span的Context返回空串
	if got := ExtractTraceID(context.Background()); got != "" {
		t.Errorf("无Span时期望空串，实际%s", got)
	}

	ctx, span := StartSpan(context.Background(), "pharmacy-test", "SettleSale")
	defer span.End()

	traceID := ExtractTraceID(ctx)
	if traceID != span.SpanContext().TraceID().String() {
		t.Errorf("TraceID不匹配: %s", traceID)
	}

	spanID := ExtractSpanID(ctx)
	if spanID != span.SpanContext().SpanID().String() {
		t.Errorf("SpanID不匹配: %s", spanID)
	}
}
