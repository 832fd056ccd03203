package observability

import (
	"context"
	"reflect"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

func TestParseHeaders(t *testing.T) {
	cases := []struct {
		raw  string
		want map[string]string
	}{
		{"", nil},
		{"authorization=Bearer abc", map[string]string{"authorization": "Bearer abc"}},
		{" a = 1 , b=2=3 ,broken,=x,c=", map[string]string{"a": "1", "b": "2=3"}},
		{",,", nil},
	}
	for _, tc := range cases {
		if got := ParseHeaders(tc.raw); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseHeaders(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestTracingSampler(t *testing.T) {
	traceID := trace.TraceID{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	params := sdktrace.SamplingParameters{ParentContext: context.Background(), TraceID: traceID, Name: "root"}

	if got := (TracingConfig{SampleRatio: 0}).Sampler().ShouldSample(params).Decision; got != sdktrace.Drop {
		t.Fatalf("ratio 0: decision %v", got)
	}
	if got := (TracingConfig{SampleRatio: 1}).Sampler().ShouldSample(params).Decision; got != sdktrace.RecordAndSample {
		t.Fatalf("ratio 1: decision %v", got)
	}
	if desc := (TracingConfig{SampleRatio: 0.25}).Sampler().Description(); !strings.Contains(desc, "0.25") {
		t.Fatalf("sampler description %q", desc)
	}
}

func TestInitTracingDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), logger.NewNop(), TracingConfig{Enabled: false, Endpoint: "collector:4318"})
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
