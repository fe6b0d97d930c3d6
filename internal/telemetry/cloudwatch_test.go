package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"fairhour/internal/types"
)

// mockCWClient records PutMetricData inputs.
type mockCWClient struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCWClient) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestRecordCheckCycleEmitsCountAndLatency(t *testing.T) {
	client := &mockCWClient{}
	m := NewCloudWatchMonitorMetrics(client, nil)

	m.RecordCheckCycle(context.Background(), types.ModeRunning, 250*time.Millisecond)

	if len(client.inputs) != 1 {
		t.Fatalf("PutMetricData calls = %d, want 1", len(client.inputs))
	}
	input := client.inputs[0]
	if *input.Namespace != types.MetricNamespace {
		t.Errorf("namespace = %s", *input.Namespace)
	}
	if len(input.MetricData) != 2 {
		t.Fatalf("metric data count = %d, want 2", len(input.MetricData))
	}
	if *input.MetricData[0].MetricName != types.MetricCheckCycle {
		t.Errorf("first metric = %s", *input.MetricData[0].MetricName)
	}
	if *input.MetricData[1].Value != 250 {
		t.Errorf("latency value = %v, want 250", *input.MetricData[1].Value)
	}
	dims := input.MetricData[0].Dimensions
	if len(dims) != 1 || *dims[0].Name != types.DimMode || *dims[0].Value != "running" {
		t.Errorf("dimensions = %+v", dims)
	}
}

func TestRecordScoreDropCarriesMagnitude(t *testing.T) {
	client := &mockCWClient{}
	m := NewCloudWatchMonitorMetrics(client, nil)

	m.RecordScoreDrop(context.Background(), types.ModeCycling, 22.5)

	datum := client.inputs[0].MetricData[0]
	if *datum.MetricName != types.MetricScoreDrop || *datum.Value != 22.5 {
		t.Errorf("datum = %s %v", *datum.MetricName, *datum.Value)
	}
}

func TestRecordFailuresHaveNoModeDimension(t *testing.T) {
	client := &mockCWClient{}
	m := NewCloudWatchMonitorMetrics(client, nil)

	m.RecordForecastFailure(context.Background())
	m.RecordNotifyFailure(context.Background())

	for _, input := range client.inputs {
		if len(input.MetricData[0].Dimensions) != 0 {
			t.Errorf("failure metric %s should be undimensioned", *input.MetricData[0].MetricName)
		}
	}
}

func TestPublishErrorIsSwallowed(t *testing.T) {
	client := &mockCWClient{err: errors.New("throttled")}
	m := NewCloudWatchMonitorMetrics(client, nil)

	// Must not panic or propagate.
	m.RecordAlertSent(context.Background(), types.ModeWalking)
}
