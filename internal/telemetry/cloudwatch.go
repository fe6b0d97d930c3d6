// Package telemetry emits operational metrics for the monitoring loop to
// AWS CloudWatch. Emission is best-effort: a metrics failure is logged and
// never propagates into the monitoring path.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"fairhour/internal/types"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// MonitorMetrics is the telemetry surface the monitoring loop records to.
type MonitorMetrics interface {
	// RecordCheckCycle counts one completed check cycle and its duration.
	RecordCheckCycle(ctx context.Context, mode types.Mode, duration time.Duration)
	// RecordScoreDrop records the size of a detected score drop.
	RecordScoreDrop(ctx context.Context, mode types.Mode, drop float64)
	// RecordAlertSent counts one delivered deterioration alert.
	RecordAlertSent(ctx context.Context, mode types.Mode)
	// RecordForecastFailure counts one failed forecast fetch.
	RecordForecastFailure(ctx context.Context)
	// RecordNotifyFailure counts one failed alert delivery.
	RecordNotifyFailure(ctx context.Context)
}

// CloudWatchMonitorMetrics implements MonitorMetrics against CloudWatch.
type CloudWatchMonitorMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchMonitorMetrics creates a recorder publishing to the standard
// namespace.
func NewCloudWatchMonitorMetrics(client CloudWatchClient, logger *slog.Logger) *CloudWatchMonitorMetrics {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchMonitorMetrics{
		client:    client,
		namespace: types.MetricNamespace,
		logger:    logger,
	}
}

// RecordCheckCycle emits a count and a latency datum for one check cycle,
// dimensioned by activity mode.
func (m *CloudWatchMonitorMetrics) RecordCheckCycle(ctx context.Context, mode types.Mode, duration time.Duration) {
	m.put(ctx, []cwtypes.MetricDatum{
		{
			MetricName: aws.String(types.MetricCheckCycle),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: modeDimension(mode),
		},
		{
			MetricName: aws.String(types.MetricCheckCycle + "Latency"),
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Dimensions: modeDimension(mode),
		},
	})
}

// RecordScoreDrop emits the magnitude of a detected deterioration.
func (m *CloudWatchMonitorMetrics) RecordScoreDrop(ctx context.Context, mode types.Mode, drop float64) {
	m.put(ctx, []cwtypes.MetricDatum{
		{
			MetricName: aws.String(types.MetricScoreDrop),
			Value:      aws.Float64(drop),
			Unit:       cwtypes.StandardUnitNone,
			Dimensions: modeDimension(mode),
		},
	})
}

// RecordAlertSent counts one delivered alert.
func (m *CloudWatchMonitorMetrics) RecordAlertSent(ctx context.Context, mode types.Mode) {
	m.put(ctx, []cwtypes.MetricDatum{
		{
			MetricName: aws.String(types.MetricAlertSent),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: modeDimension(mode),
		},
	})
}

// RecordForecastFailure counts one failed forecast fetch.
func (m *CloudWatchMonitorMetrics) RecordForecastFailure(ctx context.Context) {
	m.put(ctx, []cwtypes.MetricDatum{
		{
			MetricName: aws.String(types.MetricForecastFailure),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
		},
	})
}

// RecordNotifyFailure counts one failed alert delivery.
func (m *CloudWatchMonitorMetrics) RecordNotifyFailure(ctx context.Context) {
	m.put(ctx, []cwtypes.MetricDatum{
		{
			MetricName: aws.String(types.MetricNotifyFailure),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
		},
	})
}

func (m *CloudWatchMonitorMetrics) put(ctx context.Context, data []cwtypes.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.WarnContext(ctx, "failed to publish metrics", "error", err)
	}
}

func modeDimension(mode types.Mode) []cwtypes.Dimension {
	return []cwtypes.Dimension{
		{
			Name:  aws.String(types.DimMode),
			Value: aws.String(string(mode)),
		},
	}
}

// NoopMetrics discards all telemetry. Used in tests and local development
// where no CloudWatch endpoint exists.
type NoopMetrics struct{}

func (NoopMetrics) RecordCheckCycle(context.Context, types.Mode, time.Duration) {}
func (NoopMetrics) RecordScoreDrop(context.Context, types.Mode, float64)        {}
func (NoopMetrics) RecordAlertSent(context.Context, types.Mode)                 {}
func (NoopMetrics) RecordForecastFailure(context.Context)                       {}
func (NoopMetrics) RecordNotifyFailure(context.Context)                         {}

var (
	_ MonitorMetrics = (*CloudWatchMonitorMetrics)(nil)
	_ MonitorMetrics = NoopMetrics{}
)
