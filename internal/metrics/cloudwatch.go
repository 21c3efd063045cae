// Package metrics publishes proxy request telemetry to AWS CloudWatch.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"skyglass/internal/types"
)

// putTimeout bounds one PutMetricData call so telemetry never holds a
// response hostage.
const putTimeout = 2 * time.Second

// CloudWatchClient is the subset of the CloudWatch SDK client used here.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchCollector implements core.MetricsCollector.
//
// Per request it emits, in one PutMetricData call:
//   - APIRequestCount: Dims {Endpoint, Method, Status}
//   - APILatency (ms): Dims {Endpoint}
type CloudWatchCollector struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchCollector creates a collector for namespace. An empty
// namespace uses types.MetricNamespace.
func NewCloudWatchCollector(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchCollector {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchCollector{client: client, namespace: namespace, logger: logger}
}

// RecordRequest publishes the count and latency data points. Failures are
// logged and dropped.
func (c *CloudWatchCollector) RecordRequest(method, endpoint, status string, duration time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
	defer cancel()

	now := time.Now()
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(c.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricAPIRequestCount),
				Timestamp:  aws.Time(now),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					dim(types.DimEndpoint, endpoint),
					dim(types.DimMethod, method),
					dim(types.DimStatus, status),
				},
			},
			{
				MetricName: aws.String(types.MetricAPILatency),
				Timestamp:  aws.Time(now),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: []cwtypes.Dimension{
					dim(types.DimEndpoint, endpoint),
				},
			},
		},
	}

	if _, err := c.client.PutMetricData(ctx, input); err != nil {
		c.logger.Error("failed to record request metrics",
			"error", err.Error(),
			"endpoint", endpoint,
			"status", status,
		)
	}
}

// RecordUpstreamFailure counts a failed provider call for operation.
func (c *CloudWatchCollector) RecordUpstreamFailure(ctx context.Context, operation string) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(c.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricExternalAPIFailure),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{dim(types.DimOperation, operation)},
			},
		},
	}

	if _, err := c.client.PutMetricData(ctx, input); err != nil {
		c.logger.Error("failed to record upstream failure metric",
			"error", err.Error(),
			"operation", operation,
		)
	}
}

func dim(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}
