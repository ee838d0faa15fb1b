package aws

import (
	"context"
	"fmt"
	"os"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	MetricHTTPRequests = "HTTPRequests"
	MetricHTTPErrors   = "HTTPErrors"
	MetricHTTPLatency  = "HTTPLatency"

	MetricCategoriesCreated   = "CategoriesCreated"
	MetricCategoriesDeleted   = "CategoriesDeleted"
	MetricCategoriesReordered = "CategoriesReordered"
	MetricProductsCreated     = "ProductsCreated"
	MetricProductsUpdated     = "ProductsUpdated"
	MetricProductsDeleted     = "ProductsDeleted"
	MetricMenuMigrations      = "MenuMigrations"

	MetricDatabaseRetries = "DatabaseConnectRetries"
	MetricCacheHits       = "CacheHits"
	MetricCacheMisses     = "CacheMisses"
)

// DefaultNamespace is used when CLOUDWATCH_NAMESPACE is unset.
const DefaultNamespace = "RestaurantMenu"

// CloudWatchAPI is the CloudWatch call used by MetricsClient.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// MetricsClient publishes single data points tagged with the emitting
// service. A nil or disabled client accepts every call and does nothing.
type MetricsClient struct {
	api       CloudWatchAPI
	namespace string
	service   string
	enabled   bool
	now       func() time.Time
}

// NewMetricsClient publishes only when CLOUDWATCH_ENABLED=true.
func NewMetricsClient(ctx context.Context, service string) (*MetricsClient, error) {
	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	namespace := os.Getenv("CLOUDWATCH_NAMESPACE")
	if namespace == "" {
		namespace = DefaultNamespace
	}
	enabled := os.Getenv("CLOUDWATCH_ENABLED") == "true"
	return NewMetricsClientWithAPI(cloudwatch.NewFromConfig(cfg), namespace, service, enabled), nil
}

func NewMetricsClientWithAPI(api CloudWatchAPI, namespace, service string, enabled bool) *MetricsClient {
	return &MetricsClient{
		api:       api,
		namespace: namespace,
		service:   service,
		enabled:   enabled,
		now:       time.Now,
	}
}

func (m *MetricsClient) IsEnabled() bool {
	return m != nil && m.enabled
}

// RecordCount adds 1 to metric.
func (m *MetricsClient) RecordCount(ctx context.Context, metric string, dimensions map[string]string) error {
	return m.put(ctx, metric, 1, types.StandardUnitCount, dimensions)
}

func (m *MetricsClient) RecordLatency(ctx context.Context, metric string, d time.Duration, dimensions map[string]string) error {
	return m.put(ctx, metric, float64(d.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
}

func (m *MetricsClient) put(ctx context.Context, metric string, value float64, unit types.StandardUnit, dimensions map[string]string) error {
	if !m.IsEnabled() {
		return nil
	}

	dims := make([]types.Dimension, 0, len(dimensions)+1)
	if m.service != "" {
		dims = append(dims, types.Dimension{Name: sdkaws.String("Service"), Value: sdkaws.String(m.service)})
	}
	for name, value := range dimensions {
		if name == "Service" {
			continue
		}
		dims = append(dims, types.Dimension{Name: sdkaws.String(name), Value: sdkaws.String(value)})
	}

	_, err := m.api.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(m.namespace),
		MetricData: []types.MetricDatum{{
			MetricName: sdkaws.String(metric),
			Value:      sdkaws.Float64(value),
			Unit:       unit,
			Timestamp:  sdkaws.Time(m.now()),
			Dimensions: dims,
		}},
	})
	if err != nil {
		return fmt.Errorf("put metric %s: %w", metric, err)
	}
	return nil
}
