package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

const (
	DefaultLogGroup         = "/restaurant-menu/services"
	DefaultLogBatchSize     = 50
	DefaultLogRetentionDays = 30
)

// CloudWatchLogsAPI is the set of CloudWatch Logs calls used by CloudWatchLogsClient.
type CloudWatchLogsAPI interface {
	CreateLogGroup(ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	PutRetentionPolicy(ctx context.Context, params *cloudwatchlogs.PutRetentionPolicyInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutRetentionPolicyOutput, error)
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// CloudWatchLogsClient buffers log lines and ships them to one stream in
// batches. It is a zapcore.WriteSyncer: Sync flushes whatever is pending.
type CloudWatchLogsClient struct {
	api       CloudWatchLogsAPI
	group     string
	stream    string
	batchSize int
	enabled   bool
	now       func() time.Time

	mu      sync.Mutex
	pending []types.InputLogEvent
}

// NewCloudWatchLogsClient creates the log group and a per-process stream for
// serviceName when CLOUDWATCH_ENABLED=true; otherwise writes are discarded.
func NewCloudWatchLogsClient(ctx context.Context, serviceName string) (*CloudWatchLogsClient, error) {
	if os.Getenv("CLOUDWATCH_ENABLED") != "true" {
		return &CloudWatchLogsClient{}, nil
	}

	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	group := os.Getenv("CLOUDWATCH_LOG_GROUP")
	if group == "" {
		group = DefaultLogGroup
	}
	stream := fmt.Sprintf("%s-%d", serviceName, time.Now().Unix())

	c := NewCloudWatchLogsClientWithAPI(cloudwatchlogs.NewFromConfig(cfg), group, stream)
	if err := c.setup(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func NewCloudWatchLogsClientWithAPI(api CloudWatchLogsAPI, group, stream string) *CloudWatchLogsClient {
	return &CloudWatchLogsClient{
		api:       api,
		group:     group,
		stream:    stream,
		batchSize: DefaultLogBatchSize,
		enabled:   true,
		now:       time.Now,
	}
}

func (c *CloudWatchLogsClient) setup(ctx context.Context) error {
	_, err := c.api.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{LogGroupName: sdkaws.String(c.group)})
	var exists *types.ResourceAlreadyExistsException
	if err != nil && !errors.As(err, &exists) {
		return fmt.Errorf("create log group %s: %w", c.group, err)
	}

	_, err = c.api.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    sdkaws.String(c.group),
		RetentionInDays: sdkaws.Int32(DefaultLogRetentionDays),
	})
	if err != nil {
		return fmt.Errorf("set log retention: %w", err)
	}

	_, err = c.api.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  sdkaws.String(c.group),
		LogStreamName: sdkaws.String(c.stream),
	})
	if err != nil {
		return fmt.Errorf("create log stream %s: %w", c.stream, err)
	}
	return nil
}

func (c *CloudWatchLogsClient) IsEnabled() bool {
	return c != nil && c.enabled
}

// Write queues one line and flushes once a full batch is pending. Errors
// go to stderr; logging never fails because CloudWatch does.
func (c *CloudWatchLogsClient) Write(p []byte) (int, error) {
	if !c.IsEnabled() {
		return len(p), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, types.InputLogEvent{
		Message:   sdkaws.String(string(p)),
		Timestamp: sdkaws.Int64(c.now().UnixMilli()),
	})
	if len(c.pending) >= c.batchSize {
		if err := c.flushLocked(); err != nil {
			fmt.Fprintf(os.Stderr, "cloudwatch logs: %v\n", err)
		}
	}
	return len(p), nil
}

// Sync sends every pending line.
func (c *CloudWatchLogsClient) Sync() error {
	if !c.IsEnabled() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

// RunFlusher calls Sync every interval until stop is closed.
func (c *CloudWatchLogsClient) RunFlusher(stop <-chan struct{}, interval time.Duration) {
	if !c.IsEnabled() {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.Sync(); err != nil {
				fmt.Fprintf(os.Stderr, "cloudwatch logs: %v\n", err)
			}
		}
	}
}

func (c *CloudWatchLogsClient) flushLocked() error {
	if len(c.pending) == 0 {
		return nil
	}
	batch := c.pending
	c.pending = nil

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := c.api.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  sdkaws.String(c.group),
		LogStreamName: sdkaws.String(c.stream),
		LogEvents:     batch,
	})
	if err != nil {
		return fmt.Errorf("put %d log events: %w", len(batch), err)
	}
	return nil
}
