package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/yashrajoria/menu-backend/services/common/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	DefaultDatabase       = "all-data"
	DefaultMaxPoolSize    = 10
	DefaultStaleAfter     = 5 * time.Minute
	DefaultMaxAttempts    = 3
	DefaultRetryDelay     = 500 * time.Millisecond
	DefaultConnectTimeout = 10 * time.Second
	DefaultRetireGrace    = 30 * time.Second
)

// ErrMissingURI is returned by every Store call when no connection string is configured.
var ErrMissingURI = errors.New("missing MONGODB_URI environment variable")

// StoreConfig describes how the Store reaches MongoDB.
type StoreConfig struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	StaleAfter     time.Duration
	MaxAttempts    int
	RetryDelay     time.Duration
	ConnectTimeout time.Duration
	// RetireGrace is how long a replaced client stays connected so callers
	// that already hold it can finish.
	RetireGrace time.Duration
}

// DefaultStoreConfig fills every tuning field with the package defaults.
func DefaultStoreConfig(uri, database string) StoreConfig {
	if database == "" {
		database = DefaultDatabase
	}
	return StoreConfig{
		URI:            uri,
		Database:       database,
		MaxPoolSize:    DefaultMaxPoolSize,
		StaleAfter:     DefaultStaleAfter,
		MaxAttempts:    DefaultMaxAttempts,
		RetryDelay:     DefaultRetryDelay,
		ConnectTimeout: DefaultConnectTimeout,
		RetireGrace:    DefaultRetireGrace,
	}
}

// Dialer opens a client that is ready to serve requests.
type Dialer func(ctx context.Context, cfg StoreConfig) (*mongo.Client, error)

type StoreOption func(*Store)

func WithDialer(d Dialer) StoreOption {
	return func(s *Store) { s.dial = d }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithRetryHook is called once for every failed connection attempt.
func WithRetryHook(fn func(attempt int, err error)) StoreOption {
	return func(s *Store) { s.onRetry = fn }
}

// Store owns the process-wide MongoDB client. It connects lazily and retries
// failed connection attempts a bounded number of times. A client older than
// StaleAfter is replaced; the old one is disconnected after RetireGrace.
type Store struct {
	cfg     StoreConfig
	log     *zap.Logger
	dial    Dialer
	now     func() time.Time
	onRetry func(attempt int, err error)

	mu          sync.Mutex
	client      *mongo.Client
	connectedAt time.Time
	retiring    map[*mongo.Client]*time.Timer
}

func NewStore(cfg StoreConfig, log *zap.Logger, opts ...StoreOption) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	s := &Store{
		cfg:      cfg,
		log:      log,
		dial:     dialMongo,
		now:      time.Now,
		retiring: make(map[*mongo.Client]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client returns a live client, connecting or reconnecting as needed.
func (s *Store) Client(ctx context.Context) (*mongo.Client, error) {
	if s.cfg.URI == "" {
		return nil, apperrors.Storage(ErrMissingURI)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil && s.now().Sub(s.connectedAt) < s.cfg.StaleAfter {
		return s.client, nil
	}

	if s.client != nil {
		s.log.Info("MongoDB connection is stale, reconnecting",
			zap.Duration("age", s.now().Sub(s.connectedAt)),
		)
		s.retire(s.client)
		s.client = nil
	}

	client, err := s.connectWithRetry(ctx)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if timer, ok := s.retiring[client]; ok {
		timer.Stop()
		delete(s.retiring, client)
	}
	s.client = client
	s.connectedAt = s.now()
	return client, nil
}

func (s *Store) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(s.cfg.Database), nil
}

func (s *Store) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := s.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// retire schedules a replaced client for disconnection. Callers hold s.mu.
func (s *Store) retire(client *mongo.Client) {
	s.retiring[client] = time.AfterFunc(s.cfg.RetireGrace, func() {
		s.mu.Lock()
		_, pending := s.retiring[client]
		delete(s.retiring, client)
		s.mu.Unlock()
		if pending {
			disconnect(client, s.log)
		}
	})
}

// Close disconnects the current client and any retired ones still in their
// grace period.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	retired := make([]*mongo.Client, 0, len(s.retiring))
	for old, timer := range s.retiring {
		timer.Stop()
		retired = append(retired, old)
	}
	clear(s.retiring)
	s.mu.Unlock()

	for _, old := range retired {
		disconnect(old, s.log)
	}

	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	s.log.Info("Disconnected from MongoDB")
	return nil
}

func (s *Store) connectWithRetry(ctx context.Context) (*mongo.Client, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		client, err := s.dial(ctx, s.cfg)
		if err == nil {
			s.log.Info("Connected to MongoDB",
				zap.String("database", s.cfg.Database),
				zap.Int("attempt", attempt),
			)
			return client, nil
		}

		lastErr = err
		s.log.Warn("MongoDB connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.cfg.MaxAttempts),
			zap.Error(err),
		)
		if s.onRetry != nil {
			s.onRetry(attempt, err)
		}

		if attempt == s.cfg.MaxAttempts {
			break
		}
		if err := sleep(ctx, s.cfg.RetryDelay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("connect to MongoDB after %d attempts: %w", s.cfg.MaxAttempts, lastErr)
}

func dialMongo(ctx context.Context, cfg StoreConfig) (*mongo.Client, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(timeoutCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(timeoutCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

func disconnect(client *mongo.Client, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		log.Warn("Failed to disconnect stale MongoDB client", zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
