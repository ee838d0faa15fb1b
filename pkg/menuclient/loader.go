package menuclient

import (
	"context"
	"time"

	"github.com/yashrajoria/menu-backend/pkg/menu"
	"go.uber.org/zap"
)

// DefaultFreshness is how long a cached menu is served without refetching.
const DefaultFreshness = 10 * time.Minute

// Source says where a loaded menu came from.
type Source int

const (
	FromCache Source = iota
	FromNetwork
)

func (s Source) String() string {
	if s == FromCache {
		return "cache"
	}
	return "network"
}

type Fetcher interface {
	FetchCategories(ctx context.Context) ([]menu.Category, error)
}

type Loader struct {
	fetcher     Fetcher
	cache       Cache
	freshness   time.Duration
	now         func() time.Time
	onRefreshed func(Entry)
	log         *zap.Logger
}

type LoaderOption func(*Loader)

func WithFreshness(d time.Duration) LoaderOption {
	return func(l *Loader) { l.freshness = d }
}

func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

// OnRefreshed is called after every successful manual Refresh.
func OnRefreshed(fn func(Entry)) LoaderOption {
	return func(l *Loader) { l.onRefreshed = fn }
}

func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

func NewLoader(fetcher Fetcher, cache Cache, opts ...LoaderOption) *Loader {
	l := &Loader{
		fetcher:   fetcher,
		cache:     cache,
		freshness: DefaultFreshness,
		now:       time.Now,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load serves the cached menu while it is younger than the freshness window
// and fetches otherwise.
func (l *Loader) Load(ctx context.Context) (menu.Menu, Source, error) {
	if l.cache != nil {
		entry, ok, err := l.cache.Get()
		if err != nil {
			l.log.Warn("menu cache read failed", zap.Error(err))
		}
		if ok && entry.Age(l.now()) < l.freshness {
			return menu.Build(entry.Categories), FromCache, nil
		}
	}

	entry, err := l.fetch(ctx)
	if err != nil {
		return menu.Menu{}, FromNetwork, err
	}
	return menu.Build(entry.Categories), FromNetwork, nil
}

// Refresh always fetches, overwrites the cache, and notifies OnRefreshed.
func (l *Loader) Refresh(ctx context.Context) (menu.Menu, error) {
	entry, err := l.fetch(ctx)
	if err != nil {
		return menu.Menu{}, err
	}
	if l.onRefreshed != nil {
		l.onRefreshed(entry)
	}
	return menu.Build(entry.Categories), nil
}

func (l *Loader) fetch(ctx context.Context) (Entry, error) {
	categories, err := l.fetcher.FetchCategories(ctx)
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{Categories: categories, FetchedAt: l.now()}
	if l.cache != nil {
		if err := l.cache.Put(entry); err != nil {
			l.log.Warn("menu cache write failed", zap.Error(err))
		}
	}
	return entry, nil
}
