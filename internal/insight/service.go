package insight

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

type Options struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	// Every is the minimum interval between calls to the generator.
	Every time.Duration
}

// Service wraps a Generator so that it never fails: errors, timeouts and
// rate limiting all yield an empty summary. Summaries are cached per stats
// bundle.
type Service struct {
	gen     Generator
	timeout time.Duration
	cache   *cache.Cache
	limiter *rate.Limiter
}

func NewService(gen Generator, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}

	limit := rate.Inf
	if opts.Every > 0 {
		limit = rate.Every(opts.Every)
	}

	return &Service{
		gen:     gen,
		timeout: opts.Timeout,
		cache:   cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (s *Service) Summarize(ctx context.Context, stats Stats) string {
	if s == nil || s.gen == nil || stats.Empty() {
		return ""
	}

	key, err := json.Marshal(stats)
	if err != nil {
		slog.Warn("failed to encode insight stats", "error", err)
		return ""
	}

	if text, ok := s.cache.Get(string(key)); ok {
		return text.(string)
	}

	if !s.limiter.Allow() {
		slog.Debug("insight generation rate limited")
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(ctx, stats)
	if err != nil {
		slog.Warn("failed to generate insight", "error", err)
		return ""
	}

	text = strings.TrimSpace(text)
	if text != "" {
		s.cache.Set(string(key), text, cache.DefaultExpiration)
	}

	return text
}

// Flush drops cached summaries, e.g. after the underlying data changed.
func (s *Service) Flush() {
	if s != nil {
		s.cache.Flush()
	}
}
