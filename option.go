package paygate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitwit/paygate/logger"
	"github.com/vitwit/paygate/metrics"
	"github.com/vitwit/paygate/verification"
)

type Option func(*settings)

func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		s.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *settings) {
		s.rec = r
	}
}

// WithTimeout bounds each receipt lookup against the RPC provider.
func WithTimeout(t time.Duration) Option {
	return func(s *settings) {
		s.timeout = t
	}
}

// WithTolerance overrides the additive amount tolerance used when
// comparing observed against required amounts.
func WithTolerance(t decimal.Decimal) Option {
	return func(s *settings) {
		s.tolerance = &t
	}
}

// WithCache memoizes definitive verification verdicts by proof hash.
func WithCache(size int, ttl time.Duration) Option {
	return func(s *settings) {
		s.cacheSize = size
		s.cacheTTL = ttl
	}
}

// WithMode marks the deployment mode. The demo bypass only activates
// in development.
func WithMode(mode verification.Mode) Option {
	return func(s *settings) {
		s.mode = mode
	}
}

// WithDemoBypass allow-lists sentinel proof values that skip chain
// verification. Ignored in production deployments.
func WithDemoBypass(allowList []string) Option {
	return func(s *settings) {
		s.bypass = allowList
	}
}
