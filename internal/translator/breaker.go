package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig controls when repeated provider failures stop further calls.
type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker. Zero means 5.
	ConsecutiveFailures uint32 `mapstructure:"consecutive_failures"`
	// Cooldown is how long the breaker stays open. Zero means 30s.
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// BreakerService fails fast with KindUnavailable while the wrapped service
// keeps failing, so a dead provider does not cost a full timeout per attempt.
type BreakerService struct {
	next TranslationService
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps next in a circuit breaker. Only retryable provider-side
// failures count against the breaker; bad input does not.
func WithBreaker(next TranslationService, cfg BreakerConfig, logger *slog.Logger) *BreakerService {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	threshold := cfg.ConsecutiveFailures
	return &BreakerService{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        next.Name(),
			MaxRequests: 1,
			Timeout:     cfg.Cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				if err == nil {
					return true
				}
				switch KindOf(err) {
				case KindInvalidLanguage, KindEmptyResult, KindCanceled:
					return true
				}
				return false
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed", "service", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

func (b *BreakerService) Name() string {
	return b.next.Name()
}

func (b *BreakerService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	var result *ServiceResult
	_, err := b.cb.Execute(func() (interface{}, error) {
		res, err := b.next.Translate(ctx, cfg, req)
		result = res
		return res, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		result = &ServiceResult{ServiceName: b.Name()}
		return fail(result, KindUnavailable, fmt.Errorf("circuit open: %w", err))
	}
	return result, err
}

func (b *BreakerService) IsAvailable(ctx context.Context) error {
	return b.next.IsAvailable(ctx)
}

// State exposes the breaker state for logging and tests.
func (b *BreakerService) State() gobreaker.State {
	return b.cb.State()
}
