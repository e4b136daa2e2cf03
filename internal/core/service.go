package core

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetguard/internal/store"
	"github.com/JonMunkholm/sheetguard/internal/validation"
)

var (
	// ErrProfileNotFound is returned when a profile id does not exist.
	ErrProfileNotFound = store.ErrNotFound

	// ErrNameRequired is returned when a profile is saved without a name.
	ErrNameRequired = errors.New("profile name is required")

	// ErrInvalidRule wraps the reason a rule definition was rejected.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrRuleNotFound is returned when a rule id does not exist in its profile.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrNoFile is returned when an upload carries no file.
	ErrNoFile = errors.New("no file provided")

	// ErrNoHeaders is returned when a sample file has no recognisable header row.
	ErrNoHeaders = errors.New("no header row found")

	// ErrInvalidRequest is returned for request bodies that cannot be decoded.
	ErrInvalidRequest = errors.New("invalid request body")
)

// DefaultAnalysisTimeout bounds a single analysis when none is configured.
const DefaultAnalysisTimeout = 2 * time.Minute

// Options configures a Service.
type Options struct {
	MaxFileSize   int64         // upload size limit in bytes, 0 for the decoder default
	Timeout       time.Duration // per-analysis deadline
	MaxConcurrent int           // parallel analyses
	MaxWaitTime   time.Duration // wait for a free analysis slot
}

// Service runs analyses and edits profiles.
type Service struct {
	profiles store.ProfileRepository
	history  store.HistoryRepository
	engine   *validation.Evaluator
	limiter  *AnalysisLimiter
	opts     Options
	logger   *slog.Logger

	// mu serialises read-modify-write cycles on profiles.
	mu sync.Mutex

	now   func() time.Time
	newID func() string
}

// NewService creates a Service over the given repositories.
// A nil logger uses slog.Default().
func NewService(profiles store.ProfileRepository, history store.HistoryRepository, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultAnalysisTimeout
	}

	return &Service{
		profiles: profiles,
		history:  history,
		engine:   validation.NewEvaluator(logger.With("component", "engine")),
		limiter:  NewAnalysisLimiter(opts.MaxConcurrent, opts.MaxWaitTime),
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Limiter returns the analysis limiter, for health reporting and shutdown.
func (s *Service) Limiter() *AnalysisLimiter {
	return s.limiter
}
