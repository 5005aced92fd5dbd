package subprocess

import (
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// defaultPollInterval is the sleep increment used by the non-blocking
// read loop when slicing a finite timeout.
const defaultPollInterval = 2 * time.Millisecond

type config struct {
	dir          string
	env          map[string]string
	logger       *zap.Logger
	clock        clockwork.Clock
	pollInterval time.Duration
}

func newConfig(opts []Option) *config {
	cfg := &config{
		logger:       zap.NewNop(),
		clock:        clockwork.NewRealClock(),
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option configures a spawn.
type Option func(*config)

// WithDir sets the working directory of the child process. Defaults to
// the parent's working directory.
func WithDir(dir string) Option {
	return func(cfg *config) { cfg.dir = dir }
}

// WithEnv overlays the given variables on the inherited parent
// environment. Values are passed through verbatim.
func WithEnv(env map[string]string) Option {
	return func(cfg *config) { cfg.env = env }
}

// WithLogger sets the logger used for lifecycle events. Defaults to a
// no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithClock injects the clock used by read polling and wait timeouts.
func WithClock(clock clockwork.Clock) Option {
	return func(cfg *config) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// WithPollInterval sets the sleep increment of the non-blocking read
// loop. Smaller values lower read latency at the cost of more wakeups.
func WithPollInterval(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.pollInterval = d
		}
	}
}
