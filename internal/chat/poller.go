package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/51D1B3/PharmacieMOS-sub001/internal/logging"
)

// PollerConfig contains configuration for the reconciliation poller.
type PollerConfig struct {
	// Interval is how often the viewer's slots are re-read. Conversations
	// are low-frequency human chat, so the default is seconds, not
	// milliseconds.
	Interval time.Duration
}

// DefaultPollerConfig returns sensible defaults.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval: 3 * time.Second,
	}
}

// Poller periodically reconciles the service's in-memory state with its
// persisted slots. It is the sole mechanism by which one participant
// receives what the other sent; there is no push channel between slots.
type Poller struct {
	config  PollerConfig
	service *Service
	logger  zerolog.Logger

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPoller creates a poller for the given service.
func NewPoller(config PollerConfig, service *Service) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultPollerConfig().Interval
	}
	return &Poller{
		config:  config,
		service: service,
		logger:  logging.Component("reconcile-poller"),
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrPollerAlreadyRunning
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	p.logger.Info().
		Dur("interval", p.config.Interval).
		Str("identity_id", p.service.Identity().ID).
		Msg("reconcile poller starting")

	p.wg.Add(1)
	go p.runLoop()

	return nil
}

// Stop halts the polling loop. The recurring tick must be cleared at
// session teardown or it outlives the view that needs it.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrPollerNotRunning
	}

	p.logger.Info().Msg("reconcile poller stopping")
	p.cancel()
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info().Msg("reconcile poller stopped")
	return nil
}

// IsRunning returns true if the poller is running.
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// runLoop is the main polling loop.
func (p *Poller) runLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick performs one reconciliation cycle.
func (p *Poller) tick() {
	changed, err := p.service.Reconcile(p.ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		p.logger.Warn().Err(err).Msg("reconciliation failed")
		return
	}
	if changed {
		p.logger.Debug().
			Int("unread_total", p.service.UnreadTotal()).
			Msg("merged external slot change")
	}
}

// PollNow triggers an immediate reconciliation outside the tick cadence.
func (p *Poller) PollNow() error {
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()

	if !running {
		return ErrPollerNotRunning
	}

	p.tick()
	return nil
}
