package payment

import (
	"context"
	"sync"
	"time"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultTickInterval = time.Second
)

// PollerConfig configures a Poller.
type PollerConfig struct {
	Client    StatusClient
	PaymentID string

	// ExpiresAt is the QR deadline. Reaching it while still pending moves
	// the payment to StatusExpired locally and halts polling; it is the
	// application-level timeout for the whole flow.
	ExpiresAt time.Time

	// PollInterval is the fixed status-poll period (default 5s). There is
	// deliberately no backoff or jitter.
	PollInterval time.Duration
	// TickInterval is the countdown recomputation period (default 1s).
	TickInterval time.Duration

	// OnStatus fires on every observed status, terminal or not.
	OnStatus func(Status)
	// OnTick fires each countdown tick with the remaining time, floored
	// at zero.
	OnTick func(remaining time.Duration)
	// OnError fires on transport errors during polling. Non-fatal: the
	// countdown keeps running and the next poll happens on schedule.
	OnError func(error)

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Poller watches one payment until it reaches a terminal status, the QR
// deadline passes, or the poller is stopped. Cancellation is first-class:
// Start returns the handle and Stop tears the loop down.
type Poller struct {
	cfg    PollerConfig
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	status Status
}

// StartPoller begins watching the payment. The first poll fires
// immediately, then every PollInterval. The returned handle must be
// stopped (or its context cancelled) to release the goroutine.
func StartPoller(ctx context.Context, cfg PollerConfig) *Poller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Poller{
		cfg:    cfg,
		cancel: cancel,
		done:   make(chan struct{}),
		status: StatusPending,
	}
	go p.run(ctx)
	return p
}

// Stop cancels the poll loop. Safe to call multiple times and after the
// loop has already terminated.
func (p *Poller) Stop() {
	p.cancel()
}

// Done is closed when the poll loop has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// Status returns the most recently observed status.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	defer p.cancel()

	countdown := time.NewTicker(p.cfg.TickInterval)
	defer countdown.Stop()
	poll := time.NewTicker(p.cfg.PollInterval)
	defer poll.Stop()

	if p.pollOnce(ctx) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-countdown.C:
			if p.tick() {
				return
			}
		case <-poll.C:
			if p.pollOnce(ctx) {
				return
			}
		}
	}
}

// tick recomputes the remaining time. Returns true when the deadline has
// passed and polling should halt.
func (p *Poller) tick() bool {
	remaining := p.cfg.ExpiresAt.Sub(p.cfg.Now())
	if remaining < 0 {
		remaining = 0
	}
	if p.cfg.OnTick != nil {
		p.cfg.OnTick(remaining)
	}

	if remaining > 0 {
		return false
	}

	p.mu.Lock()
	expired := p.status == StatusPending
	if expired {
		p.status = StatusExpired
	}
	p.mu.Unlock()

	if expired && p.cfg.OnStatus != nil {
		p.cfg.OnStatus(StatusExpired)
	}
	return true
}

// pollOnce fetches the status once. Returns true on a terminal status.
func (p *Poller) pollOnce(ctx context.Context) bool {
	status, err := p.cfg.Client.GetPaymentStatus(ctx, p.cfg.PaymentID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		if p.cfg.OnError != nil {
			p.cfg.OnError(err)
		}
		return false
	}

	p.mu.Lock()
	p.status = status
	p.mu.Unlock()

	if p.cfg.OnStatus != nil {
		p.cfg.OnStatus(status)
	}
	return status == StatusCompleted || status == StatusFailed
}
