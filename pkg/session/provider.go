package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/targetdesk/pkg/broadcast"
	"github.com/dmitrymomot/targetdesk/pkg/interceptor"
	"github.com/dmitrymomot/targetdesk/pkg/logger"
)

// Provider is the top-level owner of a session: it installs the
// authorization interceptor, routes its events to the manager and exposes
// the manager to the application through the context.
type Provider struct {
	manager *Manager
	reg     *interceptor.Registration
	events  *broadcast.Bus[interceptor.Unauthorized]
	logger  *slog.Logger

	mu      sync.Mutex
	mounted bool
	cancel  context.CancelFunc
	done    chan struct{}
}

type ProviderOption func(*Provider)

func WithProviderLogger(l *slog.Logger) ProviderOption {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProvider wires manager to the interceptor registration. The registration
// must publish to events.
func NewProvider(manager *Manager, reg *interceptor.Registration, events *broadcast.Bus[interceptor.Unauthorized], opts ...ProviderOption) *Provider {
	p := &Provider{
		manager: manager,
		reg:     reg,
		events:  events,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Manager returns the managed session.
func (p *Provider) Manager() *Manager {
	return p.manager
}

// Mount installs the interceptor, starts listening for unauthorized events,
// restores the persisted session and returns ctx carrying the consumer.
// A provider mounts once until Unmount.
func (p *Provider) Mount(ctx context.Context) (context.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mounted {
		return ctx, ErrAlreadyMounted
	}
	if err := p.reg.Install(); err != nil {
		return ctx, err
	}

	listenCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sub := p.events.Subscribe(listenCtx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub.C() {
			p.manager.ForceLogout(listenCtx, ev)
		}
	}()

	p.mounted = true
	p.cancel = cancel
	p.done = done

	p.manager.Initialize(ctx)
	p.logger.DebugContext(ctx, "session provider mounted",
		logger.Component("session"), logger.State(string(p.manager.Snapshot().State)))

	return WithConsumer(ctx, p.manager), nil
}

// Unmount stops the event listener and restores the original transport.
func (p *Provider) Unmount() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.mounted {
		return ErrNotMounted
	}

	p.cancel()
	<-p.done
	p.mounted = false

	return p.reg.Uninstall()
}

// Mounted reports whether Mount succeeded and Unmount has not been called.
func (p *Provider) Mounted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mounted
}
