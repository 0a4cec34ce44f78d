package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"image-effect-desktop/internal/logger"
)

const DefaultComponentTimeout = 10 * time.Second

type Shutdownable interface {
	Name() string
	Shutdown(ctx context.Context) error
}

// Func adapts a plain cleanup function to Shutdownable
type Func struct {
	Label string
	Fn    func(ctx context.Context) error
}

func (f Func) Name() string { return f.Label }

func (f Func) Shutdown(ctx context.Context) error { return f.Fn(ctx) }

type Manager struct {
	components []Shutdownable
	logger     logger.Logger
	timeout    time.Duration
	mu         sync.Mutex
	done       chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewManager(log logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		components: make([]Shutdownable, 0),
		logger:     log,
		timeout:    DefaultComponentTimeout,
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// SetComponentTimeout bounds how long each component may take to stop
func (m *Manager) SetComponentTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = d
}

func (m *Manager) Register(component Shutdownable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, component)
}

// Listen runs onSignal and then Shutdown when SIGINT or SIGTERM arrives.
// The returned function stops listening.
func (m *Manager) Listen(onSignal func(os.Signal)) (stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Info("ShutdownManager", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			if onSignal != nil {
				onSignal(sig)
			}
			m.Shutdown()
		case <-m.done:
		}
	}()

	return func() { signal.Stop(sigChan) }
}

// Shutdown cancels the manager context and stops components in reverse
// registration order. Only the first call does any work.
func (m *Manager) Shutdown() []error {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return nil
	default:
		close(m.done)
	}

	m.logger.Info("ShutdownManager", "shutdown sequence initiated", map[string]interface{}{
		"components": len(m.components),
	})

	m.cancel()

	var errs []error
	for i := len(m.components) - 1; i >= 0; i-- {
		component := m.components[i]

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		result := make(chan error, 1)
		go func() {
			result <- component.Shutdown(ctx)
		}()

		var err error
		select {
		case err = <-result:
		case <-ctx.Done():
			err = fmt.Errorf("%s: shutdown timed out after %s", component.Name(), m.timeout)
		}
		cancel()

		if err != nil {
			m.logger.Warning("ShutdownManager", "component shutdown failed", map[string]interface{}{
				"component": component.Name(),
				"error":     err.Error(),
			})
			errs = append(errs, err)
			continue
		}

		m.logger.Debug("ShutdownManager", "component stopped", map[string]interface{}{
			"component": component.Name(),
		})
	}

	m.logger.Info("ShutdownManager", "shutdown sequence completed", nil)
	return errs
}

// Context is cancelled when shutdown begins
func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
