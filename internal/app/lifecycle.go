package app

import (
	"context"
	"os"

	"image-effect-desktop/internal/logger"
	"image-effect-desktop/internal/shutdown"
)

// Lifecycle owns shutdown ordering for the session. Components stop in
// reverse registration order.
type Lifecycle struct {
	manager *shutdown.Manager
	logger  logger.Logger
}

func NewLifecycle(manager *shutdown.Manager, log logger.Logger) *Lifecycle {
	return &Lifecycle{
		manager: manager,
		logger:  log,
	}
}

func (l *Lifecycle) Register(component shutdown.Shutdownable) {
	l.manager.Register(component)
}

// RegisterCloser adds a component whose cleanup is a plain Close
func (l *Lifecycle) RegisterCloser(name string, closeFn func() error) {
	l.manager.Register(shutdown.Func{
		Label: name,
		Fn: func(context.Context) error {
			return closeFn()
		},
	})
}

func (l *Lifecycle) Listen(onSignal func(os.Signal)) func() {
	return l.manager.Listen(onSignal)
}

// Shutdown is safe to call more than once; later calls return nil
func (l *Lifecycle) Shutdown() []error {
	return l.manager.Shutdown()
}

// Context is cancelled once shutdown starts
func (l *Lifecycle) Context() context.Context {
	return l.manager.Context()
}

func (l *Lifecycle) Done() <-chan struct{} {
	return l.manager.Done()
}
