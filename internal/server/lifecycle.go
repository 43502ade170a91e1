// Package server runs the game process: it starts the session, waits for it to
// finish or for a termination signal, then stops everything and releases stores.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component.
type Service interface {
	// Start runs the service and blocks until it finishes or is stopped.
	// Returning, with or without an error, ends the whole process.
	Start() error
	// Stop asks a running service to return from Start. It must be safe to
	// call after Start has returned.
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function, if any.
func (f *FuncService) Stop() {
	if f.StopFn != nil {
		f.StopFn()
	}
}

// Lifecycle starts services in order, stops them in reverse order and then
// releases resources, also in reverse order of registration.
type Lifecycle struct {
	logger    *zap.Logger
	services  []named[Service]
	closers   []named[func() error]
	mu        sync.Mutex
	signals   []os.Signal
	closeOnce sync.Once
}

type named[T any] struct {
	name string
	v    T
}

// NewLifecycle creates a Lifecycle that listens for SIGINT and SIGTERM.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lifecycle{
		logger:  logger,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// Add registers a named service. Services start in the order they are added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, named[Service]{name: name, v: svc})
}

// AddCloser registers a resource to release after every service has stopped.
//
// Precondition: fn must be non-nil.
func (l *Lifecycle) AddCloser(name string, fn func() error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closers = append(l.closers, named[func() error]{name: name, v: fn})
}

// Run starts every service and blocks until one returns, a termination signal
// arrives or ctx is cancelled.
//
// Postcondition: Every service is stopped and every closer has run. The
// returned error joins the first service failure with any close failures.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		name string
		err  error
	}
	doneCh := make(chan result, len(l.services))
	for _, ns := range l.services {
		go func() {
			l.logger.Info("starting service", zap.String("service", ns.name))
			svcStart := time.Now()
			err := ns.v.Start()
			if err != nil {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
			} else {
				l.logger.Info("service finished",
					zap.String("service", ns.name),
					zap.Duration("uptime", time.Since(svcStart)),
				)
			}
			doneCh <- result{name: ns.name, err: err}
		}()
	}

	l.logger.Info("all services started",
		zap.Int("count", len(l.services)),
		zap.Duration("startup", time.Since(start)),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, l.signals...)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		l.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case r := <-doneCh:
		if r.err != nil {
			runErr = fmt.Errorf("service %s: %w", r.name, r.err)
		}
	case <-ctx.Done():
		l.logger.Info("context cancelled, shutting down")
	}

	l.shutdown()
	closeErr := l.Close()

	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return errors.Join(runErr, closeErr)
}

func (l *Lifecycle) shutdown() {
	shutdownStart := time.Now()
	for i := len(l.services) - 1; i >= 0; i-- {
		ns := l.services[i]
		svcStart := time.Now()
		l.logger.Info("stopping service", zap.String("service", ns.name))
		ns.v.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Info("all services stopped", zap.Duration("shutdown_elapsed", time.Since(shutdownStart)))
}

// Close runs every closer in reverse order of registration. Only the first
// call does anything.
func (l *Lifecycle) Close() error {
	var errs []error
	l.closeOnce.Do(func() {
		for i := len(l.closers) - 1; i >= 0; i-- {
			c := l.closers[i]
			if err := c.v(); err != nil {
				l.logger.Warn("close failed", zap.String("resource", c.name), zap.Error(err))
				errs = append(errs, fmt.Errorf("closing %s: %w", c.name, err))
				continue
			}
			l.logger.Info("resource closed", zap.String("resource", c.name))
		}
	})
	return errors.Join(errs...)
}
