package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type blockingService struct {
	started atomic.Bool
	stopped atomic.Bool
	stopCh  chan struct{}
	once    sync.Once
	order   *orderLog
	name    string
}

func newBlocking(name string, order *orderLog) *blockingService {
	return &blockingService{stopCh: make(chan struct{}), order: order, name: name}
}

func (m *blockingService) Start() error {
	m.started.Store(true)
	<-m.stopCh
	return nil
}

func (m *blockingService) Stop() {
	m.once.Do(func() {
		m.stopped.Store(true)
		if m.order != nil {
			m.order.add("stop " + m.name)
		}
		close(m.stopCh)
	})
}

type orderLog struct {
	mu    sync.Mutex
	steps []string
}

func (o *orderLog) add(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.steps = append(o.steps, s)
}

func (o *orderLog) get() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.steps...)
}

func waitStarted(t *testing.T, svcs ...*blockingService) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, s := range svcs {
			if !s.started.Load() {
				return false
			}
		}
		return true
	}, 2*time.Second, 5*time.Millisecond)
}

func TestLifecycle_ContextCancelStopsServicesInReverse(t *testing.T) {
	order := &orderLog{}
	lc := NewLifecycle(zaptest.NewLogger(t))
	svc1 := newBlocking("one", order)
	svc2 := newBlocking("two", order)
	lc.Add("one", svc1)
	lc.Add("two", svc2)
	lc.AddCloser("store", func() error { order.add("close store"); return nil })
	lc.AddCloser("logger", func() error { order.add("close logger"); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	waitStarted(t, svc1, svc2)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.Equal(t, []string{"stop two", "stop one", "close logger", "close store"}, order.get())
}

func TestLifecycle_FinishedServiceEndsRun(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	other := newBlocking("other", nil)
	lc.Add("other", other)
	lc.Add("session", &FuncService{StartFn: func() error { return nil }})

	done := make(chan error, 1)
	go func() { done <- lc.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not end when the session finished")
	}
	assert.True(t, other.stopped.Load())
}

func TestLifecycle_ReturnsServiceAndCloseErrors(t *testing.T) {
	boom := errors.New("boom")
	stuck := errors.New("stuck")
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.Add("session", &FuncService{StartFn: func() error { return boom }})
	lc.AddCloser("store", func() error { return stuck })

	err := lc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, stuck)
	assert.Contains(t, err.Error(), "service session")
}

func TestLifecycle_CloseRunsOnce(t *testing.T) {
	var n atomic.Int32
	lc := NewLifecycle(nil)
	lc.AddCloser("store", func() error { n.Add(1); return nil })
	require.NoError(t, lc.Close())
	require.NoError(t, lc.Close())
	assert.Equal(t, int32(1), n.Load())
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	err := svc.Start()
	assert.NoError(t, err)
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)

	(&FuncService{StartFn: func() error { return nil }}).Stop()
}
