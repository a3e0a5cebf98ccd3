package browser

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// counter is a fake tab factory.
type counter struct {
	created   atomic.Int32
	destroyed atomic.Int32
	fail      atomic.Bool
}

func (c *counter) factory() (int, error) {
	if c.fail.Load() {
		return 0, errors.New("factory failed")
	}
	return int(c.created.Add(1)), nil
}

func (c *counter) destroy(int) { c.destroyed.Add(1) }

func newTestPool(min, max int) (*Pool[int], *counter) {
	c := &counter{}
	return NewPool(PoolConfig{MinSize: min, MaxSize: max}, c.factory, c.destroy), c
}

func TestPool_PreCreatesMinSize(t *testing.T) {
	p, c := newTestPool(2, 4)
	defer p.Close()

	if got := c.created.Load(); got != 2 {
		t.Errorf("created = %d, want 2", got)
	}
	if got := p.Size(); got != 2 {
		t.Errorf("Size() = %d, want 2", got)
	}
}

func TestPool_GetReusesReturnedValue(t *testing.T) {
	p, c := newTestPool(0, 2)
	defer p.Close()

	h, err := p.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	first := h.Value
	p.Put(h, true)

	h2, err := p.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if h2.Value != first {
		t.Errorf("expected reuse of value %d, got %d", first, h2.Value)
	}
	if got := c.created.Load(); got != 1 {
		t.Errorf("created = %d, want 1", got)
	}
	p.Put(h2, true)
}

func TestPool_BlocksWhenExhausted(t *testing.T) {
	p, _ := newTestPool(0, 1)
	defer p.Close()

	h, err := p.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = p.Get(ctx)
	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected the context error to be joined, got %v", err)
	}
	if got := p.ActiveCount(); got != 1 {
		t.Errorf("ActiveCount() = %d, want 1", got)
	}
	p.Put(h, true)
}

func TestPool_WaiterReceivesReturnedValue(t *testing.T) {
	p, _ := newTestPool(0, 1)
	defer p.Close()

	h, err := p.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	got := make(chan *Handle[int], 1)
	go func() {
		h2, err := p.Get(context.Background())
		if err != nil {
			t.Errorf("waiting Get: %v", err)
		}
		got <- h2
	}()

	time.Sleep(20 * time.Millisecond)
	p.Put(h, true)

	select {
	case h2 := <-got:
		if h2.Value != h.Value {
			t.Errorf("waiter got %d, want %d", h2.Value, h.Value)
		}
		p.Put(h2, true)
	case <-time.After(time.Second):
		t.Fatal("waiter was never served")
	}
}

func TestPool_RetiresUnhealthyValue(t *testing.T) {
	p, c := newTestPool(0, 1)
	defer p.Close()

	for i := 0; i < 3; i++ {
		h, err := p.Get(context.Background())
		if err != nil {
			t.Fatalf("Get %d: %v", i, err)
		}
		p.Put(h, false)
	}

	if got := c.destroyed.Load(); got != 1 {
		t.Errorf("destroyed = %d, want 1 after three failures", got)
	}
	if got := p.Size(); got != 0 {
		t.Errorf("Size() = %d, want 0", got)
	}

	h, err := p.Get(context.Background())
	if err != nil {
		t.Fatalf("Get after retirement: %v", err)
	}
	if h.Value != 2 {
		t.Errorf("expected a fresh value 2, got %d", h.Value)
	}
	p.Put(h, true)
}

func TestPool_RetirementWakesWaiter(t *testing.T) {
	p, _ := newTestPool(0, 1)
	defer p.Close()

	h, err := p.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	h.errScore = maxErrScore

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		h2, err := p.Get(ctx)
		if err != nil {
			t.Errorf("waiting Get: %v", err)
			return
		}
		p.Put(h2, true)
	}()

	time.Sleep(20 * time.Millisecond)
	p.Put(h, false)
	wg.Wait()
}

func TestPool_FactoryFailureFreesSlot(t *testing.T) {
	p, c := newTestPool(0, 1)
	defer p.Close()

	c.fail.Store(true)
	if _, err := p.Get(context.Background()); err == nil {
		t.Fatal("expected factory error")
	}
	if got := p.Size(); got != 0 {
		t.Errorf("Size() = %d after failed create, want 0", got)
	}

	c.fail.Store(false)
	h, err := p.Get(context.Background())
	if err != nil {
		t.Fatalf("Get after recovery: %v", err)
	}
	p.Put(h, true)
}

func TestPool_Close(t *testing.T) {
	p, c := newTestPool(2, 3)

	h, err := p.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	p.Close()
	if got := c.destroyed.Load(); got != 1 {
		t.Errorf("destroyed = %d after Close, want 1 idle value", got)
	}

	p.Put(h, true)
	if got := c.destroyed.Load(); got != 2 {
		t.Errorf("destroyed = %d after Put on closed pool, want 2", got)
	}

	if _, err := p.Get(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

func TestHandle_ShouldRetire(t *testing.T) {
	tests := []struct {
		name     string
		errScore float64
		useCount int
		age      time.Duration
		want     bool
	}{
		{"fresh", 0, 0, 0, false},
		{"error score", maxErrScore, 1, 0, true},
		{"use count", 0, maxUses, 0, true},
		{"age", 0, 1, maxAge + time.Second, true},
		{"almost unhealthy", maxErrScore - 0.5, maxUses - 1, maxAge - time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handle[int]{
				errScore: tt.errScore,
				useCount: tt.useCount,
				created:  time.Now().Add(-tt.age),
			}
			if got := h.ShouldRetire(); got != tt.want {
				t.Errorf("ShouldRetire() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandle_RecordSuccessFloorsAtZero(t *testing.T) {
	h := &Handle[int]{created: time.Now()}
	h.RecordFailure()
	h.RecordSuccess()
	h.RecordSuccess()
	if h.errScore != 0 {
		t.Errorf("errScore = %v, want 0", h.errScore)
	}
	if h.useCount != 3 {
		t.Errorf("useCount = %d, want 3", h.useCount)
	}
}
