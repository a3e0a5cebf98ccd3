package browser

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Retirement thresholds for pooled tabs.
const (
	maxErrScore = 3.0
	maxUses     = 50
	maxAge      = 50 * time.Minute
)

var (
	// ErrPoolClosed is returned by Get after Close.
	ErrPoolClosed = errors.New("browser pool closed")

	// ErrPoolExhausted is returned by Get when the context ends while
	// every slot is checked out.
	ErrPoolExhausted = errors.New("browser pool exhausted")
)

// Handle wraps a pooled value with health tracking metadata.
type Handle[T any] struct {
	Value T

	id       int64
	errScore float64
	useCount int
	created  time.Time
	mu       sync.Mutex
}

// RecordSuccess decreases the error score (min 0).
func (h *Handle[T]) RecordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.useCount++
	h.errScore = math.Max(0, h.errScore-0.5)
}

// RecordFailure increases the error score.
func (h *Handle[T]) RecordFailure() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.useCount++
	h.errScore += 1.0
}

// ShouldRetire returns true if the value should be destroyed based on health metrics.
func (h *Handle[T]) ShouldRetire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errScore >= maxErrScore ||
		h.useCount >= maxUses ||
		time.Since(h.created) >= maxAge
}

// PoolConfig sizes a Pool.
type PoolConfig struct {
	MinSize int // created eagerly
	MaxSize int // hard cap on live values
}

// Pool is a bounded pool of reusable values. Get blocks while all MaxSize
// values are checked out. Unhealthy values are destroyed on Put and
// recreated lazily by a later Get.
type Pool[T any] struct {
	cfg     PoolConfig
	factory func() (T, error)
	destroy func(T)

	idle   chan *Handle[T]
	mu     sync.Mutex
	size   int // live values plus in-flight creations
	closed bool
	done   chan struct{}
	freed  chan struct{}
	nextID atomic.Int64
	active atomic.Int32
}

// NewPool creates a pool and pre-creates cfg.MinSize values. Creation
// failures at startup are logged, not fatal.
func NewPool[T any](cfg PoolConfig, factory func() (T, error), destroy func(T)) *Pool[T] {
	if cfg.MaxSize < 1 {
		cfg.MaxSize = 1
	}
	if cfg.MinSize > cfg.MaxSize {
		cfg.MinSize = cfg.MaxSize
	}

	p := &Pool[T]{
		cfg:     cfg,
		factory: factory,
		destroy: destroy,
		idle:    make(chan *Handle[T], cfg.MaxSize),
		done:    make(chan struct{}),
		freed:   make(chan struct{}, 1),
	}

	for i := 0; i < cfg.MinSize; i++ {
		p.mu.Lock()
		p.size++
		p.mu.Unlock()
		h, err := p.create()
		if err != nil {
			slog.Warn("browser pool: failed to pre-create tab", "error", err)
			continue
		}
		p.idle <- h
	}
	return p
}

// Get checks out a value. It prefers an idle value, creates one while
// under MaxSize, and otherwise waits until a value is returned, a slot
// is freed, or ctx ends.
func (p *Pool[T]) Get(ctx context.Context) (*Handle[T], error) {
	for {
		select {
		case h := <-p.idle:
			p.active.Add(1)
			return h, nil
		default:
		}

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}
		if p.size < p.cfg.MaxSize {
			p.size++
			p.mu.Unlock()
			h, err := p.create()
			if err != nil {
				return nil, err
			}
			p.active.Add(1)
			return h, nil
		}
		p.mu.Unlock()

		select {
		case h := <-p.idle:
			p.active.Add(1)
			return h, nil
		case <-p.freed:
			// A value was retired; retry creation.
		case <-p.done:
			return nil, ErrPoolClosed
		case <-ctx.Done():
			return nil, errors.Join(ErrPoolExhausted, ctx.Err())
		}
	}
}

// Put returns a checked-out value and records the outcome of its use.
func (p *Pool[T]) Put(h *Handle[T], success bool) {
	p.active.Add(-1)

	if success {
		h.RecordSuccess()
	} else {
		h.RecordFailure()
	}

	retire := h.ShouldRetire()

	p.mu.Lock()
	if !p.closed && !retire {
		// Never blocks: idle holds up to MaxSize handles.
		p.idle <- h
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	slog.Debug("browser pool: retiring tab", "id", h.id, "retire", retire)
	p.discard(h)
}

// Size returns the number of live values, idle or checked out.
func (p *Pool[T]) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// ActiveCount returns the number of checked-out values.
func (p *Pool[T]) ActiveCount() int {
	return int(p.active.Load())
}

// Max returns the pool capacity.
func (p *Pool[T]) Max() int { return p.cfg.MaxSize }

// Close destroys idle values and wakes waiting callers. Values still
// checked out are destroyed when they are Put back.
func (p *Pool[T]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.done)
	var drained []*Handle[T]
drain:
	for {
		select {
		case h := <-p.idle:
			drained = append(drained, h)
		default:
			break drain
		}
	}
	p.mu.Unlock()

	for _, h := range drained {
		p.discard(h)
	}
}

// create builds a new handle for a slot the caller already reserved.
func (p *Pool[T]) create() (*Handle[T], error) {
	v, err := p.factory()
	if err != nil {
		p.release()
		return nil, err
	}
	return &Handle[T]{
		Value:   v,
		id:      p.nextID.Add(1),
		created: time.Now(),
	}, nil
}

// discard destroys a handle's value and frees its slot.
func (p *Pool[T]) discard(h *Handle[T]) {
	p.destroy(h.Value)
	p.release()
}

// release frees one reserved slot and wakes a waiting Get.
func (p *Pool[T]) release() {
	p.mu.Lock()
	p.size--
	p.mu.Unlock()
	select {
	case p.freed <- struct{}{}:
	default:
	}
}
