package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrPoolClosed is returned by Submit after Shutdown has started.
var ErrPoolClosed = errors.New("worker pool closed")

// Job is one unit of detached work. It receives a context bounded by the pool's job timeout.
type Job struct {
	ID  string
	Run func(ctx context.Context) error
}

// Options sizes the pool.
type Options struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
	// OnDone is called after every job with its result.
	OnDone func(job Job, err error)
}

// Pool runs jobs on a fixed set of workers fed by a buffered queue. Submit never blocks
// the caller; jobs that do not fit in the queue are parked on a tracked goroutine until
// a slot frees up.
type Pool struct {
	logger   *zap.Logger
	opts     Options
	queue    chan Job
	group    *errgroup.Group
	stop     chan struct{}
	mu       sync.RWMutex
	closed   bool
	pending  sync.WaitGroup
	parked   sync.WaitGroup
	inFlight atomic.Int64
}

// NewPool starts the workers.
func NewPool(opts Options, logger *zap.Logger) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 15 * time.Second
	}

	p := &Pool{
		logger: logger,
		opts:   opts,
		queue:  make(chan Job, opts.QueueSize),
		group:  new(errgroup.Group),
		stop:   make(chan struct{}),
	}
	for i := 0; i < opts.Workers; i++ {
		p.group.Go(func() error {
			p.work()
			return nil
		})
	}
	return p
}

func (p *Pool) work() {
	for job := range p.queue {
		p.run(job)
	}
}

func (p *Pool) run(job Job) {
	defer p.inFlight.Add(-1)
	defer p.pending.Done()

	ctx, cancel := context.WithTimeout(context.Background(), p.opts.JobTimeout)
	defer cancel()

	err := safeRun(ctx, job)
	if err != nil {
		p.logger.Warn("job failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	if p.opts.OnDone != nil {
		p.opts.OnDone(job, err)
	}
}

func safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("job panicked")
		}
	}()
	return job.Run(ctx)
}

// Submit hands a job to the pool without waiting for it to start.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	p.pending.Add(1)
	p.inFlight.Add(1)

	select {
	case p.queue <- job:
	default:
		p.parked.Add(1)
		go p.park(job)
	}
	return nil
}

// park waits for queue space on behalf of a caller that must not block.
func (p *Pool) park(job Job) {
	defer p.parked.Done()
	select {
	case p.queue <- job:
	case <-p.stop:
		p.logger.Warn("dropping job; pool stopped before it was queued", zap.String("job_id", job.ID))
		if p.opts.OnDone != nil {
			p.opts.OnDone(job, ErrPoolClosed)
		}
		p.inFlight.Add(-1)
		p.pending.Done()
	}
}

// InFlight counts jobs submitted but not yet finished.
func (p *Pool) InFlight() int64 {
	return p.inFlight.Load()
}

// Shutdown rejects new jobs and waits for queued and running ones until ctx expires.
// On expiry, jobs still parked for a queue slot are dropped and the workers finish
// whatever is already queued in the background.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		p.pending.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		close(p.stop)
		close(p.queue)
		return p.group.Wait()
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown before drain", zap.Int64("in_flight", p.InFlight()))
		close(p.stop)
		p.parked.Wait()
		close(p.queue)
		return ctx.Err()
	}
}
