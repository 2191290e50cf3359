package watch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"lectureiq/internal/api"
	"lectureiq/internal/logging"
)

const (
	defaultDetailInterval = 4 * time.Second
	defaultListInterval   = 5 * time.Second
)

// ErrClosed is returned by subscribe calls after the controller shuts down.
var ErrClosed = errors.New("watch controller closed")

// Fetcher is the slice of the API client the controller depends on.
type Fetcher interface {
	Get(ctx context.Context, id string) (*api.LectureDetail, error)
	List(ctx context.Context, page, limit int) ([]api.Lecture, error)
}

// Options tunes controller construction.
type Options struct {
	// DetailInterval is the delay between polls of a single lecture.
	DetailInterval time.Duration
	// ListInterval is the delay between list refreshes.
	ListInterval time.Duration
	Logger       *slog.Logger
}

// Controller owns the per-lecture polling registry.
type Controller struct {
	fetcher        Fetcher
	detailInterval time.Duration
	listInterval   time.Duration
	logger         *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	flights singleflight.Group

	mu      sync.Mutex
	jobs    map[string]*jobWatch
	lists   map[int]*listWatch
	nextSub int
	closed  bool
}

type subscriber struct {
	fn func(*api.LectureDetail)
	// lastSeq guards against duplicate or late delivery of a snapshot the
	// subscriber has already seen.
	lastSeq uint64
}

type jobWatch struct {
	id       string
	snapshot *api.LectureDetail
	seq      uint64
	subs     map[int]*subscriber
	timer    *time.Timer

	// emitMu keeps snapshot deliveries ordered per subscription without
	// holding the registry lock during callbacks.
	emitMu sync.Mutex
}

type listWatch struct {
	id    int
	fn    func([]api.Lecture)
	timer *time.Timer
}

// New builds a Controller around the given fetcher.
func New(fetcher Fetcher, opts Options) *Controller {
	detail := opts.DetailInterval
	if detail <= 0 {
		detail = defaultDetailInterval
	}
	list := opts.ListInterval
	if list <= 0 {
		list = defaultListInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		fetcher:        fetcher,
		detailInterval: detail,
		listInterval:   list,
		logger:         logging.WithComponent(opts.Logger, "watch"),
		ctx:            ctx,
		cancel:         cancel,
		jobs:           make(map[string]*jobWatch),
		lists:          make(map[int]*listWatch),
	}
}

// Close stops every polling loop and rejects further subscriptions.
func (c *Controller) Close() {
	c.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, w := range c.jobs {
		if w.timer != nil {
			w.timer.Stop()
		}
		delete(c.jobs, id)
	}
	for id, lw := range c.lists {
		if lw.timer != nil {
			lw.timer.Stop()
		}
		delete(c.lists, id)
	}
}

// Subscription is the unsubscribe handle returned by Subscribe.
type Subscription struct {
	c     *Controller
	jobID string
	subID int
}

// Unsubscribe cancels any pending scheduled fetch for this subscriber. When
// the last subscriber for a lecture detaches, its polling state is
// discarded entirely; an in-flight fetch completes but its result is
// dropped. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	w := s.c.jobs[s.jobID]
	if w == nil {
		return
	}
	delete(w.subs, s.subID)
	if len(w.subs) == 0 {
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		delete(s.c.jobs, s.jobID)
	}
}

// Subscribe registers interest in a lecture and emits a snapshot via fn
// before returning. When no loop exists for the id an immediate fetch runs
// and its failure is returned to the caller; when a loop already exists the
// subscriber attaches to it and receives the cached snapshot, creating no
// extra network traffic. While the snapshot is non-terminal the controller
// keeps fetching at a fixed interval and fans every result out to all
// subscribers of the id.
//
// Callbacks run sequentially per lecture. They may unsubscribe, but must
// not subscribe to the same lecture from within the callback.
func (c *Controller) Subscribe(ctx context.Context, jobID string, fn func(*api.LectureDetail)) (*Subscription, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	w := c.jobs[jobID]
	created := w == nil
	if created {
		w = &jobWatch{id: jobID, subs: make(map[int]*subscriber)}
		c.jobs[jobID] = w
	}
	subID := c.nextSub
	c.nextSub++
	sub := &subscriber{fn: fn}
	w.subs[subID] = sub
	hasSnapshot := w.snapshot != nil
	c.mu.Unlock()

	handle := &Subscription{c: c, jobID: jobID, subID: subID}

	if !created && hasSnapshot {
		// Attach to the existing loop; serve the cached snapshot.
		c.deliverTo(jobID, subID)
		return handle, nil
	}

	if _, err := c.fetchDetail(ctx, jobID); err != nil {
		handle.Unsubscribe()
		return nil, err
	}
	// The fetch broadcast usually reaches the new subscriber; deliverTo
	// covers the case where this call joined a broadcast already past it.
	c.deliverTo(jobID, subID)
	return handle, nil
}

// Refresh forces a foreground fetch for a lecture. It shares in-flight
// requests with scheduled polls, so a refresh racing a tick costs one
// network call. Errors are surfaced to the caller.
func (c *Controller) Refresh(ctx context.Context, jobID string) (*api.LectureDetail, error) {
	return c.fetchDetail(ctx, jobID)
}

// fetchDetail performs one collapsed fetch for the lecture and commits the
// result to the registry.
func (c *Controller) fetchDetail(ctx context.Context, jobID string) (*api.LectureDetail, error) {
	v, err, _ := c.flights.Do(jobID, func() (any, error) {
		detail, err := c.fetcher.Get(ctx, jobID)
		if err != nil {
			return nil, err
		}
		c.commit(jobID, detail)
		return detail, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*api.LectureDetail), nil
}

// commit stores a fetched snapshot, reschedules or retires the loop, and
// fans the snapshot out. A fetch that resolves after the last unsubscribe
// finds no registry entry and is discarded.
func (c *Controller) commit(jobID string, detail *api.LectureDetail) {
	c.mu.Lock()
	w := c.jobs[jobID]
	if w == nil {
		c.mu.Unlock()
		return
	}
	w.snapshot = detail
	w.seq++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if detail.Status.Active() && len(w.subs) > 0 {
		c.armLocked(w)
	}
	c.mu.Unlock()

	c.broadcast(w, detail)
}

// armLocked schedules the next poll. Caller holds c.mu.
func (c *Controller) armLocked(w *jobWatch) {
	jobID := w.id
	w.timer = time.AfterFunc(c.detailInterval, func() {
		c.tick(jobID)
	})
}

func (c *Controller) tick(jobID string) {
	c.mu.Lock()
	w := c.jobs[jobID]
	if w == nil || len(w.subs) == 0 || c.closed {
		c.mu.Unlock()
		return
	}
	w.timer = nil
	c.mu.Unlock()

	if _, err := c.fetchDetail(c.ctx, jobID); err != nil {
		// Background refreshes swallow transient failures; the previous
		// snapshot stays current and the next tick retries.
		c.logger.Debug("background poll failed",
			logging.String("lecture", jobID),
			logging.Error(err))
		c.rearmAfterFailure(jobID)
	}
}

func (c *Controller) rearmAfterFailure(jobID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.jobs[jobID]
	if w == nil || len(w.subs) == 0 || w.timer != nil || c.closed {
		return
	}
	if w.snapshot != nil && w.snapshot.Status.IsTerminal() {
		return
	}
	c.armLocked(w)
}

// broadcast delivers a snapshot to every subscriber that has not seen it.
func (c *Controller) broadcast(w *jobWatch, detail *api.LectureDetail) {
	w.emitMu.Lock()
	defer w.emitMu.Unlock()

	c.mu.Lock()
	seq := w.seq
	targets := make([]func(*api.LectureDetail), 0, len(w.subs))
	for _, sub := range w.subs {
		if sub.lastSeq < seq {
			sub.lastSeq = seq
			targets = append(targets, sub.fn)
		}
	}
	snapshot := w.snapshot
	c.mu.Unlock()

	for _, fn := range targets {
		fn(snapshot)
	}
}

// deliverTo hands the current snapshot to a single subscriber unless it has
// already received it through a broadcast.
func (c *Controller) deliverTo(jobID string, subID int) {
	c.mu.Lock()
	w := c.jobs[jobID]
	if w == nil || w.snapshot == nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	w.emitMu.Lock()
	defer w.emitMu.Unlock()

	c.mu.Lock()
	sub := w.subs[subID]
	deliver := sub != nil && sub.lastSeq < w.seq
	var fn func(*api.LectureDetail)
	var snapshot *api.LectureDetail
	if deliver {
		sub.lastSeq = w.seq
		fn = sub.fn
		snapshot = w.snapshot
	}
	c.mu.Unlock()

	if deliver {
		fn(snapshot)
	}
}
