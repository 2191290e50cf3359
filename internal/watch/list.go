package watch

import (
	"context"
	"time"

	"lectureiq/internal/api"
	"lectureiq/internal/logging"
)

// ListSubscription is the unsubscribe handle returned by SubscribeList.
type ListSubscription struct {
	c  *Controller
	id int
}

// Unsubscribe cancels any pending list refresh. Safe to call more than
// once.
func (s *ListSubscription) Unsubscribe() {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	lw := s.c.lists[s.id]
	if lw == nil {
		return
	}
	if lw.timer != nil {
		lw.timer.Stop()
		lw.timer = nil
	}
	delete(s.c.lists, s.id)
}

// SubscribeList registers interest in the lecture list. One fetch runs
// immediately and its result is emitted before returning; a recurring
// refresh is armed only while at least one listed lecture is non-terminal,
// so a fully settled list costs exactly one request. Refresh failures after
// the first fetch are swallowed and the previous emission stands.
func (c *Controller) SubscribeList(ctx context.Context, fn func([]api.Lecture)) (*ListSubscription, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	id := c.nextSub
	c.nextSub++
	lw := &listWatch{id: id, fn: fn}
	c.lists[id] = lw
	c.mu.Unlock()

	handle := &ListSubscription{c: c, id: id}

	lectures, err := c.fetcher.List(ctx, 1, api.DefaultPageSize)
	if err != nil {
		handle.Unsubscribe()
		return nil, err
	}
	fn(lectures)
	c.scheduleList(handle.id, lectures)
	return handle, nil
}

// scheduleList arms the next list refresh when any lecture is still
// active.
func (c *Controller) scheduleList(id int, lectures []api.Lecture) {
	if !anyActive(lectures) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	lw := c.lists[id]
	if lw == nil || lw.timer != nil || c.closed {
		return
	}
	lw.timer = c.newListTimer(id)
}

func (c *Controller) newListTimer(id int) *time.Timer {
	return time.AfterFunc(c.listInterval, func() {
		c.listTick(id)
	})
}

func (c *Controller) listTick(id int) {
	c.mu.Lock()
	lw := c.lists[id]
	if lw == nil || c.closed {
		c.mu.Unlock()
		return
	}
	lw.timer = nil
	fn := lw.fn
	c.mu.Unlock()

	lectures, err := c.fetcher.List(c.ctx, 1, api.DefaultPageSize)
	if err != nil {
		c.logger.Debug("background list refresh failed", logging.Error(err))
		c.rearmList(id)
		return
	}

	c.mu.Lock()
	stillSubscribed := c.lists[id] != nil
	c.mu.Unlock()
	if !stillSubscribed {
		// Result resolved after unsubscribe; discard it.
		return
	}

	fn(lectures)
	c.scheduleList(id, lectures)
}

// rearmList retries after a failed refresh at the same fixed interval.
func (c *Controller) rearmList(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lw := c.lists[id]
	if lw == nil || lw.timer != nil || c.closed {
		return
	}
	lw.timer = c.newListTimer(id)
}

func anyActive(lectures []api.Lecture) bool {
	for _, lecture := range lectures {
		if lecture.Status.Active() {
			return true
		}
	}
	return false
}
