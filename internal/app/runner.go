// Package app executes tasklist effects against a service.Service.
//
// Execute turns one remote effect into the message that reports its result.
// Runner drives a tasklist.Model synchronously for the CLI and MCP shells.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"mytodo/internal/praise"
	"mytodo/internal/service"
	"mytodo/internal/tasklist"
)

// Execute performs a remote effect and returns its result message.
// Effects that are not remote return nil.
func Execute(ctx context.Context, svc service.Service, eff tasklist.Effect) tasklist.Msg {
	switch e := eff.(type) {
	case tasklist.LoadTasks:
		tasks, err := svc.List(ctx)
		if err != nil {
			return tasklist.LoadFailed{Err: err}
		}
		return tasklist.Loaded{Tasks: tasks}

	case tasklist.InsertTask:
		t, err := svc.Insert(ctx, e.ID, e.Text)
		if err != nil {
			return tasklist.AddFailed{ID: e.ID, Err: err}
		}
		return tasklist.AddSucceeded{Task: t}

	case tasklist.DeleteTask:
		if err := svc.Delete(ctx, e.ID); err != nil {
			return tasklist.RemoveFailed{ID: e.ID, Err: err}
		}
		return tasklist.RemoveSucceeded{ID: e.ID}

	case tasklist.SetCompleted:
		t, err := svc.SetCompleted(ctx, e.ID, e.Completed)
		if err != nil {
			return tasklist.ToggleFailed{ID: e.ID, Err: err}
		}
		return tasklist.ToggleSucceeded{Task: t, WasCompleted: !e.Completed}

	case tasklist.SetText:
		t, err := svc.SetText(ctx, e.ID, e.Text)
		if err != nil {
			return tasklist.EditFailed{ID: e.ID, Err: err}
		}
		return tasklist.EditSucceeded{Task: t}

	case tasklist.RequestPraise:
		text, err := svc.Praise(ctx, e.TaskText, e.LevelTitle)
		if err != nil || text == "" {
			slog.Debug("praise failed, using fallback", "error", err)
			text = praise.Fallback
		}
		return tasklist.PraiseReceived{Text: text}
	}
	return nil
}

// failure returns the error carried by a *Failed message.
func failure(msg tasklist.Msg) error {
	switch m := msg.(type) {
	case tasklist.LoadFailed:
		return m.Err
	case tasklist.AddFailed:
		return m.Err
	case tasklist.RemoveFailed:
		return m.Err
	case tasklist.ToggleFailed:
		return m.Err
	case tasklist.EditFailed:
		return m.Err
	}
	return nil
}

// Report collects what a dispatch produced for the user.
type Report struct {
	Notices      []tasklist.Notify
	Celebrations []tasklist.Celebrate
	Praise       []string
}

// Runner owns a Model and runs every effect to completion before returning.
// It is safe for concurrent use.
type Runner struct {
	mu     sync.Mutex
	svc    service.Service
	model  tasklist.Model
	report Report

	// Follow makes WatchChanges subscribe to the change feed. Off for
	// one-shot commands.
	Follow bool

	base       context.Context
	stopWatch  context.CancelFunc
	watchGroup sync.WaitGroup
	logger     *slog.Logger
}

// NewRunner creates a signed-out Runner.
func NewRunner(svc service.Service, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{svc: svc, model: tasklist.New(), logger: logger}
}

// Start resolves the session and loads the collection.
func (r *Runner) Start(ctx context.Context) error {
	sess, err := r.svc.Whoami(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.base = ctx
	r.mu.Unlock()
	return r.Dispatch(ctx, tasklist.SessionChanged{Session: &sess})
}

// Dispatch feeds msg to the model and executes the resulting effects,
// including those produced by their results. It returns the first remote
// failure.
func (r *Runner) Dispatch(ctx context.Context, msg tasklist.Msg) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dispatch(ctx, msg)
}

func (r *Runner) dispatch(ctx context.Context, msg tasklist.Msg) error {
	var firstErr error
	queue := []tasklist.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if err := failure(next); err != nil && firstErr == nil {
			firstErr = err
		}

		var effects []tasklist.Effect
		r.model, effects = tasklist.Update(r.model, next)
		for _, eff := range effects {
			if res := r.run(ctx, eff); res != nil {
				queue = append(queue, res)
			}
		}
	}
	return firstErr
}

func (r *Runner) run(ctx context.Context, eff tasklist.Effect) tasklist.Msg {
	switch e := eff.(type) {
	case tasklist.Notify:
		r.report.Notices = append(r.report.Notices, e)
		return nil
	case tasklist.Celebrate:
		r.report.Celebrations = append(r.report.Celebrations, e)
		return nil
	case tasklist.WatchChanges:
		if r.Follow {
			r.watch()
		}
		return nil
	case tasklist.StopWatching:
		r.unwatch()
		return nil
	case tasklist.ClearInput:
		return nil
	}

	res := Execute(ctx, r.svc, eff)
	if p, ok := res.(tasklist.PraiseReceived); ok {
		r.report.Praise = append(r.report.Praise, p.Text)
	}
	return res
}

// watch subscribes to the feed and dispatches its events until the
// feed ends or Close is called. Caller holds mu.
func (r *Runner) watch() {
	if r.stopWatch != nil || r.base == nil {
		return
	}
	ctx, cancel := context.WithCancel(r.base)
	events, err := r.svc.Subscribe(ctx)
	if err != nil {
		cancel()
		if errors.Is(err, service.ErrNoFeed) {
			err = nil
		}
		_ = r.dispatch(r.base, tasklist.FeedLost{Err: err})
		return
	}
	r.stopWatch = cancel

	r.watchGroup.Add(1)
	go func() {
		defer r.watchGroup.Done()
	loop:
		for {
			select {
			case <-ctx.Done():
				break loop
			case ev, ok := <-events:
				if !ok {
					break loop
				}
				_ = r.Dispatch(ctx, tasklist.RemoteChange{Event: ev})
			}
		}
		var lost error
		if ctx.Err() == nil {
			lost = errors.New("connection closed")
		}
		r.logger.Debug("change feed ended", "error", lost)

		r.mu.Lock()
		defer r.mu.Unlock()
		if lost != nil {
			r.unwatch()
		}
		_ = r.dispatch(ctx, tasklist.FeedLost{Err: lost})
	}()
}

func (r *Runner) unwatch() {
	if r.stopWatch != nil {
		r.stopWatch()
		r.stopWatch = nil
	}
}

// Close stops the change feed and waits for its goroutine.
func (r *Runner) Close() {
	r.mu.Lock()
	r.unwatch()
	r.mu.Unlock()
	r.watchGroup.Wait()
}

// Model returns a snapshot of the current state.
func (r *Runner) Model() tasklist.Model {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.model
}

// Drain returns and clears everything reported since the last Drain.
func (r *Runner) Drain() Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep := r.report
	r.report = Report{}
	return rep
}
