package db

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"
)

// ErrWorkerClosed is returned by Do after Close has been called.
var ErrWorkerClosed = errors.New("db worker closed")

type TxFn func(ctx context.Context, tx *sql.Tx) error

// TxObserver is told how long each transaction took and how it ended.
type TxObserver func(elapsed time.Duration, err error)

type job struct {
	ctx context.Context
	fn  TxFn
	ch  chan error
}

// Worker serializes every write transaction onto one goroutine. Record saves
// are whole-row upserts, so running them one at a time gives last-write-wins
// without row locks.
type Worker struct {
	db      *sql.DB
	jobs    chan job
	done    chan struct{}
	observe TxObserver

	closeOnce sync.Once
	closing   chan struct{}
}

func NewWorker(db *sql.DB) *Worker {
	return NewObservedWorker(db, nil)
}

func NewObservedWorker(db *sql.DB, observe TxObserver) *Worker {
	w := &Worker{
		db:      db,
		jobs:    make(chan job, 256),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
		observe: observe,
	}
	go w.loop()
	return w
}

// Close drains queued jobs and stops the loop. Safe to call more than once.
func (w *Worker) Close() {
	w.closeOnce.Do(func() {
		close(w.closing)
		close(w.jobs)
	})
	<-w.done
}

func (w *Worker) Do(ctx context.Context, fn TxFn) (err error) {
	defer func() {
		// Sending on the closed jobs channel panics; report it as closed instead.
		if r := recover(); r != nil {
			err = ErrWorkerClosed
		}
	}()

	select {
	case <-w.closing:
		return ErrWorkerClosed
	default:
	}

	ch := make(chan error, 1)
	j := job{ctx: ctx, fn: fn, ch: ch}

	select {
	case w.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once queued, the outcome is whatever the loop reports: a commit that
	// lands as ctx is cancelled is still a commit. A cancelled ctx aborts the
	// transaction itself, so the wait is bounded.
	return <-ch
}

func (w *Worker) loop() {
	defer close(w.done)

	for j := range w.jobs {
		start := time.Now()
		err := w.run(j)
		if w.observe != nil {
			w.observe(time.Since(start), err)
		}
		j.ch <- err
	}
}

func (w *Worker) run(j job) error {
	if err := j.ctx.Err(); err != nil {
		return err
	}
	tx, err := w.db.BeginTx(j.ctx, nil)
	if err != nil {
		return err
	}
	if err := j.fn(j.ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
