// Package tasklock serializes work on a single task across goroutines and processes.
package tasklock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/runoshun/crewboard/internal/domain"
)

// pollInterval is the delay between non-blocking flock attempts.
const pollInterval = 20 * time.Millisecond

// Ensure Locker implements domain.TaskLocker.
var _ domain.TaskLocker = (*Locker)(nil)

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// Locker hands out per-task locks. The zero value is not usable; use New.
type Locker struct {
	entries map[string]*entry
	dir     string // Lock file directory (empty = in-process only)
	mu      sync.Mutex
}

// New creates a Locker. When dir is non-empty, locks are also held
// as advisory file locks under dir so other processes are excluded.
func New(dir string) *Locker {
	return &Locker{
		entries: make(map[string]*entry),
		dir:     dir,
	}
}

// Lock blocks until the task lock is held or ctx is done.
func (l *Locker) Lock(ctx context.Context, taskID string) (func(), error) {
	e := l.acquireEntry(taskID)
	if err := e.sem.Acquire(ctx, 1); err != nil {
		l.releaseEntry(taskID)
		return nil, fmt.Errorf("lock task %s: %w", taskID, err)
	}

	file, err := l.lockFile(ctx, taskID)
	if err != nil {
		e.sem.Release(1)
		l.releaseEntry(taskID)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if file != nil {
				_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
				_ = file.Close()
			}
			e.sem.Release(1)
			l.releaseEntry(taskID)
		})
	}, nil
}

// acquireEntry returns the semaphore for taskID, creating it on first use.
func (l *Locker) acquireEntry(taskID string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[taskID]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		l.entries[taskID] = e
	}
	e.refs++
	return e
}

// releaseEntry drops a reference and frees idle semaphores.
func (l *Locker) releaseEntry(taskID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[taskID]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(l.entries, taskID)
	}
}

// lockFile takes the cross-process lock, polling until ctx is done.
func (l *Locker) lockFile(ctx context.Context, taskID string) (*os.File, error) {
	if l.dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(l.dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	path := filepath.Join(l.dir, taskID+".lock")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, syscall.EWOULDBLOCK) {
			_ = file.Close()
			return nil, fmt.Errorf("acquire lock file: %w", err)
		}
		select {
		case <-ctx.Done():
			_ = file.Close()
			return nil, fmt.Errorf("lock task %s: %w", taskID, ctx.Err())
		case <-ticker.C:
		}
	}
}

// held returns the number of task keys currently tracked. Used by tests.
func (l *Locker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
