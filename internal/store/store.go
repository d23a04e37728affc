// Package store holds the client-side task collection and applies
// optimistic mutations to it, rolling back when the server rejects them.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"daylog/internal/service"
)

// TempIDPrefix marks tasks created locally and not yet confirmed by the server.
const TempIDPrefix = "tmp-"

// ErrTaskNotFound is returned when a mutation targets an unknown task.
var ErrTaskNotFound = errors.New("task not found")

// TaskService is the subset of service.Service the store persists through.
type TaskService interface {
	ListTasks(ctx context.Context) ([]service.Task, error)
	CreateTask(ctx context.Context, in service.CreateTaskInput) (service.Task, error)
	UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error)
	SetTaskStatus(ctx context.Context, id string, status service.Status) (service.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Updater derives the optimistic collection from the current one.
// It receives a private copy and may modify it in place.
type Updater func(tasks []service.Task) []service.Task

// PersistFunc performs the network call backing a mutation. It returns the
// server copy of the mutated task, or nil when there is none (deletes).
type PersistFunc func(ctx context.Context) (*service.Task, error)

// Listener is called with a copy of the collection after every change.
type Listener func(tasks []service.Task)

// Store is the shared task collection.
//
// Mutations are serialized: each snapshot, optimistic update, network call
// and resolution runs under a single writer lock, so a rollback restores
// exactly the state its own mutation started from. Readers never wait on
// the network and observe the optimistic state while a call is in flight.
type Store struct {
	svc     TaskService
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time // for testing

	writer sync.Mutex // held for a whole mutation

	mu     sync.RWMutex
	tasks  []service.Task
	loaded bool

	subsMu    sync.Mutex
	listeners map[int]Listener
	nextSub   int

	loads singleflight.Group
}

// New creates an empty store. timeout bounds each persist call; zero means
// the caller's deadline only.
func New(svc TaskService, timeout time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		svc:       svc,
		logger:    logger,
		timeout:   timeout,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
}

// Tasks returns a copy of the current collection.
func (s *Store) Tasks() []service.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return service.CloneTasks(s.tasks)
}

// Task returns a copy of the task with id.
func (s *Store) Task(id string) (service.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.tasks, id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return service.Task{}, false
}

// Loaded reports whether the collection has been fetched at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.listeners, id)
		s.subsMu.Unlock()
	}
}

// Load replaces the collection with the server list. Concurrent calls share
// one request. The fetch runs under the writer lock, so a list can never be
// installed over a mutation that committed while it was in flight.
func (s *Store) Load(ctx context.Context) error {
	_, err, shared := s.loads.Do("tasks", func() (any, error) {
		s.writer.Lock()
		defer s.writer.Unlock()

		tasks, err := s.svc.ListTasks(ctx)
		if err != nil {
			return nil, err
		}
		s.set(tasks)
		s.mu.Lock()
		s.loaded = true
		s.mu.Unlock()
		return nil, nil
	})
	if shared {
		s.logger.Debug("task load shared with concurrent caller")
	}
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	return nil
}

// Mutate applies updater optimistically, then runs persist. On success the
// task with taskID is replaced by the server copy persist returned. On
// failure the whole collection is restored to its state before updater ran
// and persist's error is returned.
//
// persist is not cancelled when ctx is; it always runs to resolution.
func (s *Store) Mutate(ctx context.Context, taskID string, updater Updater, persist PersistFunc) error {
	s.writer.Lock()
	defer s.writer.Unlock()

	snapshot := s.Tasks()
	s.set(updater(service.CloneTasks(snapshot)))

	pctx := context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(pctx, s.timeout)
		defer cancel()
	}

	server, err := persist(pctx)
	if err != nil {
		s.logger.Info("rolling back optimistic change", "task_id", taskID, "error", err)
		s.set(snapshot)
		return err
	}

	if server != nil {
		s.replace(taskID, *server)
	}
	return nil
}

// ToggleStatus flips a task between completed and pending.
func (s *Store) ToggleStatus(ctx context.Context, id string) (service.Task, error) {
	current, ok := s.Task(id)
	if !ok {
		return service.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	next := service.StatusCompleted
	if current.Status == service.StatusCompleted {
		next = service.StatusPending
	}
	return s.SetStatus(ctx, id, next)
}

// SetStatus changes a task's status. CompletedAt is guessed locally and
// replaced by the server's value.
func (s *Store) SetStatus(ctx context.Context, id string, status service.Status) (service.Task, error) {
	now := s.now()
	err := s.Mutate(ctx, id,
		func(tasks []service.Task) []service.Task {
			if i := indexOf(tasks, id); i >= 0 {
				t := &tasks[i]
				t.Status = status
				t.UpdatedAt = now
				if status == service.StatusCompleted {
					t.CompletedAt = &now
				} else {
					t.CompletedAt = nil
				}
			}
			return tasks
		},
		func(ctx context.Context) (*service.Task, error) {
			t, err := s.svc.SetTaskStatus(ctx, id, status)
			if err != nil {
				return nil, err
			}
			return &t, nil
		},
	)
	return s.result(id, err)
}

// Update applies a partial edit.
func (s *Store) Update(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	if _, ok := s.Task(id); !ok {
		return service.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	now := s.now()
	err := s.Mutate(ctx, id,
		func(tasks []service.Task) []service.Task {
			if i := indexOf(tasks, id); i >= 0 {
				tasks[i] = patch.Apply(tasks[i])
				tasks[i].UpdatedAt = now
			}
			return tasks
		},
		func(ctx context.Context) (*service.Task, error) {
			t, err := s.svc.UpdateTask(ctx, id, patch)
			if err != nil {
				return nil, err
			}
			return &t, nil
		},
	)
	return s.result(id, err)
}

// Delete removes a task. A failed delete re-inserts it at its original position.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, ok := s.Task(id); !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return s.Mutate(ctx, id,
		func(tasks []service.Task) []service.Task {
			if i := indexOf(tasks, id); i >= 0 {
				tasks = slices.Delete(tasks, i, i+1)
			}
			return tasks
		},
		func(ctx context.Context) (*service.Task, error) {
			return nil, s.svc.DeleteTask(ctx, id)
		},
	)
}

// Create inserts a placeholder task under a temporary id and swaps in the
// server copy once the create succeeds.
func (s *Store) Create(ctx context.Context, in service.CreateTaskInput) (service.Task, error) {
	tempID := TempIDPrefix + uuid.NewString()
	now := s.now()
	placeholder := service.Task{
		ID:                tempID,
		Title:             in.Title,
		Description:       in.Description,
		Status:            service.StatusPending,
		Priority:          in.Priority,
		DueDate:           in.DueDate,
		EndTime:           in.EndTime,
		IsRecurring:       in.IsRecurring,
		Recurrence:        in.Recurrence,
		EstimatedDuration: in.EstimatedDuration,
		Tags:              slices.Clone(in.Tags),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	placeholder = placeholder.Clone()

	var created service.Task
	err := s.Mutate(ctx, tempID,
		func(tasks []service.Task) []service.Task {
			return append(tasks, placeholder)
		},
		func(ctx context.Context) (*service.Task, error) {
			t, err := s.svc.CreateTask(ctx, in)
			if err != nil {
				return nil, err
			}
			created = t
			return &t, nil
		},
	)
	if err != nil {
		return service.Task{}, err
	}
	return created.Clone(), nil
}

// ApplyRemote merges a task pushed by the server: an existing task is
// replaced and an unknown one appended. It waits for an in-flight mutation
// to resolve first.
func (s *Store) ApplyRemote(t service.Task) {
	s.writer.Lock()
	defer s.writer.Unlock()

	s.mu.Lock()
	if i := indexOf(s.tasks, t.ID); i >= 0 {
		s.tasks[i] = t.Clone()
	} else {
		s.tasks = append(s.tasks, t.Clone())
	}
	s.mu.Unlock()
	s.notify()
}

// RemoveRemote drops a task deleted on the server.
func (s *Store) RemoveRemote(id string) {
	s.writer.Lock()
	defer s.writer.Unlock()

	s.mu.Lock()
	i := indexOf(s.tasks, id)
	if i >= 0 {
		s.tasks = slices.Delete(s.tasks, i, i+1)
	}
	s.mu.Unlock()
	if i >= 0 {
		s.notify()
	}
}

func (s *Store) result(id string, err error) (service.Task, error) {
	if err != nil {
		return service.Task{}, err
	}
	t, _ := s.Task(id)
	return t, nil
}

// set publishes tasks as the current collection. Callers hold s.writer.
func (s *Store) set(tasks []service.Task) {
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	s.notify()
}

// replace swaps the task at id's position for server. Callers hold s.writer.
func (s *Store) replace(id string, server service.Task) {
	s.mu.Lock()
	i := indexOf(s.tasks, id)
	if i >= 0 {
		s.tasks[i] = server.Clone()
	}
	s.mu.Unlock()

	if i < 0 {
		s.logger.Warn("mutated task vanished before server copy arrived", "task_id", id)
		return
	}
	s.notify()
}

func (s *Store) notify() {
	s.subsMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.subsMu.Unlock()

	if len(listeners) == 0 {
		return
	}
	for _, fn := range listeners {
		fn(s.Tasks())
	}
}

func indexOf(tasks []service.Task, id string) int {
	return slices.IndexFunc(tasks, func(t service.Task) bool { return t.ID == id })
}
