// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"daylog/internal/apierr"
	"daylog/internal/logger"
	"daylog/internal/service"
	"daylog/internal/stream"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = &apierr.Error{Kind: apierr.KindNotFound, Status: 404, Message: "not found"}

// ServerTime is the timestamp the fake stamps on server-computed fields.
var ServerTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	logs   []service.LogEntry
	nextID int

	// Canned AI results.
	AnalyzeReply string
	ChatReply    string
	Breakdown    service.TaskBreakdown
	// StreamBody, when set, is served verbatim by the Stream* methods.
	// Otherwise a body is synthesized from the canned replies.
	StreamBody string

	// Auth results.
	Auth service.AuthResult

	DashboardResult service.Dashboard

	// Gate, when non-nil, blocks every task mutation until it is closed
	// or receives a value.
	Gate chan struct{}

	// Recorded requests.
	LastChat      service.ChatRequest
	LastAnalyze   service.AnalyzeRequest
	LastBreakdown service.BreakdownRequest
	LastLogin     service.LoginInput
	LastRegister  service.RegisterInput
	LastCodeEmail string
	LastPatch     service.TaskPatch

	ListTasksCalls atomic.Int32

	// Error injection for testing
	ListTasksErr     error
	GetTaskErr       error
	CreateTaskErr    error
	UpdateTaskErr    error
	SetTaskStatusErr error
	DeleteTaskErr    error
	ListLogsErr      error
	CreateLogErr     error
	DeleteLogErr     error
	AIErr            error
	StreamErr        error
	LoginErr         error
	RegisterErr      error
	SendCodeErr      error
	DashboardErr     error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		AnalyzeReply: "Looks manageable.",
		ChatReply:    "Hello from the assistant.",
		Auth: service.AuthResult{
			Token: "test-token",
			User:  service.User{ID: "u1", Email: "ada@example.com", Name: "Ada"},
		},
	}
}

// AddTask seeds a task.
func (f *FakeService) AddTask(t service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.Status == "" {
		t.Status = service.StatusPending
	}
	f.tasks = append(f.tasks, t.Clone())
}

// AddLog seeds a log entry.
func (f *FakeService) AddLog(l service.LogEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, l)
}

// Tasks returns a copy of the server-side tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return service.CloneTasks(f.tasks)
}

// Logs returns a copy of the server-side log entries.
func (f *FakeService) Logs() []service.LogEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.logs)
}

func (f *FakeService) wait(ctx context.Context) error {
	if f.Gate == nil {
		return nil
	}
	select {
	case <-f.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeService) index(id string) int {
	return slices.IndexFunc(f.tasks, func(t service.Task) bool { return t.ID == id })
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.ListTasksCalls.Add(1)
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Tasks(), nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id string) (service.Task, error) {
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if i := f.index(id); i >= 0 {
		return f.tasks[i].Clone(), nil
	}
	return service.Task{}, ErrNotFound
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in service.CreateTaskInput) (service.Task, error) {
	if err := f.wait(ctx); err != nil {
		return service.Task{}, err
	}
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := service.Task{
		ID:                fmt.Sprintf("task-%d", f.nextID),
		Title:             in.Title,
		Description:       in.Description,
		Status:            service.StatusPending,
		Priority:          in.Priority,
		DueDate:           in.DueDate,
		EndTime:           in.EndTime,
		IsRecurring:       in.IsRecurring,
		Recurrence:        in.Recurrence,
		EstimatedDuration: in.EstimatedDuration,
		Tags:              in.Tags,
		CreatedAt:         ServerTime,
		UpdatedAt:         ServerTime,
	}
	t = t.Clone()
	f.tasks = append(f.tasks, t)
	return t.Clone(), nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	if err := f.wait(ctx); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastPatch = patch
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	i := f.index(id)
	if i < 0 {
		return service.Task{}, ErrNotFound
	}
	t := patch.Apply(f.tasks[i])
	t.UpdatedAt = ServerTime
	f.tasks[i] = t
	return t.Clone(), nil
}

// SetTaskStatus implements service.Service.
func (f *FakeService) SetTaskStatus(ctx context.Context, id string, status service.Status) (service.Task, error) {
	if err := f.wait(ctx); err != nil {
		return service.Task{}, err
	}
	if f.SetTaskStatusErr != nil {
		return service.Task{}, f.SetTaskStatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return service.Task{}, ErrNotFound
	}
	t := &f.tasks[i]
	t.Status = status
	t.UpdatedAt = ServerTime
	if status == service.StatusCompleted {
		ts := ServerTime
		t.CompletedAt = &ts
	} else {
		t.CompletedAt = nil
	}
	return t.Clone(), nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return ErrNotFound
	}
	f.tasks = slices.Delete(f.tasks, i, i+1)
	return nil
}

// ListLogs implements service.Service.
func (f *FakeService) ListLogs(ctx context.Context) ([]service.LogEntry, error) {
	if f.ListLogsErr != nil {
		return nil, f.ListLogsErr
	}
	return f.Logs(), nil
}

// CreateLog implements service.Service.
func (f *FakeService) CreateLog(ctx context.Context, in service.CreateLogInput) (service.LogEntry, error) {
	if f.CreateLogErr != nil {
		return service.LogEntry{}, f.CreateLogErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	l := service.LogEntry{
		ID:        fmt.Sprintf("log-%d", f.nextID),
		Content:   in.Content,
		Type:      in.Type,
		Mood:      in.Mood,
		Tags:      in.Tags,
		CreatedAt: ServerTime,
		UpdatedAt: ServerTime,
	}
	f.logs = append([]service.LogEntry{l}, f.logs...)
	return l, nil
}

// DeleteLog implements service.Service.
func (f *FakeService) DeleteLog(ctx context.Context, id string) error {
	if f.DeleteLogErr != nil {
		return f.DeleteLogErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.logs, func(l service.LogEntry) bool { return l.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	f.logs = slices.Delete(f.logs, i, i+1)
	return nil
}

// Analyze implements service.Service.
func (f *FakeService) Analyze(ctx context.Context, req service.AnalyzeRequest) (string, error) {
	f.LastAnalyze = req
	if f.AIErr != nil {
		return "", f.AIErr
	}
	return f.AnalyzeReply, nil
}

// BreakdownTask implements service.Service.
func (f *FakeService) BreakdownTask(ctx context.Context, req service.BreakdownRequest) (service.TaskBreakdown, error) {
	f.LastBreakdown = req
	if f.AIErr != nil {
		return service.TaskBreakdown{}, f.AIErr
	}
	return f.Breakdown, nil
}

// Chat implements service.Service.
func (f *FakeService) Chat(ctx context.Context, req service.ChatRequest) (string, error) {
	f.LastChat = req
	if f.AIErr != nil {
		return "", f.AIErr
	}
	return f.ChatReply, nil
}

// StreamAnalyze implements service.Service.
func (f *FakeService) StreamAnalyze(ctx context.Context, req service.AnalyzeRequest, cb service.StreamCallbacks) (service.Stream, error) {
	f.LastAnalyze = req
	return f.open(ctx, TextStream(f.AnalyzeReply), cb)
}

// StreamBreakdown implements service.Service.
func (f *FakeService) StreamBreakdown(ctx context.Context, req service.BreakdownRequest, cb service.StreamCallbacks) (service.Stream, error) {
	f.LastBreakdown = req
	b := f.Breakdown
	return f.open(ctx, StreamBody(
		service.Frame{Kind: service.FrameChunk, Content: b.Analysis},
		service.Frame{Kind: service.FrameComplete, Data: &b},
	), cb)
}

// StreamChat implements service.Service.
func (f *FakeService) StreamChat(ctx context.Context, req service.ChatRequest, cb service.StreamCallbacks) (service.Stream, error) {
	f.LastChat = req
	return f.open(ctx, TextStream(f.ChatReply), cb)
}

func (f *FakeService) open(ctx context.Context, body string, cb service.StreamCallbacks) (service.Stream, error) {
	if f.StreamErr != nil {
		return nil, f.StreamErr
	}
	if f.StreamBody != "" {
		body = f.StreamBody
	}
	opts := stream.Options{Logger: logger.Discard()}
	return stream.NewSession(ctx, strings.NewReader(body), stream.ModeIncremental, opts, cb), nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, in service.LoginInput) (service.AuthResult, error) {
	f.LastLogin = in
	if f.LoginErr != nil {
		return service.AuthResult{}, f.LoginErr
	}
	return f.Auth, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, in service.RegisterInput) (service.AuthResult, error) {
	f.LastRegister = in
	if f.RegisterErr != nil {
		return service.AuthResult{}, f.RegisterErr
	}
	return f.Auth, nil
}

// SendVerificationCode implements service.Service.
func (f *FakeService) SendVerificationCode(ctx context.Context, email string) error {
	f.LastCodeEmail = email
	return f.SendCodeErr
}

// Dashboard implements service.Service.
func (f *FakeService) Dashboard(ctx context.Context) (service.Dashboard, error) {
	if f.DashboardErr != nil {
		return service.Dashboard{}, f.DashboardErr
	}
	return f.DashboardResult, nil
}

// StreamBody renders frames as a stream response body terminated by [DONE].
func StreamBody(frames ...service.Frame) string {
	var b strings.Builder
	for _, fr := range frames {
		data, err := json.Marshal(fr)
		if err != nil {
			panic(err)
		}
		b.WriteString("data: ")
		b.Write(data)
		b.WriteString("\n\n")
	}
	b.WriteString("data: [DONE]\n\n")
	return b.String()
}

// TextStream renders text as word chunks followed by a complete frame.
func TextStream(text string) string {
	var frames []service.Frame
	for _, w := range strings.SplitAfter(text, " ") {
		if w != "" {
			frames = append(frames, service.Frame{Kind: service.FrameChunk, Content: w})
		}
	}
	frames = append(frames, service.Frame{Kind: service.FrameComplete, Content: text})
	return StreamBody(frames...)
}

// Ensure FakeService implements service.Service.
var _ service.Service = (*FakeService)(nil)
