// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for backend operations.
// All REST and streaming calls go through this interface.
// Commands never build HTTP requests directly.
type Service interface {
	// ListTasks returns all tasks of the authenticated user in server order.
	ListTasks(ctx context.Context) ([]Task, error)

	// GetTask returns a single task.
	GetTask(ctx context.Context, id string) (Task, error)

	// CreateTask creates a task and returns the server copy.
	CreateTask(ctx context.Context, in CreateTaskInput) (Task, error)

	// UpdateTask applies a partial update and returns the server copy.
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error)

	// SetTaskStatus changes the status and returns the server copy,
	// including the server-computed CompletedAt.
	SetTaskStatus(ctx context.Context, id string, status Status) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error

	// ListLogs returns journal entries, newest first.
	ListLogs(ctx context.Context) ([]LogEntry, error)

	// CreateLog creates a journal entry.
	CreateLog(ctx context.Context, in CreateLogInput) (LogEntry, error)

	// DeleteLog deletes a journal entry.
	DeleteLog(ctx context.Context, id string) error

	// Analyze runs a non-streaming AI analysis and returns the text.
	Analyze(ctx context.Context, req AnalyzeRequest) (string, error)

	// BreakdownTask runs a non-streaming AI task breakdown.
	BreakdownTask(ctx context.Context, req BreakdownRequest) (TaskBreakdown, error)

	// Chat runs a non-streaming AI chat turn and returns the reply.
	Chat(ctx context.Context, req ChatRequest) (string, error)

	// StreamAnalyze opens a streaming analysis session.
	StreamAnalyze(ctx context.Context, req AnalyzeRequest, cb StreamCallbacks) (Stream, error)

	// StreamBreakdown opens a streaming task breakdown session.
	StreamBreakdown(ctx context.Context, req BreakdownRequest, cb StreamCallbacks) (Stream, error)

	// StreamChat opens a streaming chat session.
	StreamChat(ctx context.Context, req ChatRequest, cb StreamCallbacks) (Stream, error)

	// Login authenticates with email and password.
	Login(ctx context.Context, in LoginInput) (AuthResult, error)

	// Register creates an account using a verification code.
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)

	// SendVerificationCode emails a registration code.
	SendVerificationCode(ctx context.Context, email string) error

	// Dashboard returns the aggregated dashboard.
	Dashboard(ctx context.Context) (Dashboard, error)
}
