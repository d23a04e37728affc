package service

import (
	"slices"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Priority is an optional task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities high to low; unset sorts last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Recurrence describes how a recurring task repeats.
type Recurrence struct {
	Type        string `json:"type"` // daily, weekly, monthly, yearly
	Interval    int    `json:"interval"`
	DaysOfWeek  []int  `json:"daysOfWeek,omitempty"` // 0 = Sunday
	EndDate     string `json:"endDate,omitempty"`
	Occurrences *int   `json:"occurrences,omitempty"`
}

// Task represents a single task item.
// CompletedAt is set if and only if Status is StatusCompleted.
type Task struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description,omitempty"`
	Status            Status      `json:"status"`
	Priority          Priority    `json:"priority,omitempty"`
	DueDate           string      `json:"dueDate,omitempty"` // YYYY-MM-DD or RFC 3339
	StartTime         string      `json:"startTime,omitempty"`
	EndTime           string      `json:"endTime,omitempty"` // HH:MM
	IsRecurring       bool        `json:"isRecurring"`
	Recurrence        *Recurrence `json:"recurrence,omitempty"`
	EstimatedDuration *int        `json:"estimatedDuration,omitempty"` // minutes
	Tags              []string    `json:"tags,omitempty"`
	AIAnalyzed        bool        `json:"aiAnalyzed"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
	CompletedAt       *time.Time  `json:"completedAt,omitempty"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	c.Tags = slices.Clone(t.Tags)
	if t.Recurrence != nil {
		r := *t.Recurrence
		r.DaysOfWeek = slices.Clone(t.Recurrence.DaysOfWeek)
		if t.Recurrence.Occurrences != nil {
			n := *t.Recurrence.Occurrences
			r.Occurrences = &n
		}
		c.Recurrence = &r
	}
	if t.EstimatedDuration != nil {
		d := *t.EstimatedDuration
		c.EstimatedDuration = &d
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	return c
}

// CloneTasks deep-copies a task collection.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// TaskPatch holds the fields of a partial task update. Nil fields are unchanged.
type TaskPatch struct {
	Title             *string   `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Description       *string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status            *Status   `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed"`
	Priority          *Priority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate           *string   `json:"dueDate,omitempty" validate:"omitempty,duedate"`
	EndTime           *string   `json:"endTime,omitempty" validate:"omitempty,clock"`
	EstimatedDuration *int      `json:"estimatedDuration,omitempty" validate:"omitempty,min=1,max=10080"`
	Tags              []string  `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
}

// IsZero reports whether the patch changes nothing.
func (p TaskPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		p.DueDate == nil && p.EndTime == nil && p.EstimatedDuration == nil && p.Tags == nil
}

// Apply returns a copy of t with the patch applied.
func (p TaskPatch) Apply(t Task) Task {
	c := t.Clone()
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.DueDate != nil {
		c.DueDate = *p.DueDate
	}
	if p.EndTime != nil {
		c.EndTime = *p.EndTime
	}
	if p.EstimatedDuration != nil {
		d := *p.EstimatedDuration
		c.EstimatedDuration = &d
	}
	if p.Tags != nil {
		c.Tags = slices.Clone(p.Tags)
	}
	return c
}

// CreateTaskInput is the body of a task creation request.
type CreateTaskInput struct {
	Title             string      `json:"title" validate:"required,min=1,max=500"`
	Description       string      `json:"description,omitempty" validate:"max=5000"`
	Priority          Priority    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate           string      `json:"dueDate,omitempty" validate:"omitempty,duedate"`
	EndTime           string      `json:"endTime,omitempty" validate:"omitempty,clock"`
	IsRecurring       bool        `json:"isRecurring"`
	Recurrence        *Recurrence `json:"recurrence,omitempty"`
	EstimatedDuration *int        `json:"estimatedDuration,omitempty" validate:"omitempty,min=1,max=10080"`
	Tags              []string    `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
}

// LogEntry is one journal entry.
type LogEntry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Mood      *int      `json:"mood,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateLogInput is the body of a log creation request.
type CreateLogInput struct {
	Content string   `json:"content" validate:"required,min=1,max=10000"`
	Type    string   `json:"type" validate:"required,max=40"`
	Mood    *int     `json:"mood,omitempty" validate:"omitempty,min=1,max=5"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
}

// LogType is a user-customizable journal log category.
type LogType struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

// DefaultLogTypes are the log types available before any customization.
var DefaultLogTypes = []LogType{
	{Key: "note", Label: "Note"},
	{Key: "mood", Label: "Mood"},
	{Key: "idea", Label: "Idea"},
	{Key: "reflection", Label: "Reflection"},
}

// User is the authenticated account.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	IsVerified bool   `json:"isVerified"`
}

// AuthResult is returned by login and register.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// LoginInput holds login credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterInput holds registration details.
type RegisterInput struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	Name             string `json:"name,omitempty" validate:"max=100"`
	VerificationCode string `json:"verificationCode" validate:"required,len=6,numeric"`
}

// TaskStats summarizes task counts for the dashboard.
type TaskStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

// Dashboard is the aggregated dashboard payload.
type Dashboard struct {
	Tasks          TaskStats  `json:"tasks"`
	CompletionRate float64    `json:"completionRate"`
	Streak         int        `json:"streak"`
	RecentLogs     []LogEntry `json:"recentLogs,omitempty"`
}

// Subtask is one step of an AI task breakdown.
// Dependencies reference earlier subtasks by position.
type Subtask struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	EstimatedTime int      `json:"estimatedTime"` // minutes
	Priority      Priority `json:"priority"`
	Dependencies  []int    `json:"dependencies,omitempty"`
}

// TaskBreakdown is the AI-produced decomposition of a task.
type TaskBreakdown struct {
	Analysis    string    `json:"analysis"`
	Subtasks    []Subtask `json:"subtasks"`
	Suggestions []string  `json:"suggestions"`
}

// ChatRequest is the body of a chat request.
type ChatRequest struct {
	Message   string `json:"message" validate:"required,max=8000"`
	ModelType string `json:"modelType"`
}

// BreakdownRequest is the body of a task breakdown request.
type BreakdownRequest struct {
	TaskDescription string `json:"taskDescription" validate:"required,max=8000"`
	ModelType       string `json:"modelType"`
}

// AnalyzeRequest is the body of an analysis request.
type AnalyzeRequest struct {
	Message   string `json:"message" validate:"required,max=8000"`
	ModelType string `json:"modelType"`
}
