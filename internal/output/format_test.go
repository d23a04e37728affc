package output_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"daylog/internal/apierr"
	"daylog/internal/grouping"
	"daylog/internal/output"
	"daylog/internal/service"
	"daylog/internal/testutil"
)

func TestFormatBuckets(t *testing.T) {
	bs := grouping.Buckets{
		Recurring: []service.Task{
			{Title: "Water plants", IsRecurring: true, Recurrence: &service.Recurrence{Type: "daily", Interval: 1}},
		},
		Overdue: []service.Task{
			{Title: "Pay rent", Priority: service.PriorityHigh, DueDate: "2026-03-13T00:00:00Z"},
		},
		DueToday: []service.Task{
			{Title: "Standup notes", DueDate: "2026-03-14", EndTime: "17:00", Tags: []string{"work"}},
		},
		Unscheduled: []service.Task{
			{Title: "Read\nbook"},
		},
		Completed: []service.Task{
			{Title: "  ", Status: service.StatusCompleted, DueDate: "2026-03-10"},
		},
	}

	var buf bytes.Buffer
	printed := output.FormatBuckets(&buf, bs)

	assert.True(t, printed)
	testutil.GoldenString(t, "buckets", buf.String())
}

func TestFormatBuckets_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, output.FormatBuckets(&buf, grouping.Buckets{}))
	assert.Empty(t, buf.String())
}

func TestTaskRef(t *testing.T) {
	assert.Equal(t, "o2", output.TaskRef(grouping.Overdue, 2))
	assert.Equal(t, "c10", output.TaskRef(grouping.Completed, 10))
}

func TestFormatLog(t *testing.T) {
	mood := 4
	l := service.LogEntry{
		Content:   "Shipped the release",
		Type:      "mood",
		Mood:      &mood,
		Tags:      []string{"work"},
		CreatedAt: time.Date(2026, 3, 14, 8, 5, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	output.FormatLog(&buf, 3, l, time.UTC)

	assert.Equal(t, "   3  2026-03-14 08:05  [mood] Shipped the release  mood 4/5 #work\n", buf.String())
}

func TestFormatLogType(t *testing.T) {
	var buf bytes.Buffer
	output.FormatLogType(&buf, service.LogType{Key: "note", Label: "Note"})
	output.FormatLogType(&buf, service.LogType{Key: "gym", Label: "Workout"})

	assert.Equal(t, "note\ngym (Workout)\n", buf.String())
}

func TestFormatBreakdown(t *testing.T) {
	b := service.TaskBreakdown{
		Analysis: "Two steps.",
		Subtasks: []service.Subtask{
			{Title: "Outline", EstimatedTime: 30, Priority: service.PriorityHigh},
			{Title: "Draft", EstimatedTime: 90, Priority: service.PriorityMedium, Dependencies: []int{0}},
		},
		Suggestions: []string{"Start early"},
	}

	var buf bytes.Buffer
	output.FormatBreakdown(&buf, b)

	want := "------------\n" +
		"Subtasks\n" +
		"------------\n" +
		"   1  Outline [high] ~30m\n" +
		"   2  Draft [medium] ~1h30m (after 1)\n" +
		"Total estimate: 2h\n" +
		"------------\n" +
		"Suggestions\n" +
		"------------\n" +
		"   -  Start early\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatDashboard(t *testing.T) {
	d := service.Dashboard{
		Tasks:          service.TaskStats{Total: 5, Pending: 2, InProgress: 1, Completed: 2, Overdue: 1},
		CompletionRate: 40,
		Streak:         3,
	}
	counts := map[grouping.Bucket]int{grouping.Overdue: 1, grouping.Completed: 2, grouping.Unscheduled: 2}

	var buf bytes.Buffer
	output.FormatDashboard(&buf, d, counts, time.UTC)

	want := "Tasks:       5 total, 2 pending, 1 in progress, 2 completed\n" +
		"Overdue:     1\n" +
		"Completion:  40%\n" +
		"Streak:      3 days\n" +
		"------------\n" +
		"Recurring:   0\n" +
		"Overdue:     1\n" +
		"Due today:   0\n" +
		"Upcoming:    0\n" +
		"Unscheduled: 2\n" +
		"Completed:   2\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatTaskDetail(t *testing.T) {
	est := 45
	done := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	task := service.Task{
		Title:             "Write report",
		Description:       "Quarterly numbers.",
		Status:            service.StatusCompleted,
		Priority:          service.PriorityLow,
		DueDate:           "2026-03-14",
		EndTime:           "18:00",
		EstimatedDuration: &est,
		Tags:              []string{"work", "q1"},
		CompletedAt:       &done,
	}

	var buf bytes.Buffer
	output.FormatTaskDetail(&buf, task, time.UTC)

	want := "Title:     Write report\n" +
		"Status:    completed\n" +
		"Priority:  low\n" +
		"Due:       2026-03-14 18:00\n" +
		"Estimate:  45m\n" +
		"Tags:      work, q1\n" +
		"Completed: 2026-03-14 09:30\n" +
		"\n" +
		"Quarterly numbers.\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatUser(t *testing.T) {
	var buf bytes.Buffer
	output.FormatUser(&buf, service.User{Email: "ada@example.com", Name: "Ada"})
	output.FormatUser(&buf, service.User{Email: "bob@example.com"})

	assert.Equal(t, "Ada <ada@example.com>\nbob@example.com\n", buf.String())
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := output.NewNotifier(&buf, false)

	n.Notify(context.Background(), apierr.Notification{Title: "Network error", Message: "Could not reach the server.", Level: apierr.LevelError})
	n.Notify(context.Background(), apierr.Notification{Title: "Task updated"})

	assert.Equal(t, "error: Network error: Could not reach the server.\ninfo: Task updated\n", buf.String())
}

func TestNotifier_QuietDropsInfo(t *testing.T) {
	var buf bytes.Buffer
	n := output.NewNotifier(&buf, true)

	n.Notify(context.Background(), apierr.Notification{Title: "Task updated", Level: apierr.LevelInfo})
	n.Notify(context.Background(), apierr.Notification{Title: "Session expired", Message: "Please log in again.", Level: apierr.LevelWarning})

	assert.Equal(t, "warning: Session expired: Please log in again.\n", buf.String())
}

func TestStreamPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewStreamPrinter(&buf)
	cb := p.Callbacks()

	assert.False(t, p.Wrote())
	cb.OnChunk("Hello ")
	cb.OnChunk("")
	cb.OnChunk("world")
	p.End()
	p.End()

	assert.True(t, p.Wrote())
	assert.Equal(t, "Hello world\n", buf.String())
}

func TestStreamPrinter_NoOutputNoNewline(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewStreamPrinter(&buf)
	p.End()
	assert.Empty(t, buf.String())
}

func TestIsTerminal_Buffer(t *testing.T) {
	assert.False(t, output.IsTerminal(&bytes.Buffer{}))
}
