// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"daylog/internal/grouping"
	"daylog/internal/service"
)

const (
	// SectionSeparator is the separator line for bucket sections.
	SectionSeparator = "------------"
)

// FormatTask formats a task line within a bucket section.
// Format: "{REF:>4}  {TITLE}{DETAILS}\n"
func FormatTask(w io.Writer, ref string, task service.Task) {
	fmt.Fprintf(w, "%4s  %s%s\n", ref, normalizeTitle(task.Title), details(task))
}

// FormatBucketHeader formats a bucket section header.
func FormatBucketHeader(w io.Writer, b grouping.Bucket) {
	fmt.Fprintln(w, SectionSeparator)
	fmt.Fprintf(w, "%s (%c)\n", b, b.Letter())
	fmt.Fprintln(w, SectionSeparator)
}

// FormatBuckets prints every non-empty bucket with its task references.
// It reports whether anything was printed.
func FormatBuckets(w io.Writer, bs grouping.Buckets) bool {
	printed := false
	bs.Each(func(b grouping.Bucket, tasks []service.Task) {
		if len(tasks) == 0 {
			return
		}
		FormatBucketHeader(w, b)
		for i, t := range tasks {
			FormatTask(w, TaskRef(b, i+1), t)
		}
		printed = true
	})
	return printed
}

// TaskRef renders the reference of the n-th task of bucket b, e.g. "o2".
func TaskRef(b grouping.Bucket, n int) string {
	return fmt.Sprintf("%c%d", b.Letter(), n)
}

// FormatTaskDetail prints every field of a task. Timestamps are shown in loc.
func FormatTaskDetail(w io.Writer, t service.Task, loc *time.Location) {
	fmt.Fprintf(w, "Title:     %s\n", normalizeTitle(t.Title))
	fmt.Fprintf(w, "Status:    %s\n", t.Status)
	if t.Priority != "" {
		fmt.Fprintf(w, "Priority:  %s\n", t.Priority)
	}
	if t.DueDate != "" {
		due := t.DueDate
		if t.EndTime != "" {
			due += " " + t.EndTime
		}
		fmt.Fprintf(w, "Due:       %s\n", due)
	}
	if t.IsRecurring && t.Recurrence != nil {
		fmt.Fprintf(w, "Repeats:   %s (interval %d)\n", t.Recurrence.Type, max(t.Recurrence.Interval, 1))
	}
	if t.EstimatedDuration != nil {
		fmt.Fprintf(w, "Estimate:  %s\n", minutes(*t.EstimatedDuration))
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(w, "Tags:      %s\n", strings.Join(t.Tags, ", "))
	}
	if t.CompletedAt != nil {
		fmt.Fprintf(w, "Completed: %s\n", t.CompletedAt.In(loc).Format("2006-01-02 15:04"))
	}
	if d := strings.TrimSpace(t.Description); d != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, d)
	}
}

// FormatLog formats a journal entry line with its timestamp in loc.
// Format: "{N:>4}  {DATE}  [{TYPE}] {CONTENT}\n"
func FormatLog(w io.Writer, num int, l service.LogEntry, loc *time.Location) {
	line := normalizeTitle(l.Content)
	if l.Mood != nil {
		line += fmt.Sprintf("  mood %d/5", *l.Mood)
	}
	for _, tag := range l.Tags {
		line += " #" + tag
	}
	fmt.Fprintf(w, "%4d  %s  [%s] %s\n", num, l.CreatedAt.In(loc).Format("2006-01-02 15:04"), l.Type, line)
}

// FormatLogType formats a log type for the logtypes command.
func FormatLogType(w io.Writer, lt service.LogType) {
	if lt.Label == "" || strings.EqualFold(lt.Label, lt.Key) {
		fmt.Fprintln(w, lt.Key)
		return
	}
	fmt.Fprintf(w, "%s (%s)\n", lt.Key, lt.Label)
}

// FormatDashboard prints the dashboard summary followed by the local
// bucket counts.
func FormatDashboard(w io.Writer, d service.Dashboard, counts map[grouping.Bucket]int, loc *time.Location) {
	fmt.Fprintf(w, "Tasks:       %d total, %d pending, %d in progress, %d completed\n",
		d.Tasks.Total, d.Tasks.Pending, d.Tasks.InProgress, d.Tasks.Completed)
	fmt.Fprintf(w, "Overdue:     %d\n", d.Tasks.Overdue)
	fmt.Fprintf(w, "Completion:  %.0f%%\n", d.CompletionRate)
	fmt.Fprintf(w, "Streak:      %d days\n", d.Streak)

	if counts != nil {
		fmt.Fprintln(w, SectionSeparator)
		for _, b := range grouping.All {
			fmt.Fprintf(w, "%-12s %d\n", b.String()+":", counts[b])
		}
	}

	if len(d.RecentLogs) > 0 {
		fmt.Fprintln(w, SectionSeparator)
		for i, l := range d.RecentLogs {
			FormatLog(w, i+1, l, loc)
		}
	}
}

// FormatBreakdown prints the subtasks and suggestions of a breakdown.
func FormatBreakdown(w io.Writer, b service.TaskBreakdown) {
	if len(b.Subtasks) > 0 {
		fmt.Fprintln(w, SectionSeparator)
		fmt.Fprintln(w, "Subtasks")
		fmt.Fprintln(w, SectionSeparator)
	}
	for i, st := range b.Subtasks {
		line := normalizeTitle(st.Title)
		if st.Priority != "" {
			line += " [" + string(st.Priority) + "]"
		}
		if st.EstimatedTime > 0 {
			line += " ~" + minutes(st.EstimatedTime)
		}
		if len(st.Dependencies) > 0 {
			deps := make([]string, len(st.Dependencies))
			for j, d := range st.Dependencies {
				deps[j] = fmt.Sprint(d + 1)
			}
			line += " (after " + strings.Join(deps, ", ") + ")"
		}
		fmt.Fprintf(w, "%4d  %s\n", i+1, line)
	}
	if total := b.TotalEstimate(); total > 0 {
		fmt.Fprintf(w, "Total estimate: %s\n", minutes(total))
	}
	if len(b.Suggestions) > 0 {
		fmt.Fprintln(w, SectionSeparator)
		fmt.Fprintln(w, "Suggestions")
		fmt.Fprintln(w, SectionSeparator)
		for _, s := range b.Suggestions {
			fmt.Fprintf(w, "   -  %s\n", s)
		}
	}
}

// FormatUser formats the signed-in user.
func FormatUser(w io.Writer, u service.User) {
	if u.Name != "" {
		fmt.Fprintf(w, "%s <%s>\n", u.Name, u.Email)
		return
	}
	fmt.Fprintln(w, u.Email)
}

// details renders the trailing priority, due and tag annotations of a task line.
func details(t service.Task) string {
	var b strings.Builder
	if t.Priority != "" {
		b.WriteString("  [" + string(t.Priority) + "]")
	}
	if t.DueDate != "" && t.Status != service.StatusCompleted {
		due := t.DueDate
		if len(due) > len(time.DateOnly) {
			due = due[:len(time.DateOnly)]
		}
		b.WriteString("  due " + due)
		if t.EndTime != "" {
			b.WriteString(" " + t.EndTime)
		}
	}
	if t.IsRecurring && t.Recurrence != nil {
		b.WriteString("  repeats " + t.Recurrence.Type)
	}
	for _, tag := range t.Tags {
		b.WriteString(" #" + tag)
	}
	return b.String()
}

func minutes(n int) string {
	if n < 60 {
		return fmt.Sprintf("%dm", n)
	}
	if n%60 == 0 {
		return fmt.Sprintf("%dh", n/60)
	}
	return fmt.Sprintf("%dh%02dm", n/60, n%60)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	// Replace newlines with spaces
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	// Trim and check for empty
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
