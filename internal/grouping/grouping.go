// Package grouping partitions tasks into the display buckets of the task list.
package grouping

import (
	"cmp"
	"slices"
	"time"

	"daylog/internal/service"
)

// Bucket identifies one group of the task list.
type Bucket int

// Buckets in display order.
const (
	Recurring Bucket = iota
	Overdue
	DueToday
	Upcoming
	Unscheduled
	Completed
)

// All lists every bucket in display order.
var All = []Bucket{Recurring, Overdue, DueToday, Upcoming, Unscheduled, Completed}

func (b Bucket) String() string {
	switch b {
	case Recurring:
		return "Recurring"
	case Overdue:
		return "Overdue"
	case DueToday:
		return "Due today"
	case Upcoming:
		return "Upcoming"
	case Unscheduled:
		return "Unscheduled"
	case Completed:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Letter is the short prefix used to reference tasks within the bucket.
func (b Bucket) Letter() byte {
	return "rotunc"[b]
}

// BucketForLetter returns the bucket with the given reference letter.
func BucketForLetter(c byte) (Bucket, bool) {
	for _, b := range All {
		if b.Letter() == c {
			return b, true
		}
	}
	return 0, false
}

// Buckets is the result of Classify. Every input task appears in exactly one bucket.
type Buckets struct {
	Recurring   []service.Task
	Overdue     []service.Task
	DueToday    []service.Task
	Upcoming    []service.Task
	Unscheduled []service.Task
	Completed   []service.Task
}

// Get returns the tasks of bucket b.
func (bs *Buckets) Get(b Bucket) []service.Task {
	switch b {
	case Recurring:
		return bs.Recurring
	case Overdue:
		return bs.Overdue
	case DueToday:
		return bs.DueToday
	case Upcoming:
		return bs.Upcoming
	case Unscheduled:
		return bs.Unscheduled
	case Completed:
		return bs.Completed
	}
	return nil
}

func (bs *Buckets) ptr(b Bucket) *[]service.Task {
	switch b {
	case Recurring:
		return &bs.Recurring
	case Overdue:
		return &bs.Overdue
	case DueToday:
		return &bs.DueToday
	case Upcoming:
		return &bs.Upcoming
	case Unscheduled:
		return &bs.Unscheduled
	default:
		return &bs.Completed
	}
}

// Each calls fn for every bucket in display order, including empty ones.
func (bs *Buckets) Each(fn func(b Bucket, tasks []service.Task)) {
	for _, b := range All {
		fn(b, bs.Get(b))
	}
}

// Len returns the total number of tasks.
func (bs *Buckets) Len() int {
	n := 0
	for _, b := range All {
		n += len(bs.Get(b))
	}
	return n
}

// Counts returns the number of tasks per bucket.
func (bs *Buckets) Counts() map[Bucket]int {
	m := make(map[Bucket]int, len(All))
	for _, b := range All {
		m[b] = len(bs.Get(b))
	}
	return m
}

// Flatten returns all tasks in display order.
func (bs *Buckets) Flatten() []service.Task {
	out := make([]service.Task, 0, bs.Len())
	for _, b := range All {
		out = append(out, bs.Get(b)...)
	}
	return out
}

// SortByPriority orders every bucket high priority first. Ties keep the
// bucket's own order.
func (bs *Buckets) SortByPriority() {
	for _, b := range All {
		slices.SortStableFunc(*bs.ptr(b), func(x, y service.Task) int {
			return cmp.Compare(x.Priority.Rank(), y.Priority.Rank())
		})
	}
}

// entry pairs a task with its effective due instant.
type entry struct {
	task service.Task
	due  time.Time
}

// Classify partitions tasks relative to now. It is a pure function: the same
// inputs always give the same buckets, and the result must be recomputed as
// now advances. Calendar days are taken in now's location.
//
// Tasks whose due date cannot be parsed are unscheduled.
func Classify(tasks []service.Task, now time.Time) Buckets {
	var bs Buckets
	var overdue, today, upcoming []entry
	var completed []service.Task

	todayStart := startOfDay(now)
	tomorrowStart := todayStart.AddDate(0, 0, 1)

	for _, t := range tasks {
		switch {
		case t.Status == service.StatusCompleted:
			completed = append(completed, t)
			continue
		case t.IsRecurring:
			bs.Recurring = append(bs.Recurring, t)
			continue
		}

		day, ok := DueDay(t.DueDate, now.Location())
		if !ok {
			bs.Unscheduled = append(bs.Unscheduled, t)
			continue
		}
		due := EffectiveDue(day, t.EndTime)

		switch {
		case due.Before(now):
			overdue = append(overdue, entry{t, due})
		case day.Equal(todayStart):
			today = append(today, entry{t, due})
		case !day.Before(tomorrowStart):
			upcoming = append(upcoming, entry{t, due})
		default:
			// Only reachable for a past day whose end time lies after now,
			// which cannot happen. Keep the task visible.
			today = append(today, entry{t, due})
		}
	}

	slices.SortStableFunc(overdue, func(a, b entry) int { return b.due.Compare(a.due) })
	slices.SortStableFunc(today, func(a, b entry) int { return a.due.Compare(b.due) })
	slices.SortStableFunc(upcoming, func(a, b entry) int { return a.due.Compare(b.due) })
	slices.SortStableFunc(completed, compareCompletedDesc)

	bs.Overdue = tasksOf(overdue)
	bs.DueToday = tasksOf(today)
	bs.Upcoming = tasksOf(upcoming)
	bs.Completed = completed
	return bs
}

// DueDay parses a due date into midnight of its calendar day in loc.
// Date-only values are interpreted in loc; RFC 3339 values are converted
// to loc first.
func DueDay(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if d, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return d, true
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, s); err == nil {
			return startOfDay(ts.In(loc)), true
		}
	}
	return time.Time{}, false
}

// EffectiveDue is the instant a task falls due: day at endTime (HH:MM), or
// the last millisecond of day when endTime is empty or malformed.
func EffectiveDue(day time.Time, endTime string) time.Time {
	if endTime != "" {
		if clock, err := time.Parse("15:04", endTime); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location())
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, int(999*time.Millisecond), day.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func compareCompletedDesc(a, b service.Task) int {
	switch {
	case a.CompletedAt == nil && b.CompletedAt == nil:
		return 0
	case a.CompletedAt == nil:
		return 1
	case b.CompletedAt == nil:
		return -1
	}
	return b.CompletedAt.Compare(*a.CompletedAt)
}

func tasksOf(es []entry) []service.Task {
	if len(es) == 0 {
		return nil
	}
	out := make([]service.Task, len(es))
	for i, e := range es {
		out[i] = e.task
	}
	return out
}
