package commands

import (
	"flag"
	"strconv"
	"strings"
	"time"

	"daylog/internal/service"
)

// taskFlags holds the task field flags shared by add and edit.
// Nil fields were not given on the command line.
type taskFlags struct {
	desc     *string
	priority *service.Priority
	due      *string
	endTime  *string
	estimate *int
	repeat   *string
	tags     []string
	tagsSet  bool
}

func (f *taskFlags) register(fs *flag.FlagSet) {
	*f = taskFlags{}
	fs.Func("desc", "", func(s string) error {
		f.desc = &s
		return nil
	})
	fs.Func("priority", "", func(s string) error {
		p := service.Priority(strings.ToLower(s))
		f.priority = &p
		return nil
	})
	fs.Func("due", "", func(s string) error {
		f.due = &s
		return nil
	})
	fs.Func("end-time", "", func(s string) error {
		f.endTime = &s
		return nil
	})
	fs.Func("estimate", "", func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		f.estimate = &n
		return nil
	})
	fs.Func("repeat", "", func(s string) error {
		f.repeat = &s
		return nil
	})
	fs.Func("tag", "", func(s string) error {
		f.tagsSet = true
		for _, t := range strings.Split(s, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.tags = append(f.tags, t)
			}
		}
		return nil
	})
}

// empty reports whether no field flag was given.
func (f *taskFlags) empty() bool {
	return f.desc == nil && f.priority == nil && f.due == nil && f.endTime == nil &&
		f.estimate == nil && f.repeat == nil && !f.tagsSet
}

// input builds a create request for title.
func (f *taskFlags) input(title string, now time.Time) service.CreateTaskInput {
	in := service.CreateTaskInput{Title: title, Tags: f.tags, EstimatedDuration: f.estimate}
	if f.desc != nil {
		in.Description = *f.desc
	}
	if f.priority != nil {
		in.Priority = *f.priority
	}
	if f.due != nil {
		in.DueDate = resolveDay(*f.due, now)
	}
	if f.endTime != nil {
		in.EndTime = *f.endTime
	}
	if f.repeat != nil {
		in.IsRecurring = true
		in.Recurrence = &service.Recurrence{Type: strings.ToLower(*f.repeat), Interval: 1}
	}
	return in
}

// patch builds a partial update from the given flags.
func (f *taskFlags) patch(now time.Time) service.TaskPatch {
	p := service.TaskPatch{
		Description:       f.desc,
		Priority:          f.priority,
		EndTime:           f.endTime,
		EstimatedDuration: f.estimate,
	}
	if f.due != nil {
		d := resolveDay(*f.due, now)
		p.DueDate = &d
	}
	if f.tagsSet {
		p.Tags = f.tags
		if p.Tags == nil {
			p.Tags = []string{}
		}
	}
	return p
}

// resolveDay expands "today" and "tomorrow" to dates in now's location.
// Other values are passed through for validation.
func resolveDay(s string, now time.Time) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return now.Format(time.DateOnly)
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(time.DateOnly)
	}
	return strings.TrimSpace(s)
}
