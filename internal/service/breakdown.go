package service

import "fmt"

// CheckDependencies verifies that every subtask dependency points to an
// earlier subtask. It returns the first violation found.
func (b TaskBreakdown) CheckDependencies() error {
	for i, st := range b.Subtasks {
		for _, d := range st.Dependencies {
			if d < 0 || d >= i {
				return fmt.Errorf("subtask %d depends on invalid position %d", i, d)
			}
		}
	}
	return nil
}

// TotalEstimate returns the summed estimated minutes of all subtasks.
func (b TaskBreakdown) TotalEstimate() int {
	total := 0
	for _, st := range b.Subtasks {
		total += st.EstimatedTime
	}
	return total
}
