// Package dashboard aggregates fetched task and employee lists for display. Everything is
// recomputed from the lists on each call; nothing is stored server side.
package dashboard

import (
	"sort"
	"time"

	"taskboard/internal/domain"
)

// All matches every status or priority in Filter.
const All = "all"

// StatusCounts holds one count per task status.
type StatusCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

func (c StatusCounts) Total() int { return c.Pending + c.InProgress + c.Completed }

type PriorityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// AssigneeLoad pairs an employee with the number of tasks assigned to them.
type AssigneeLoad struct {
	Employee domain.Employee `json:"employee"`
	Tasks    int             `json:"tasks"`
}

// Summary is the full dashboard view of a task list.
type Summary struct {
	Total      int            `json:"total"`
	Status     StatusCounts   `json:"status"`
	Priority   PriorityCounts `json:"priority"`
	Overdue    int            `json:"overdue"`
	Completion float64        `json:"completion_percent"`
	Top        []AssigneeLoad `json:"top_assignees,omitempty"`
}

func CountByStatus(tasks []domain.Task) StatusCounts {
	var c StatusCounts
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusPending:
			c.Pending++
		case domain.StatusInProgress:
			c.InProgress++
		case domain.StatusCompleted:
			c.Completed++
		}
	}
	return c
}

func CountByPriority(tasks []domain.Task) PriorityCounts {
	var c PriorityCounts
	for _, t := range tasks {
		switch t.Priority {
		case domain.PriorityLow:
			c.Low++
		case domain.PriorityMedium:
			c.Medium++
		case domain.PriorityHigh:
			c.High++
		}
	}
	return c
}

// DueAt parses a task's due date. Tasks without one, or with an unparsable one, report false.
func DueAt(t domain.Task) (time.Time, bool) {
	if t.DueDate == nil || *t.DueDate == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if v, err := time.Parse(layout, *t.DueDate); err == nil {
			return v, true
		}
	}
	return time.Time{}, false
}

// IsOverdue reports a due date before now on a task that is not completed.
func IsOverdue(t domain.Task, now time.Time) bool {
	if t.Status == domain.StatusCompleted {
		return false
	}
	due, ok := DueAt(t)
	return ok && due.Before(now)
}

// Overdue returns the overdue tasks in list order.
func Overdue(tasks []domain.Task, now time.Time) []domain.Task {
	out := []domain.Task{}
	for _, t := range tasks {
		if IsOverdue(t, now) {
			out = append(out, t)
		}
	}
	return out
}

// TopAssignees returns the first n employees in list order with their assigned task counts.
func TopAssignees(tasks []domain.Task, employees []domain.Employee, n int) []AssigneeLoad {
	if n > len(employees) {
		n = len(employees)
	}
	if n <= 0 {
		return nil
	}
	counts := make(map[string]int, len(tasks))
	for _, t := range tasks {
		if t.AssignedTo != nil {
			counts[*t.AssignedTo]++
		}
	}
	out := make([]AssigneeLoad, 0, n)
	for _, e := range employees[:n] {
		out = append(out, AssigneeLoad{Employee: e, Tasks: counts[e.ID]})
	}
	return out
}

// CompletionPercent is completed over total, 0 for an empty list.
func CompletionPercent(tasks []domain.Task) float64 {
	total := len(tasks)
	if total == 0 {
		total = 1
	}
	return float64(CountByStatus(tasks).Completed) / float64(total) * 100
}

// Filter keeps tasks matching status and priority; All disables either check.
func Filter(tasks []domain.Task, status, priority string) []domain.Task {
	out := []domain.Task{}
	for _, t := range tasks {
		if status != "" && status != All && t.Status != status {
			continue
		}
		if priority != "" && priority != All && t.Priority != priority {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortNewestFirst orders a copy of tasks by created_at descending.
func SortNewestFirst(tasks []domain.Task) []domain.Task {
	out := append([]domain.Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		return createdAt(out[i]).After(createdAt(out[j]))
	})
	return out
}

func createdAt(t domain.Task) time.Time {
	v, _ := time.Parse(time.RFC3339Nano, t.CreatedAt)
	return v
}

// AssignedTo is the employee view: only tasks assigned to userID.
func AssignedTo(tasks []domain.Task, userID string) []domain.Task {
	out := []domain.Task{}
	for _, t := range tasks {
		if t.AssignedTo != nil && *t.AssignedTo == userID {
			out = append(out, t)
		}
	}
	return out
}

// Summarize computes every aggregate at once. Pass nil employees for the personal view.
func Summarize(tasks []domain.Task, employees []domain.Employee, now time.Time, top int) Summary {
	return Summary{
		Total:      len(tasks),
		Status:     CountByStatus(tasks),
		Priority:   CountByPriority(tasks),
		Overdue:    len(Overdue(tasks, now)),
		Completion: CompletionPercent(tasks),
		Top:        TopAssignees(tasks, employees, top),
	}
}

// Day groups the tasks due on one calendar day.
type Day struct {
	Date  string        `json:"date"`
	Tasks []domain.Task `json:"tasks"`
}

// Calendar groups tasks by due day (UTC) within [from, to), in date order. Tasks without a
// due date are left out.
func Calendar(tasks []domain.Task, from, to time.Time) []Day {
	byDay := map[string][]domain.Task{}
	for _, t := range tasks {
		due, ok := DueAt(t)
		if !ok {
			continue
		}
		if !from.IsZero() && due.Before(from) {
			continue
		}
		if !to.IsZero() && !due.Before(to) {
			continue
		}
		key := due.UTC().Format(time.DateOnly)
		byDay[key] = append(byDay[key], t)
	}
	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Day, 0, len(keys))
	for _, k := range keys {
		out = append(out, Day{Date: k, Tasks: byDay[k]})
	}
	return out
}
