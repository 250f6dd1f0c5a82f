package dashboard

import (
	"testing"
	"time"

	"taskboard/internal/domain"
)

func ptr(s string) *string { return &s }

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func sampleTasks() []domain.Task {
	return []domain.Task{
		{ID: "t1", Status: "pending", Priority: "high", AssignedTo: ptr("e1"), DueDate: ptr("2024-06-10T00:00:00Z"), CreatedAt: "2024-06-01T10:00:00.000000000Z"},
		{ID: "t2", Status: "completed", Priority: "low", AssignedTo: ptr("e1"), DueDate: ptr("2024-06-10T00:00:00Z"), CreatedAt: "2024-06-03T10:00:00.000000000Z"},
		{ID: "t3", Status: "in-progress", Priority: "medium", AssignedTo: ptr("e2"), DueDate: ptr("2024-06-20T00:00:00Z"), CreatedAt: "2024-06-02T10:00:00.000000000Z"},
		{ID: "t4", Status: "pending", Priority: "medium", CreatedAt: "2024-06-04T10:00:00.000000000Z"},
	}
}

func TestCounts(t *testing.T) {
	tasks := sampleTasks()
	s := CountByStatus(tasks)
	if s.Pending != 2 || s.InProgress != 1 || s.Completed != 1 || s.Total() != 4 {
		t.Fatalf("unexpected status counts %+v", s)
	}
	p := CountByPriority(tasks)
	if p.Low != 1 || p.Medium != 2 || p.High != 1 {
		t.Fatalf("unexpected priority counts %+v", p)
	}
}

func TestOverdue(t *testing.T) {
	got := Overdue(sampleTasks(), now)
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("expected only t1 overdue, got %+v", got)
	}
	dateOnly := domain.Task{Status: "pending", DueDate: ptr("2024-06-14")}
	if !IsOverdue(dateOnly, now) {
		t.Fatalf("expected date-only due date to be overdue")
	}
}

func TestTopAssignees(t *testing.T) {
	employees := []domain.Employee{{ID: "e1"}, {ID: "e2"}, {ID: "e3"}}
	top := TopAssignees(sampleTasks(), employees, 2)
	if len(top) != 2 || top[0].Tasks != 2 || top[1].Tasks != 1 {
		t.Fatalf("unexpected top assignees %+v", top)
	}
	if got := TopAssignees(nil, employees, 5); len(got) != 3 {
		t.Fatalf("expected n capped at employee count, got %d", len(got))
	}
}

func TestCompletionPercent(t *testing.T) {
	if got := CompletionPercent(sampleTasks()); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
	if got := CompletionPercent(nil); got != 0 {
		t.Fatalf("expected 0 for empty list, got %v", got)
	}
}

func TestFilterAndSort(t *testing.T) {
	tasks := sampleTasks()
	if got := Filter(tasks, All, All); len(got) != 4 {
		t.Fatalf("expected all tasks, got %d", len(got))
	}
	if got := Filter(tasks, "pending", "medium"); len(got) != 1 || got[0].ID != "t4" {
		t.Fatalf("unexpected filter result %+v", got)
	}
	sorted := SortNewestFirst(tasks)
	want := []string{"t4", "t2", "t3", "t1"}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, sorted[i].ID)
		}
	}
	if tasks[0].ID != "t1" {
		t.Fatalf("input must not be reordered")
	}
	if mine := AssignedTo(tasks, "e1"); len(mine) != 2 {
		t.Fatalf("expected two tasks for e1, got %d", len(mine))
	}
}

func TestSummarizeAndCalendar(t *testing.T) {
	s := Summarize(sampleTasks(), []domain.Employee{{ID: "e1"}}, now, 5)
	if s.Total != 4 || s.Overdue != 1 || len(s.Top) != 1 {
		t.Fatalf("unexpected summary %+v", s)
	}
	days := Calendar(sampleTasks(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	if len(days) != 2 || days[0].Date != "2024-06-10" || len(days[0].Tasks) != 2 || days[1].Date != "2024-06-20" {
		t.Fatalf("unexpected calendar %+v", days)
	}
	if days := Calendar(sampleTasks(), time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), time.Time{}); len(days) != 1 {
		t.Fatalf("expected one day after the 15th, got %+v", days)
	}
}
