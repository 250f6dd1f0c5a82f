package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	taskboardsdk "taskboard/sdk/go"
)

func fakeAPI(t *testing.T, role string, employeesStatus int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/me":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{
				"user":     map[string]string{"id": "e1", "email": "e1@example.com"},
				"employee": map[string]string{"id": "e1", "role": role},
			}})
		case "/api/tasks":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []map[string]any{
				{"id": "t1", "status": "pending", "priority": "high", "assigned_to": "e1", "due_date": "2024-01-01T00:00:00Z", "created_at": "2024-01-01T00:00:00Z"},
				{"id": "t2", "status": "completed", "priority": "low", "assigned_to": "e2", "created_at": "2024-01-02T00:00:00Z"},
			}})
		case "/api/employees":
			if employeesStatus != http.StatusOK {
				w.WriteHeader(employeesStatus)
				w.Write([]byte(`{"success":false,"message":"Admin access required"}`))
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []map[string]string{{"id": "e1"}, {"id": "e2"}}})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestFetchDashboardAdmin(t *testing.T) {
	srv := fakeAPI(t, "admin", http.StatusOK)
	defer srv.Close()
	view, err := fetchDashboard(context.Background(), taskboardsdk.New(srv.URL), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !view.Admin || view.Summary.Total != 2 || len(view.Summary.Top) != 2 || view.Summary.Completion != 50 {
		t.Fatalf("unexpected admin view %+v", view)
	}
	if len(view.Overdue) != 1 || view.Overdue[0].ID != "t1" {
		t.Fatalf("unexpected overdue %+v", view.Overdue)
	}
}

func TestFetchDashboardFallsBackToPersonalView(t *testing.T) {
	srv := fakeAPI(t, "employee", http.StatusForbidden)
	defer srv.Close()
	view, err := fetchDashboard(context.Background(), taskboardsdk.New(srv.URL), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if view.Admin || view.Summary.Total != 1 || view.Summary.Overdue != 1 || len(view.Summary.Top) != 0 {
		t.Fatalf("unexpected personal view %+v", view)
	}
}
