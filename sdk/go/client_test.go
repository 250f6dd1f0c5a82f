package taskboardsdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestClientDecodesEnvelopeAndSendsToken(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.Method + " " + r.URL.Path
		gotBody = nil
		json.NewDecoder(r.Body).Decode(&gotBody)
		switch r.URL.Path {
		case "/api/auth/login":
			json.NewEncoder(w).Encode(map[string]any{
				"success": true, "access_token": "tok", "user": map[string]string{"id": "u1", "email": "a@example.com"},
			})
		case "/api/tasks/t1/due-date":
			json.NewEncoder(w).Encode(map[string]any{
				"success": true, "data": map[string]any{"id": "t1", "status": "pending", "due_date": gotBody["due_date"]},
			})
		default:
			json.NewEncoder(w).Encode(map[string]any{
				"success": true, "data": []map[string]string{{"id": "t1", "title": "x", "status": "pending"}},
			})
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	sess, err := c.Login(context.Background(), "a@example.com", "pw")
	if err != nil || sess.AccessToken != "tok" || sess.User.ID != "u1" {
		t.Fatalf("login: %v %+v", err, sess)
	}
	tasks, err := c.ListTasks(context.Background())
	if err != nil || len(tasks) != 1 || tasks[0].Title != "x" {
		t.Fatalf("list: %v %+v", err, tasks)
	}
	if gotAuth != "Bearer tok" || gotPath != "GET /api/tasks" {
		t.Fatalf("unexpected request %q %q", gotAuth, gotPath)
	}

	if _, err := c.RescheduleTask(context.Background(), "t1", ""); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if v, ok := gotBody["due_date"]; !ok || v != nil {
		t.Fatalf("expected explicit null due_date, got %v", gotBody)
	}
}

func TestClientReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "key" {
			t.Errorf("missing api key header")
		}
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success":false,"message":"Admin access required"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.APIKey = "key"
	_, err := c.ListEmployees(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden || apiErr.Message != "Admin access required" {
		t.Fatalf("unexpected error %v", err)
	}
	if c.HTTPClient.Timeout != DefaultTimeout {
		t.Fatalf("expected default timeout, got %v", c.HTTPClient.Timeout)
	}
}

func TestClientConcurrentCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true, "data": []map[string]string{{"id": "t1", "title": "x", "status": "pending"}},
		})
	}))
	defer srv.Close()

	clients := map[string]*Client{
		"new":        New(srv.URL),
		"zero value": {BaseURL: srv.URL, BasePath: "/api", Timeout: 3 * time.Second},
	}
	for name, c := range clients {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			errs := make(chan error, 8)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := c.ListTasks(context.Background()); err != nil {
						errs <- err
					}
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				t.Fatalf("list: %v", err)
			}
		})
	}
	if got := clients["zero value"].httpClient().Timeout; got != 3*time.Second {
		t.Fatalf("fallback client timeout = %v, want 3s", got)
	}
}
