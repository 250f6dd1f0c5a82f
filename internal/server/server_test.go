package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"

	"taskboard/internal/db"
	"taskboard/internal/domain"
	"taskboard/internal/identity"
	"taskboard/internal/migrate"
	"taskboard/internal/repo"
	"taskboard/internal/service"
)

const testServiceKey = "provider-admin-key"

type testServer struct {
	*httptest.Server
	svc service.Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	conn, err := db.Open(db.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "server.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	p := identity.New(conn, "test-secret", time.Hour)
	p.Params = &argon2id.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	svc := service.New(repo.New(conn), p, zerolog.Nop())
	handler, err := New(Config{
		Services:   svc,
		ServiceKey: identity.NewServiceKey(testServiceKey),
		BasePath:   "/api",
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		conn.Close()
	})
	return &testServer{Server: srv, svc: svc}
}

// seedUser creates an employee with a password and returns a bearer header for them.
func (s *testServer) seedUser(t *testing.T, email, role string) (domain.Employee, map[string]string) {
	t.Helper()
	ctx := context.Background()
	e, err := s.svc.Employees.Create(ctx, service.CreateEmployeeInput{Name: email, Email: email, Password: "password1", Role: role})
	if err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
	sess, err := s.svc.Auth.Login(ctx, service.LoginInput{Email: email, Password: "password1"})
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return e, map[string]string{"Authorization": "Bearer " + sess.AccessToken}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader = bytes.NewReader(nil)
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

func decode[T any](t *testing.T, data []byte) envelope[T] {
	t.Helper()
	var out envelope[T]
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode %s: %v", string(data), err)
	}
	return out
}

func expectStatus(t *testing.T, res *http.Response, data []byte, want int) {
	t.Helper()
	if res.StatusCode != want {
		t.Fatalf("expected %d, got %d: %s", want, res.StatusCode, string(data))
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/health", nil, nil)
	expectStatus(t, res, data, http.StatusOK)
	var body HealthResponse
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Message != "Server running" {
		t.Fatalf("unexpected health body %s", string(data))
	}
}

func TestTaskLifecycle(t *testing.T) {
	srv := newTestServer(t)
	admin, authz := srv.seedUser(t, "admin@example.com", domain.RoleAdmin)
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/tasks", map[string]any{
		"title":      "Write report",
		"created_by": admin.ID,
	}, authz)
	expectStatus(t, res, data, http.StatusCreated)
	created := decode[domain.Task](t, data)
	if !created.Success || created.Data.Status != "pending" || created.Data.Priority != "medium" {
		t.Fatalf("unexpected created task %s", string(data))
	}
	taskURL := srv.URL + "/api/tasks/" + created.Data.ID

	res, data = doJSON(t, client, http.MethodPatch, taskURL+"/status", map[string]any{"status": "done"}, nil)
	expectStatus(t, res, data, http.StatusBadRequest)
	if msg := decode[any](t, data).Message; msg != "Invalid status" {
		t.Fatalf("unexpected message %q", msg)
	}

	res, data = doJSON(t, client, http.MethodPatch, taskURL+"/status", map[string]any{"status": "completed"}, nil)
	expectStatus(t, res, data, http.StatusOK)
	if got := decode[domain.Task](t, data).Data.Status; got != "completed" {
		t.Fatalf("expected completed, got %s", got)
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/tasks", nil, nil)
	expectStatus(t, res, data, http.StatusOK)
	if list := decode[[]domain.Task](t, data); len(list.Data) != 1 {
		t.Fatalf("expected one task, got %s", string(data))
	}

	res, data = doJSON(t, client, http.MethodPut, taskURL, map[string]any{
		"priority": "high",
		"due_date": "2024-08-01",
	}, authz)
	expectStatus(t, res, data, http.StatusOK)
	updated := decode[domain.Task](t, data).Data
	if updated.Priority != "high" || updated.DueDate == nil || *updated.DueDate != "2024-08-01T00:00:00Z" || updated.Title != "Write report" {
		t.Fatalf("unexpected update %s", string(data))
	}

	res, data = doJSON(t, client, http.MethodPut, taskURL, map[string]any{"due_date": nil}, authz)
	expectStatus(t, res, data, http.StatusOK)
	if decode[domain.Task](t, data).Data.DueDate != nil {
		t.Fatalf("expected due date cleared: %s", string(data))
	}

	res, data = doJSON(t, client, http.MethodPatch, taskURL+"/due-date", map[string]any{"due_date": "2024-09-10"}, authz)
	expectStatus(t, res, data, http.StatusOK)
	res, data = doJSON(t, client, http.MethodPatch, taskURL+"/priority", map[string]any{"priority": "urgent"}, authz)
	expectStatus(t, res, data, http.StatusBadRequest)

	res, data = doJSON(t, client, http.MethodDelete, taskURL, nil, authz)
	expectStatus(t, res, data, http.StatusOK)
	if msg := decode[any](t, data).Message; msg != "Task deleted successfully" {
		t.Fatalf("unexpected message %q", msg)
	}
	res, data = doJSON(t, client, http.MethodGet, taskURL, nil, authz)
	expectStatus(t, res, data, http.StatusNotFound)
	if body := decode[any](t, data); body.Success || body.Message != "Task not found" {
		t.Fatalf("unexpected not found body %s", string(data))
	}
}

func TestTaskValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	_, authz := srv.seedUser(t, "admin@example.com", domain.RoleAdmin)
	client := srv.Client()

	cases := []struct {
		name string
		body any
		msg  string
	}{
		{"missing title", map[string]any{"created_by": "u1"}, "Title is required"},
		{"missing creator", map[string]any{"title": "x"}, "Created by is required"},
		{"bad status", map[string]any{"title": "x", "created_by": "u1", "status": "done"}, "Invalid status"},
		{"malformed json", `{"title":`, ""},
		{"wrong type", map[string]any{"title": 42, "created_by": "u1"}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/tasks", c.body, authz)
			expectStatus(t, res, data, http.StatusBadRequest)
			body := decode[any](t, data)
			if body.Success {
				t.Fatalf("expected success=false: %s", string(data))
			}
			if c.msg != "" && body.Message != c.msg {
				t.Fatalf("expected %q, got %q", c.msg, body.Message)
			}
		})
	}
}

func TestMissingTasksReturnNotFound(t *testing.T) {
	srv := newTestServer(t)
	_, authz := srv.seedUser(t, "admin@example.com", domain.RoleAdmin)
	client := srv.Client()
	url := srv.URL + "/api/tasks/does-not-exist"

	for _, c := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "", nil},
		{http.MethodPut, "", map[string]any{"title": "x"}},
		{http.MethodDelete, "", nil},
		{http.MethodPatch, "/status", map[string]any{"status": "completed"}},
		{http.MethodPatch, "/priority", map[string]any{"priority": "low"}},
	} {
		res, data := doJSON(t, client, c.method, url+c.path, c.body, authz)
		expectStatus(t, res, data, http.StatusNotFound)
	}
}

func TestAuthGates(t *testing.T) {
	srv := newTestServer(t)
	_, adminAuth := srv.seedUser(t, "admin@example.com", domain.RoleAdmin)
	_, workerAuth := srv.seedUser(t, "worker@example.com", domain.RoleEmployee)
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/tasks", map[string]any{"title": "x", "created_by": "u"}, nil)
	expectStatus(t, res, data, http.StatusUnauthorized)

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/employees", nil, map[string]string{"Authorization": "Bearer nope"})
	expectStatus(t, res, data, http.StatusUnauthorized)

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/employees", nil, workerAuth)
	expectStatus(t, res, data, http.StatusForbidden)
	if msg := decode[any](t, data).Message; msg != "Admin access required" {
		t.Fatalf("unexpected message %q", msg)
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/employees", nil, adminAuth)
	expectStatus(t, res, data, http.StatusOK)
	if list := decode[[]domain.Employee](t, data); len(list.Data) != 2 {
		t.Fatalf("expected two employees: %s", string(data))
	}

	// Public routes ignore bad credentials.
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/tasks", nil, map[string]string{"Authorization": "Bearer nope"})
	expectStatus(t, res, data, http.StatusOK)

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/employees", nil, map[string]string{"X-Api-Key": testServiceKey})
	expectStatus(t, res, data, http.StatusOK)
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/employees", nil, map[string]string{"X-Api-Key": "wrong"})
	expectStatus(t, res, data, http.StatusUnauthorized)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	admin, _ := srv.seedUser(t, "admin@example.com", domain.RoleAdmin)
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", map[string]any{
		"email": "admin@example.com", "password": "wrong",
	}, nil)
	expectStatus(t, res, data, http.StatusUnauthorized)
	if decode[any](t, data).Success {
		t.Fatalf("expected success=false")
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", map[string]any{
		"email": "admin@example.com", "password": "password1",
	}, nil)
	expectStatus(t, res, data, http.StatusOK)
	var login LoginResponse
	if err := json.Unmarshal(data, &login); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !login.Success || login.AccessToken == "" || login.User.ID != admin.ID {
		t.Fatalf("unexpected login body %s", string(data))
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/me", nil, map[string]string{"Authorization": "Bearer " + login.AccessToken})
	expectStatus(t, res, data, http.StatusOK)
	me := decode[service.Profile](t, data)
	if me.Data.Employee == nil || me.Data.Employee.Role != domain.RoleAdmin {
		t.Fatalf("unexpected profile %s", string(data))
	}
}

func TestEmployeeManagement(t *testing.T) {
	srv := newTestServer(t)
	_, authz := srv.seedUser(t, "admin@example.com", domain.RoleAdmin)
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/employees", map[string]any{
		"name": "Ada", "email": "ada@example.com", "password": "secret1", "role": "employee",
	}, authz)
	expectStatus(t, res, data, http.StatusCreated)
	ada := decode[domain.Employee](t, data).Data
	if ada.Department != "General" || ada.ID == "" {
		t.Fatalf("unexpected employee %s", string(data))
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/api/employees", map[string]any{
		"name": "Ada", "email": "ada@example.com", "role": "employee",
	}, authz)
	expectStatus(t, res, data, http.StatusBadRequest)
	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/api/employees", map[string]any{
		"name": "Bob", "email": "bob@example.com", "role": "manager",
	}, authz)
	expectStatus(t, res, data, http.StatusBadRequest)

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/api/tasks", map[string]any{
		"title": "Assigned", "created_by": "admin", "assigned_to": ada.ID,
	}, authz)
	expectStatus(t, res, data, http.StatusCreated)

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/employees/"+ada.ID+"/tasks", nil, authz)
	expectStatus(t, res, data, http.StatusOK)
	if withTasks := decode[domain.EmployeeWithTasks](t, data); len(withTasks.Data.Tasks) != 1 || withTasks.Data.Name != "Ada" {
		t.Fatalf("unexpected employee tasks %s", string(data))
	}

	res, data = doJSON(t, client, http.MethodPut, srv.URL+"/api/employees/"+ada.ID, map[string]any{"department": "Ops"}, authz)
	expectStatus(t, res, data, http.StatusOK)
	if got := decode[domain.Employee](t, data).Data.Department; got != "Ops" {
		t.Fatalf("expected Ops, got %s", got)
	}

	res, data = doJSON(t, client, http.MethodDelete, srv.URL+"/api/employees/"+ada.ID, nil, authz)
	expectStatus(t, res, data, http.StatusOK)
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/employees/"+ada.ID, nil, authz)
	expectStatus(t, res, data, http.StatusNotFound)
	if msg := decode[any](t, data).Message; msg != "Employee not found" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCORSAndDocs(t *testing.T) {
	srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	res, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent || res.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected preflight response %d %v", res.StatusCode, res.Header)
	}

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/openapi.json", nil, nil)
	expectStatus(t, res, data, http.StatusOK)
	var oas map[string]any
	if err := json.Unmarshal(data, &oas); err != nil {
		t.Fatalf("decode openapi: %v", err)
	}
	paths, _ := oas["paths"].(map[string]any)
	if _, ok := paths["/api/tasks/{id}/status"]; !ok {
		t.Fatalf("openapi missing task status path")
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	srv := newTestServer(t)
	admin, authz := srv.seedUser(t, "admin@example.com", domain.RoleAdmin)
	body := `{"created_by":"` + admin.ID + `","title":"` + strings.Repeat("x", maxBodyBytes) + `"}`

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/tasks", body, authz)
	expectStatus(t, res, data, http.StatusBadRequest)
	got := decode[any](t, data)
	if got.Success || !strings.Contains(got.Message, "exceeds") {
		t.Fatalf("unexpected body %s", string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/tasks", nil, nil)
	expectStatus(t, res, data, http.StatusOK)
	if list := decode[[]domain.Task](t, data); len(list.Data) != 0 {
		t.Fatalf("oversized task must not be stored: %s", string(data))
	}
}
