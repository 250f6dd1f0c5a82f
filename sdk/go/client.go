// Package taskboardsdk is a typed client for the taskboard HTTP API.
package taskboardsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 10 * time.Second

// Client is a minimal taskboard HTTP API client. A Client is safe for concurrent use
// once its exported fields are set.
type Client struct {
	BaseURL     string
	BasePath    string
	APIKey      string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration

	fallbackOnce sync.Once
	fallback     *http.Client
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		BasePath:   "/api",
		Timeout:    DefaultTimeout,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// httpClient returns HTTPClient, or a shared client bounded by Timeout when the Client
// was built without New.
func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	c.fallbackOnce.Do(func() {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.fallback = &http.Client{Timeout: timeout}
	})
	return c.fallback
}

type Task struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
	CreatedBy   string  `json:"created_by"`
	DueDate     *string `json:"due_date,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type EmployeeWithTasks struct {
	Employee
	Tasks []Task `json:"tasks"`
}

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	User        User   `json:"user"`
}

// Profile is the caller's account and, when present, their employee row.
type Profile struct {
	User     User      `json:"user"`
	Employee *Employee `json:"employee,omitempty"`
}

// IsAdmin reports whether the profile belongs to an admin employee.
func (p Profile) IsAdmin() bool {
	return p.Employee != nil && p.Employee.Role == "admin"
}

type CreateTask struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
	CreatedBy   string  `json:"created_by"`
	DueDate     *string `json:"due_date,omitempty"`
}

type CreateEmployee struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password,omitempty"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

// Login exchanges credentials for a session and remembers the token.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var resp struct {
		Success bool `json:"success"`
		Session
	}
	err := c.do(ctx, http.MethodPost, "auth/login", map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return Session{}, err
	}
	c.BearerToken = resp.AccessToken
	return resp.Session, nil
}

func (c *Client) Me(ctx context.Context) (Profile, error) {
	return call[Profile](ctx, c, http.MethodGet, "auth/me", nil)
}

// Health checks the server liveness endpoint, which sits outside the API base path.
func (c *Client) Health(ctx context.Context) error {
	return c.doURL(ctx, http.MethodGet, c.base()+"/health", nil, nil)
}

func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	return call[[]Task](ctx, c, http.MethodGet, "tasks", nil)
}

func (c *Client) GetTask(ctx context.Context, id string) (Task, error) {
	return call[Task](ctx, c, http.MethodGet, taskPath(id, ""), nil)
}

func (c *Client) CreateTask(ctx context.Context, in CreateTask) (Task, error) {
	return call[Task](ctx, c, http.MethodPost, "tasks", in)
}

// UpdateTask sends only the given fields; a nil value clears assigned_to or due_date.
func (c *Client) UpdateTask(ctx context.Context, id string, fields map[string]any) (Task, error) {
	return call[Task](ctx, c, http.MethodPut, taskPath(id, ""), fields)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodDelete, taskPath(id, ""), nil)
	return err
}

func (c *Client) SetTaskStatus(ctx context.Context, id, status string) (Task, error) {
	return call[Task](ctx, c, http.MethodPatch, taskPath(id, "status"), map[string]string{"status": status})
}

func (c *Client) SetTaskPriority(ctx context.Context, id, priority string) (Task, error) {
	return call[Task](ctx, c, http.MethodPatch, taskPath(id, "priority"), map[string]string{"priority": priority})
}

// RescheduleTask moves the due date; an empty date clears it.
func (c *Client) RescheduleTask(ctx context.Context, id, dueDate string) (Task, error) {
	var body map[string]any
	if dueDate == "" {
		body = map[string]any{"due_date": nil}
	} else {
		body = map[string]any{"due_date": dueDate}
	}
	return call[Task](ctx, c, http.MethodPatch, taskPath(id, "due-date"), body)
}

func (c *Client) ListEmployees(ctx context.Context) ([]Employee, error) {
	return call[[]Employee](ctx, c, http.MethodGet, "employees", nil)
}

func (c *Client) GetEmployee(ctx context.Context, id string) (Employee, error) {
	return call[Employee](ctx, c, http.MethodGet, "employees/"+url.PathEscape(id), nil)
}

func (c *Client) CreateEmployee(ctx context.Context, in CreateEmployee) (Employee, error) {
	return call[Employee](ctx, c, http.MethodPost, "employees", in)
}

func (c *Client) UpdateEmployee(ctx context.Context, id string, fields map[string]any) (Employee, error) {
	return call[Employee](ctx, c, http.MethodPut, "employees/"+url.PathEscape(id), fields)
}

func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodDelete, "employees/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) EmployeeTasks(ctx context.Context, id string) (EmployeeWithTasks, error) {
	return call[EmployeeWithTasks](ctx, c, http.MethodGet, "employees/"+url.PathEscape(id)+"/tasks", nil)
}

func call[T any](ctx context.Context, c *Client, method, endpoint string, body any) (T, error) {
	var resp envelope[T]
	err := c.do(ctx, method, endpoint, body, &resp)
	return resp.Data, err
}

func taskPath(id, sub string) string {
	p := "tasks/" + url.PathEscape(id)
	if sub != "" {
		p += "/" + sub
	}
	return p
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	basePath := strings.Trim(c.BasePath, "/")
	u := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	if basePath != "" {
		u = c.base() + "/" + basePath + "/" + strings.TrimLeft(endpoint, "/")
	}
	return c.doURL(ctx, method, u, body, out)
}

func (c *Client) doURL(ctx context.Context, method, u string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.APIKey != "":
		req.Header.Set("X-Api-Key", c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var failure struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(b, &failure) == nil {
			apiErr.Message = failure.Message
		}
		return apiErr
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
