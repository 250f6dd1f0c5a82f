package domain

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	RoleAdmin    = "admin"
	RoleEmployee = "employee"

	DefaultDepartment = "General"
)

// Statuses lists task statuses in workflow order.
var Statuses = []string{StatusPending, StatusInProgress, StatusCompleted}

// Priorities lists task priorities from lowest to highest.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// Roles lists employee roles.
var Roles = []string{RoleAdmin, RoleEmployee}

type Task struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status" enum:"pending,in-progress,completed"`
	Priority    string  `json:"priority" enum:"low,medium,high"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
	CreatedBy   string  `json:"created_by"`
	DueDate     *string `json:"due_date,omitempty" format:"date-time"`
	CreatedAt   string  `json:"created_at" format:"date-time"`
	UpdatedAt   string  `json:"updated_at" format:"date-time"`
}

type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role" enum:"admin,employee"`
	Department string `json:"department,omitempty"`
	CreatedAt  string `json:"created_at" format:"date-time"`
	UpdatedAt  string `json:"updated_at" format:"date-time"`
}

// EmployeeWithTasks is the read-only joined view of an employee and the tasks assigned to them.
type EmployeeWithTasks struct {
	Employee
	Tasks []Task `json:"tasks"`
}

// AuthUser is an identity account as exposed outside the identity provider.
type AuthUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty" format:"date-time"`
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string   `json:"access_token"`
	ExpiresAt   string   `json:"expires_at" format:"date-time"`
	User        AuthUser `json:"user"`
}

func IsStatus(v string) bool   { return contains(Statuses, v) }
func IsPriority(v string) bool { return contains(Priorities, v) }
func IsRole(v string) bool     { return contains(Roles, v) }

func contains(items []string, v string) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}
