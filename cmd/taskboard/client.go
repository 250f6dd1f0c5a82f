package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskboard/internal/dashboard"
	"taskboard/internal/domain"
	taskboardsdk "taskboard/sdk/go"
)

const tokenEnv = "TASKBOARD_CLIENT_TOKEN"

func newClient() *taskboardsdk.Client {
	c := taskboardsdk.New(viper.GetString("client.server"))
	c.BearerToken = viper.GetString("client.token")
	c.APIKey = viper.GetString("client.api_key")
	return c
}

func loginCmd() *cobra.Command {
	var email, password string
	var save bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token in .env",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			sess, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if save {
				path := filepath.Join(viper.GetString("env-dir"), ".env")
				if err := setEnvValue(path, tokenEnv, sess.AccessToken); err != nil {
					return err
				}
			}
			if viper.GetBool("json") {
				return printJSON(sess)
			}
			fmt.Printf("Signed in as %s (token expires %s)\n", sess.User.Email, sess.ExpiresAt)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().BoolVar(&save, "save", true, "store the token in .env")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newClient().Me(cmd.Context())
			if err != nil {
				return err
			}
			return printJSONOrTable(p)
		},
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func taskCmd() *cobra.Command {
	task := &cobra.Command{Use: "task", Short: "Manage tasks"}
	task.AddCommand(taskListCmd())
	task.AddCommand(taskShowCmd())
	task.AddCommand(taskCreateCmd())
	task.AddCommand(taskUpdateCmd())
	task.AddCommand(taskStatusCmd())
	task.AddCommand(taskPriorityCmd())
	task.AddCommand(taskRescheduleCmd())
	task.AddCommand(taskDeleteCmd())
	return task
}

func taskListCmd() *cobra.Command {
	var status, priority, assignee string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := newClient().ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			items := toDomainTasks(tasks)
			if assignee != "" {
				items = dashboard.AssignedTo(items, assignee)
			}
			items = dashboard.SortNewestFirst(dashboard.Filter(items, status, priority))
			if viper.GetBool("json") {
				return printJSON(items)
			}
			renderTasks(items)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", dashboard.All, "status filter (pending, in-progress, completed, all)")
	cmd.Flags().StringVar(&priority, "priority", dashboard.All, "priority filter (low, medium, high, all)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "only tasks assigned to this employee id")
	return cmd
}

func taskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := newClient().GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSONOrTable(t)
		},
	}
}

func taskCreateCmd() *cobra.Command {
	var in taskboardsdk.CreateTask
	var assignee, due string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			if in.CreatedBy == "" {
				me, err := c.Me(cmd.Context())
				if err != nil {
					return fmt.Errorf("resolve creator (pass --created-by): %w", err)
				}
				in.CreatedBy = me.User.ID
			}
			in.AssignedTo = optionalString(assignee)
			in.DueDate = optionalString(due)
			t, err := c.CreateTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSONOrTable(t)
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "title")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().StringVar(&in.Status, "status", "", "status (default pending)")
	cmd.Flags().StringVar(&in.Priority, "priority", "", "priority (default medium)")
	cmd.Flags().StringVar(&in.CreatedBy, "created-by", "", "creator id (default: signed-in user)")
	cmd.Flags().StringVar(&assignee, "assign", "", "employee id to assign")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD or RFC 3339)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func taskUpdateCmd() *cobra.Command {
	var title, description, status, priority, assignee, due string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update task fields; pass an empty --assign or --due to clear them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := map[string]any{}
			set := func(flag, key, value string, clearable bool) {
				if !cmd.Flags().Changed(flag) {
					return
				}
				if clearable && value == "" {
					fields[key] = nil
					return
				}
				fields[key] = value
			}
			set("title", "title", title, false)
			set("description", "description", description, false)
			set("status", "status", status, false)
			set("priority", "priority", priority, false)
			set("assign", "assigned_to", assignee, true)
			set("due", "due_date", due, true)
			if len(fields) == 0 {
				return fmt.Errorf("nothing to update")
			}
			t, err := newClient().UpdateTask(cmd.Context(), args[0], fields)
			if err != nil {
				return err
			}
			return printJSONOrTable(t)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&status, "status", "", "status")
	cmd.Flags().StringVar(&priority, "priority", "", "priority")
	cmd.Flags().StringVar(&assignee, "assign", "", "employee id to assign")
	cmd.Flags().StringVar(&due, "due", "", "due date")
	return cmd
}

func taskStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <pending|in-progress|completed>",
		Short: "Move a task to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := newClient().SetTaskStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSONOrTable(t)
		},
	}
}

func taskPriorityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "priority <id> <low|medium|high>",
		Short: "Change task priority",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := newClient().SetTaskPriority(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSONOrTable(t)
		},
	}
}

func taskRescheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reschedule <id> [date]",
		Short: "Move a task's due date; omit the date to clear it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			due := ""
			if len(args) == 2 {
				due = args[1]
			}
			t, err := newClient().RescheduleTask(cmd.Context(), args[0], due)
			if err != nil {
				return err
			}
			return printJSONOrTable(t)
		},
	}
}

func taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Task deleted successfully")
			return nil
		},
	}
}

func employeeCmd() *cobra.Command {
	emp := &cobra.Command{Use: "employee", Short: "Manage employees (admin only)"}
	emp.AddCommand(employeeListCmd())
	emp.AddCommand(employeeShowCmd())
	emp.AddCommand(employeeCreateCmd())
	emp.AddCommand(employeeUpdateCmd())
	emp.AddCommand(employeeDeleteCmd())
	return emp
}

func employeeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := newClient().ListEmployees(cmd.Context())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(items)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Name", "Email", "Role", "Department"})
			for _, e := range items {
				tw.AppendRow(table.Row{e.ID, e.Name, e.Email, e.Role, e.Department})
			}
			tw.Render()
			return nil
		},
	}
}

func employeeShowCmd() *cobra.Command {
	var withTasks bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			if !withTasks {
				e, err := c.GetEmployee(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(e)
			}
			e, err := c.EmployeeTasks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(e)
			}
			fmt.Printf("%s <%s> %s, %s\n", e.Name, e.Email, e.Role, e.Department)
			renderTasks(toDomainTasks(e.Tasks))
			return nil
		},
	}
	cmd.Flags().BoolVar(&withTasks, "tasks", false, "include assigned tasks")
	return cmd
}

func employeeCreateCmd() *cobra.Command {
	var in taskboardsdk.CreateEmployee
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an employee and their sign-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newClient().CreateEmployee(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSONOrTable(e)
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password (omit to create a login-disabled account)")
	cmd.Flags().StringVar(&in.Role, "role", domain.RoleEmployee, "role (admin, employee)")
	cmd.Flags().StringVar(&in.Department, "department", "", "department (default General)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func employeeUpdateCmd() *cobra.Command {
	var name, email, role, department string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := map[string]any{}
			for flag, v := range map[string]string{"name": name, "email": email, "role": role, "department": department} {
				if cmd.Flags().Changed(flag) {
					fields[flag] = v
				}
			}
			if len(fields) == 0 {
				return fmt.Errorf("nothing to update")
			}
			e, err := newClient().UpdateEmployee(cmd.Context(), args[0], fields)
			if err != nil {
				return err
			}
			return printJSONOrTable(e)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name")
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&role, "role", "", "role")
	cmd.Flags().StringVar(&department, "department", "", "department")
	return cmd
}

func employeeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an employee (the sign-in account is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteEmployee(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Employee deleted")
			return nil
		},
	}
}

// --- helpers ---

func toDomainTasks(items []taskboardsdk.Task) []domain.Task {
	out := make([]domain.Task, 0, len(items))
	for _, t := range items {
		out = append(out, domain.Task(t))
	}
	return out
}

func toDomainEmployees(items []taskboardsdk.Employee) []domain.Employee {
	out := make([]domain.Employee, 0, len(items))
	for _, e := range items {
		out = append(out, domain.Employee(e))
	}
	return out
}

func renderTasks(tasks []domain.Task) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Title", "Status", "Priority", "Assignee", "Due"})
	for _, t := range tasks {
		tw.AppendRow(table.Row{t.ID, t.Title, t.Status, t.Priority, stringOrEmpty(t.AssignedTo), stringOrEmpty(t.DueDate)})
	}
	tw.Render()
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setEnvValue(path, key, value string) error {
	var lines []string
	seen := false
	f, err := os.Open(path)
	if err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, key+"=") {
				lines = append(lines, fmt.Sprintf("%s=%s", key, value))
				seen = true
			} else {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			f.Close()
			return err
		}
		f.Close()
	} else if !os.IsNotExist(err) {
		return err
	}
	if !seen {
		lines = append(lines, fmt.Sprintf("%s=%s", key, value))
	}
	content := strings.Join(lines, "\n")
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
