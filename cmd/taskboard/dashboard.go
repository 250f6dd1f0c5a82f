package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"taskboard/internal/dashboard"
	"taskboard/internal/domain"
	taskboardsdk "taskboard/sdk/go"
)

const topAssignees = 5

// dashboardView is what the dashboard command renders.
type dashboardView struct {
	Admin    bool              `json:"admin"`
	User     string            `json:"user"`
	Summary  dashboard.Summary `json:"summary"`
	Overdue  []domain.Task     `json:"overdue"`
	Calendar []dashboard.Day   `json:"calendar,omitempty"`

	tasks []domain.Task
}

// fetchDashboard loads the profile, tasks and employees concurrently. A failed profile or
// employee lookup falls back to the personal view.
func fetchDashboard(ctx context.Context, c *taskboardsdk.Client, now time.Time) (dashboardView, error) {
	var (
		profile    taskboardsdk.Profile
		profileErr error
		tasks      []taskboardsdk.Task
		employees  []taskboardsdk.Employee
		empErr     error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, profileErr = c.Me(gctx)
		return nil
	})
	g.Go(func() error {
		var err error
		tasks, err = c.ListTasks(gctx)
		return err
	})
	g.Go(func() error {
		employees, empErr = c.ListEmployees(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return dashboardView{}, err
	}

	all := toDomainTasks(tasks)
	view := dashboardView{User: profile.User.Email}
	if profileErr == nil && empErr == nil && profile.IsAdmin() {
		view.Admin = true
		view.Summary = dashboard.Summarize(all, toDomainEmployees(employees), now, topAssignees)
		view.Overdue = dashboard.Overdue(all, now)
		view.tasks = all
		return view, nil
	}
	mine := dashboard.AssignedTo(all, profile.User.ID)
	view.Summary = dashboard.Summarize(mine, nil, now, 0)
	view.Overdue = dashboard.Overdue(mine, now)
	view.tasks = mine
	return view, nil
}

func dashboardCmd() *cobra.Command {
	var calendar bool
	var month string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show task statistics for the signed-in user",
		Long: `Admins see counts across all tasks plus the first employees and their workload.
Employees see only the tasks assigned to them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().UTC()
			view, err := fetchDashboard(cmd.Context(), newClient(), now)
			if err != nil {
				return err
			}
			if calendar {
				from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
				if month != "" {
					from, err = time.Parse("2006-01", month)
					if err != nil {
						return fmt.Errorf("invalid --month %q (want YYYY-MM)", month)
					}
				}
				view.Calendar = dashboard.Calendar(view.tasks, from, from.AddDate(0, 1, 0))
			}
			if viper.GetBool("json") {
				return printJSON(view)
			}
			renderDashboard(view)
			return nil
		},
	}
	cmd.Flags().BoolVar(&calendar, "calendar", false, "include tasks grouped by due day")
	cmd.Flags().StringVar(&month, "month", "", "calendar month (YYYY-MM, default current)")
	return cmd
}

func renderDashboard(v dashboardView) {
	title := "My tasks"
	if v.Admin {
		title = "All tasks"
	}
	s := v.Summary
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle(fmt.Sprintf("%s (%s)", title, v.User))
	tw.AppendHeader(table.Row{"Total", "Pending", "In progress", "Completed", "Overdue", "Done %"})
	tw.AppendRow(table.Row{s.Total, s.Status.Pending, s.Status.InProgress, s.Status.Completed, s.Overdue, fmt.Sprintf("%.0f%%", s.Completion)})
	tw.Render()

	pw := table.NewWriter()
	pw.SetOutputMirror(os.Stdout)
	pw.SetTitle("By priority")
	pw.AppendHeader(table.Row{"Low", "Medium", "High"})
	pw.AppendRow(table.Row{s.Priority.Low, s.Priority.Medium, s.Priority.High})
	pw.Render()

	if len(s.Top) > 0 {
		ew := table.NewWriter()
		ew.SetOutputMirror(os.Stdout)
		ew.SetTitle("Employees")
		ew.AppendHeader(table.Row{"Name", "Department", "Tasks"})
		for _, a := range s.Top {
			ew.AppendRow(table.Row{a.Employee.Name, a.Employee.Department, a.Tasks})
		}
		ew.Render()
	}
	if len(v.Overdue) > 0 {
		fmt.Println("Overdue:")
		renderTasks(v.Overdue)
	}
	for _, d := range v.Calendar {
		fmt.Println(d.Date)
		for _, t := range d.Tasks {
			fmt.Printf("  [%s] %s (%s)\n", t.Status, t.Title, t.Priority)
		}
	}
}
