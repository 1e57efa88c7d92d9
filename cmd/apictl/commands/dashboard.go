package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewDashboardCommand creates the dashboard command.
func NewDashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard summary",
		Long:  "Display headline numbers and recent activity from the dashboard backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadServices(cmd)
			if err != nil {
				return err
			}

			dashboard, err := svc.Dashboard()
			if err != nil {
				return err
			}

			summary, err := dashboard.Summary(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Total Users", strconv.Itoa(summary.TotalUsers)},
				{"Active Users", strconv.Itoa(summary.ActiveUsers)},
				{"New Signups", strconv.Itoa(summary.NewSignups)},
				{"Revenue", strconv.FormatFloat(summary.Revenue, 'f', 2, 64)},
			}

			for _, activity := range summary.RecentActivity {
				rows = append(rows, []string{"Activity", fmt.Sprintf("[%s] %s", activity.Type, activity.Message)})
			}

			return render(cmd.OutOrStdout(), summary, propertyTable(rows))
		},
	}
}
