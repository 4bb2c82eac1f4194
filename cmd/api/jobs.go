package main

import (
	"fmt"

	"github.com/cmlabs-hris/office-backend-go/internal/pkg/cron"
	attendanceService "github.com/cmlabs-hris/office-backend-go/internal/service/attendance"
	"github.com/spf13/cobra"
)

func markAbsentCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "mark-absent",
		Short: "Create absent records for active employees without one",
		Long:  "Runs the nightly absent sweep once. Without --date it covers yesterday in the organization's zone.",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStores(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.close()

			clk := cfg.Clock()
			svc := attendanceService.NewAttendanceService(st.attendance, st.directory, nil, clk, log)

			if date == "" {
				return cron.NewAttendanceJobs(svc, clk, log).MarkAbsentEmployees(cmd.Context())
			}

			day, err := clk.ParseDay(date)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", date, err)
			}
			created, err := svc.MarkAbsentEmployees(cmd.Context(), day)
			if err != nil {
				return err
			}
			log.Info("absent records created", "day", date, "created", created)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "organizational day to sweep (YYYY-MM-DD)")
	return cmd
}
