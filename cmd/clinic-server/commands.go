package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinic/backoffice/internal/domain/period"
	"github.com/clinic/backoffice/internal/platform/db"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations to a clinic schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			clinic, _ := cmd.Flags().GetString("clinic")
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			schema := db.SchemaName(clinic)
			fmt.Fprintf(cmd.OutOrStdout(), "Running migrations on schema: %s\n", schema)
			count, err := db.NewMigrator(pool, dir).Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("clinic", "default", "Clinic identifier")
	upCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status of a clinic schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			clinic, _ := cmd.Flags().GetString("clinic")
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			schema := db.SchemaName(clinic)
			statuses, err := db.NewMigrator(pool, dir).Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printMigrationStatus(cmd.OutOrStdout(), schema, statuses)
			return nil
		},
	}
	statusCmd.Flags().String("clinic", "default", "Clinic identifier")
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func printMigrationStatus(w io.Writer, schema string, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "Migration status for schema: %s\n", schema)
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func clinicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clinic",
		Short: "Manage clinics",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create and migrate the schema of a new clinic",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Creating clinic schema: %s\n", db.SchemaName(name))
			if err := db.CreateClinicSchema(ctx, pool, name, cfg.MigrationsDir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Clinic created successfully.")
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Clinic identifier (letters, digits and underscores)")

	cmd.AddCommand(createCmd)
	return cmd
}

// reportCmd prints the same documents the API serves, for cron jobs and
// support sessions that have database access but no token.
func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print clinic reports as JSON",
	}
	cmd.PersistentFlags().String("clinic", "default", "Clinic identifier")
	cmd.PersistentFlags().String("date", "", "Reference date YYYY-MM-DD (default today in CLINIC_TIMEZONE)")

	metrics := &cobra.Command{
		Use:   "metrics",
		Short: "Dashboard metrics as of --date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, func(ctx context.Context, a *app, now time.Time) (interface{}, error) {
				return a.dashboard.Metrics(ctx, now)
			})
		},
	}

	cashflow := &cobra.Command{
		Use:   "cashflow",
		Short: "Cash-flow statement (DFC) of a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, func(ctx context.Context, a *app, now time.Time) (interface{}, error) {
				r, err := reportRange(cmd, now)
				if err != nil {
					return nil, err
				}
				st, err := a.financial.CashFlow(ctx, r)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"period": period.NewResponse(r), "statement": st}, nil
			})
		},
	}

	dre := &cobra.Command{
		Use:   "dre",
		Short: "Income statement (DRE) of a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, func(ctx context.Context, a *app, now time.Time) (interface{}, error) {
				r, err := reportRange(cmd, now)
				if err != nil {
					return nil, err
				}
				st, err := a.financial.IncomeStatement(ctx, r)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"period": period.NewResponse(r), "statement": st}, nil
			})
		},
	}
	for _, c := range []*cobra.Command{cashflow, dre} {
		c.Flags().String("period", string(period.TypeMonth), "Period type: day, week, month or custom")
		c.Flags().String("end", "", "End date YYYY-MM-DD of a custom period")
	}

	cmd.AddCommand(metrics, cashflow, dre)
	return cmd
}

type reportFunc func(ctx context.Context, a *app, now time.Time) (interface{}, error)

func runReport(cmd *cobra.Command, fn reportFunc) error {
	clinic, _ := cmd.Flags().GetString("clinic")
	date, _ := cmd.Flags().GetString("date")

	ctx := context.Background()
	cfg, pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	now, err := reportClock(date, time.Now(), loc)
	if err != nil {
		return err
	}

	ctx, release, err := db.AcquireClinic(ctx, pool, clinic)
	if err != nil {
		return err
	}
	defer release()

	logger := newLogger(cfg.Env, cfg.LogLevel, os.Stderr)
	out, err := fn(ctx, buildApp(pool, cfg, loc, logger), now)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

// reportClock returns the instant a report is computed at: now in loc, or
// noon of date so that the day does not shift across timezones.
func reportClock(date string, now time.Time, loc *time.Location) (time.Time, error) {
	if date == "" {
		return now.In(loc), nil
	}
	d, err := period.ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc), nil
}

func reportRange(cmd *cobra.Command, now time.Time) (period.Range, error) {
	t, _ := cmd.Flags().GetString("period")
	end, _ := cmd.Flags().GetString("end")
	return period.Parse(period.Type(t), period.Date(now).Format(period.DateLayout), end)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
