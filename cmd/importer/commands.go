package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/unionhall/leavehub/modules"
	importerservices "github.com/unionhall/leavehub/modules/importer/services"
	"github.com/unionhall/leavehub/pkg/application"
	"github.com/unionhall/leavehub/pkg/composables"
	"github.com/unionhall/leavehub/pkg/configuration"
	"github.com/unionhall/leavehub/pkg/eventbus"
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "importer",
		Short:        "Import leave calendars into the hall database",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("admin", "importer-cli", "name recorded as the importing admin")
	root.AddCommand(previewCmd(), commitCmd(), auditCmd(), migrateCmd())
	return root
}

// boot wires the pool, event bus and modules, and hangs them on a context
// the services expect.
func boot(cmd *cobra.Command) (context.Context, application.Application, func(), error) {
	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, nil, nil, err
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	adminName, _ := cmd.Flags().GetString("admin")
	runCtx := composables.WithPool(context.Background(), pool)
	runCtx = composables.WithAdmin(runCtx, &composables.Admin{ID: uuid.New(), Name: adminName})

	cleanup := func() {
		pool.Close()
		conf.Unload()
	}
	return runCtx, app, cleanup, nil
}

func importService(app application.Application) *importerservices.ImportService {
	return app.Service(importerservices.ImportService{}).(*importerservices.ImportService)
}

func reportService(app application.Application) *importerservices.ReportService {
	return app.Service(importerservices.ReportService{}).(*importerservices.ReportService)
}

func previewCmd() *cobra.Command {
	var calendarID, reportPath string

	cmd := &cobra.Command{
		Use:   "preview <ical-file>",
		Short: "Parse a calendar export and print the import preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, app, cleanup, err := boot(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			calID, err := uuid.Parse(calendarID)
			if err != nil {
				return fmt.Errorf("invalid calendar id: %w", err)
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			session, err := importService(app).StartSession(ctx, calID, string(content))
			if err != nil {
				return err
			}

			p := session.Preview
			fmt.Printf("session %s: %d items, %d unmatched, %d conflicts\n",
				session.ID, len(p.Items), len(p.UnmatchedItems()), len(p.Reconciliation.Conflicts))
			for _, w := range session.Warnings {
				fmt.Printf("  warning: %s\n", w)
			}
			for _, sk := range session.Skipped {
				fmt.Printf("  skipped: %q (%s)\n", sk.Summary, sk.Reason)
			}
			for _, a := range p.OverAllotment.Analyses {
				if a.IsOverAllotted() {
					fmt.Printf("  over allotment: %s by %d (allotment %d)\n",
						a.RequestDate.Format("2006-01-02"), a.OverBy(), a.Allotment)
				}
			}

			if reportPath != "" {
				data, err := reportService(app).BuildUnmatchedReport(p.Items)
				if err != nil {
					return err
				}
				if err := os.WriteFile(reportPath, data, 0o644); err != nil {
					return err
				}
				fmt.Printf("unmatched report written to %s\n", reportPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&calendarID, "calendar", "", "target calendar id (required)")
	cmd.Flags().StringVar(&reportPath, "report", "", "write an unmatched-items workbook to this path")
	_ = cmd.MarkFlagRequired("calendar")
	return cmd
}

func commitCmd() *cobra.Command {
	var calendarID, reportPath string

	cmd := &cobra.Command{
		Use:   "commit <ical-file>",
		Short: "Import a calendar export end to end, skipping anything unmatched",
		Long: "Runs the full pipeline non-interactively: items that match a roster " +
			"member cleanly are committed, everything else is skipped and reported.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, app, cleanup, err := boot(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			calID, err := uuid.Parse(calendarID)
			if err != nil {
				return fmt.Errorf("invalid calendar id: %w", err)
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			svc := importService(app)
			session, err := svc.StartSession(ctx, calID, string(content))
			if err != nil {
				return err
			}

			// Non-interactive run: skip every unresolved item, keep every
			// conflict, acknowledge the capacity picture.
			for _, it := range session.Preview.UnmatchedItems() {
				if _, err := svc.SkipItem(session.ID, it.ID); err != nil {
					return err
				}
			}
			if _, err := svc.Advance(session.ID); err != nil {
				return err
			}
			current, err := svc.Session(session.ID)
			if err != nil {
				return err
			}
			for _, c := range current.Preview.Reconciliation.Conflicts {
				if _, err := svc.ResolveConflict(session.ID, c.DBRequest.ID(), "keep", ""); err != nil {
					return err
				}
			}
			if _, err := svc.ProceedToFinalReview(session.ID); err != nil {
				return err
			}
			if _, err := svc.ConfirmFinalReview(session.ID); err != nil {
				return err
			}

			current, err = svc.Session(session.ID)
			if err != nil {
				return err
			}
			selected := selectableIndices(current)
			if dupes := countDuplicates(current); dupes > 0 {
				fmt.Printf("%d potential duplicates excluded; review them in the preview output\n", dupes)
			}
			result, err := svc.Commit(ctx, session.ID, selected)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d of %d selected (%d failed)\n",
				result.InsertedCount, len(selected), result.FailedCount)
			for _, msg := range result.ErrorMessages {
				fmt.Printf("  %s\n", msg)
			}

			if reportPath != "" {
				data, err := reportService(app).BuildCommitReport(current.Preview.Items, selected, result)
				if err != nil {
					return err
				}
				if err := os.WriteFile(reportPath, data, 0o644); err != nil {
					return err
				}
				fmt.Printf("commit report written to %s\n", reportPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&calendarID, "calendar", "", "target calendar id (required)")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a commit workbook to this path")
	_ = cmd.MarkFlagRequired("calendar")
	return cmd
}

func auditCmd() *cobra.Command {
	var calendarID, dateStr, reportPath string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check waitlist positions for gaps and duplicates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, app, cleanup, err := boot(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			calID, err := uuid.Parse(calendarID)
			if err != nil {
				return fmt.Errorf("invalid calendar id: %w", err)
			}
			date, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}

			issues, err := importService(app).AuditPositions(ctx, calID, date)
			if err != nil {
				return err
			}
			if len(issues) == 0 {
				fmt.Printf("waitlist for %s is consistent\n", dateStr)
			}
			for _, issue := range issues {
				fmt.Printf("position %d: %s\n", issue.Position, issue.Kind)
			}

			if reportPath != "" {
				data, err := reportService(app).BuildPositionAudit(ctx, importService(app), calID, date)
				if err != nil {
					return err
				}
				if err := os.WriteFile(reportPath, data, 0o644); err != nil {
					return err
				}
				fmt.Printf("audit report written to %s\n", reportPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&calendarID, "calendar", "", "target calendar id (required)")
	cmd.Flags().StringVar(&dateStr, "date", "", "request date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&reportPath, "report", "", "write an audit workbook to this path")
	_ = cmd.MarkFlagRequired("calendar")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply module schemas to the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, app, cleanup, err := boot(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := context.Background()
			for _, schemaFS := range app.Migrations().Schemas() {
				entries, err := schemaFS.ReadDir("infrastructure/persistence/schema")
				if err != nil {
					return err
				}
				for _, entry := range entries {
					sql, err := schemaFS.ReadFile("infrastructure/persistence/schema/" + entry.Name())
					if err != nil {
						return err
					}
					if _, err := app.DB().Exec(ctx, string(sql)); err != nil {
						return fmt.Errorf("applying %s: %w", entry.Name(), err)
					}
					fmt.Printf("applied %s\n", entry.Name())
				}
			}
			return nil
		},
	}
}

// selectableIndices picks every item that is matched or was assigned a
// member during the unmatched stage, preserving original item order. Items
// flagged as potential duplicates are excluded; re-importing them is an
// interactive decision, not one this command should make.
func selectableIndices(session *importerservices.ImportSession) []int {
	p := session.Preview
	out := make([]int, 0, len(p.Items))
	for i, it := range p.Items {
		if _, skipped := p.Unmatched.Skipped[it.ID]; skipped {
			continue
		}
		if it.IsPotentialDuplicate {
			continue
		}
		if _, assigned := p.Unmatched.Assignments[it.ID]; assigned {
			out = append(out, i)
			continue
		}
		if it.Match.Member != nil {
			out = append(out, i)
		}
	}
	return out
}

func countDuplicates(session *importerservices.ImportSession) int {
	n := 0
	for _, it := range session.Preview.Items {
		if it.IsPotentialDuplicate {
			n++
		}
	}
	return n
}
