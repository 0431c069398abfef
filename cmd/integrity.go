package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"upload-manager/core/reconcile"
	"upload-manager/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag    bool
	purgeFlag  bool
	dryRunFlag bool
	yesConfirm bool
)

// integrityCmd runs every check and the uploaded files reconciliation.
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check storage, schema and uploaded files integrity",
	Long: `Checks the media bucket, the database schema, and reconciles uploaded file records
with the stored objects.

Examples:
  # Report only
  integrity

  # Purge records without objects and objects without records (interactive confirmation)
  integrity --purge

  # Purge with auto-confirm (non-interactive)
  integrity --purge --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd.Context(), true, true, true)
	},
}

var integrityStorageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check (and with --fix create) the media bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd.Context(), true, false, false)
	},
}

var integritySchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the database schema against the models",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd.Context(), false, true, false)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(integrityStorageCmd, integritySchemaCmd)

	integrityCmd.Flags().BoolVar(&purgeFlag, "purge", false, "Delete records without objects and objects without records")
	integrityCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Force dry-run (no mutations even with --yes)")
	integrityCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	integrityStorageCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket when missing")
}

func runIntegrity(ctx context.Context, runStorage, runSchema, runReconcile bool) error {
	cfg, logg, err := bootstrap()
	if err != nil {
		return err
	}
	defer logg.Sync()

	db, err := openDatabase(cfg, logg)
	if err != nil {
		return err
	}
	svc := integrity.NewService(db, newMedia(cfg, logg, nil), logg)

	if runStorage {
		logg.Info("Checking media bucket...")
		report, err := svc.CheckStorage(ctx)
		if err != nil {
			return fmt.Errorf("storage check failed: %w", err)
		}

		switch {
		case report.Exists:
			logg.Info("Media bucket exists.", zap.String("bucket", report.Bucket))
		case fixFlag:
			if err := svc.FixStorage(ctx); err != nil {
				return fmt.Errorf("failed to create bucket: %w", err)
			}
			logg.Info("Media bucket created.", zap.String("bucket", report.Bucket))
		default:
			logg.Warn("Media bucket missing. Run 'integrity storage --fix' to create it.", zap.String("bucket", report.Bucket))
		}
	}

	if runSchema {
		logg.Info("Checking database schema...")
		report, err := svc.CheckSchema()
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}

		if report.Matched {
			logg.Info("Database schema matches the models.")
		} else {
			logg.Warn("Database schema mismatches found")
			for table, tblReport := range report.Tables {
				if tblReport.Status == "ok" {
					continue
				}
				if len(tblReport.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tblReport.MissingColumns))
				}
				if len(tblReport.TypeMismatches) > 0 {
					logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tblReport.TypeMismatches))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
	}

	if runReconcile {
		return runReconcileStep(ctx, svc, logg)
	}
	return nil
}

func runReconcileStep(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
	opts := reconcile.Options{DoPurge: purgeFlag, DryRun: dryRunFlag}

	l.Info("Planning reconciliation...")
	plan, _, err := svc.Reconcile(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to plan reconciliation: %w", err)
	}
	printReconcileReport(l, plan)

	if !purgeFlag {
		l.Info("No actions requested. Use --purge to delete mismatched records and objects.")
		return nil
	}
	if dryRunFlag {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if len(plan.Actions) == 0 {
		l.Info("No actions required.")
		return nil
	}

	if !confirmDestructiveAction(os.Stdin, os.Stdout, yesConfirm) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	opts.Confirmed = true
	l.Info("Applying actions...")
	executed, err := svc.Apply(ctx, plan, opts)
	if err != nil {
		return fmt.Errorf("failed to apply plan: %w", err)
	}
	l.Info("Successfully executed actions", zap.Int("count", executed))
	return nil
}

// printReconcileReport prints a reconciliation report using logger.
func printReconcileReport(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary

	l.Info("Reconciliation report",
		zap.Int("total_items", s.TotalItems),
		zap.Int("missing_storage", s.MissingStorage),
		zap.Int("missing_db", s.MissingDB),
	)

	if len(plan.Actions) == 0 {
		return
	}
	l.Info("Planned actions", zap.Int("purge_actions", s.PurgeActions))

	maxShow := min(5, len(plan.Actions))
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// confirmDestructiveAction prompts for confirmation unless autoConfirm is set.
func confirmDestructiveAction(in io.Reader, out io.Writer, autoConfirm bool) bool {
	if autoConfirm {
		fmt.Fprintln(out, "\nAuto-confirmed via --yes flag")
		return true
	}

	fmt.Fprint(out, "\nType 'yes' to confirm destructive actions: ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
