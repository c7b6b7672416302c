package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"worktime/importer"
	"worktime/internal/logger"
	"worktime/internal/timeutil"
	"worktime/service"
	"worktime/worklog"
)

var (
	importInputs   []string
	importFormat   string
	importUser     string
	importTimezone string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import CSV/Excel rows as time entries of one user",
	Long: `Read source files and store each row as a time entry owned by --user.

Rows need a date, a start time and either an end time or a decimal hours
column, plus a description. English and German headers are recognised
(date/datum, start/von, end/bis, hours/stunden, description/beschreibung).
Wall-clock times are interpreted in --timezone and stored in UTC.

Rows the entry rules reject (empty description, end not after start) are
reported and skipped; the remaining rows are imported.`,
	Example: `
  # Import a CSV export recorded in Berlin time
  worktime import -i ./august.csv --user alice@example.com --timezone Europe/Berlin

  # Import several Excel files
  worktime import -i ./week31.xlsx -i ./week32.xlsx --user alice@example.com
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, store, err := loadConfigAndStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		loc := cfg.Location()
		if importTimezone != "" {
			if loc, err = timeutil.LoadLocation(importTimezone); err != nil {
				return err
			}
		}

		user, err := service.NewUserService(store).Resolve(ctx, importUser)
		if err != nil {
			return err
		}

		result, err := importer.Run(importInputs, importFormat)
		if err != nil {
			return err
		}

		summary, err := persistImport(ctx, service.NewTimeEntryService(store), user, result, loc)
		if err != nil {
			return err
		}
		for _, failure := range summary.Failures {
			fmt.Printf("Skipped %s\n", failure)
		}
		fmt.Printf("Import completed. Files: %d, Rows read: %d, Rows mapped: %d, Rows skipped: %d, Rows persisted: %d, Rows rejected: %d\n",
			result.FilesProcessed,
			result.RowsRead,
			result.RowsMapped,
			result.RowsSkipped,
			summary.Persisted,
			len(summary.Failures),
		)
		return nil
	},
}

type importSummary struct {
	Persisted int
	Failures  []string
}

// persistImport creates one entry per mapped row. Rows rejected by entry
// validation are collected; any other failure stops the import.
func persistImport(ctx context.Context, entries *service.TimeEntryService, user worklog.User, result *importer.Result, loc *time.Location) (importSummary, error) {
	var summary importSummary
	owner := worklog.Identity{UserID: user.ID}
	for _, row := range result.Rows {
		input := row.Input
		input.Location = loc
		if _, err := entries.Create(ctx, owner, input); err != nil {
			var svcErr *service.Error
			if errors.As(err, &svcErr) && (svcErr.Code == service.CodeValidation || svcErr.Code == service.CodeInvalidFormat) {
				summary.Failures = append(summary.Failures, fmt.Sprintf("%s row %d: %s", row.Source, row.RowNumber, svcErr.Message))
				continue
			}
			return summary, fmt.Errorf("%s row %d: %w", row.Source, row.RowNumber, err)
		}
		summary.Persisted++
	}
	logger.Info("import persisted", zap.String("user", user.ID), zap.Int("persisted", summary.Persisted), zap.Int("rejected", len(summary.Failures)))
	return summary, nil
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input file path (repeatable)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: csv|excel (optional, inferred from extension when omitted)")
	importCmd.Flags().StringVarP(&importUser, "user", "u", "", "Owner of the imported entries (id or email)")
	importCmd.Flags().StringVar(&importTimezone, "timezone", "", "IANA timezone of the wall-clock times (default: display.timezone)")

	_ = importCmd.MarkFlagRequired("input")
	_ = importCmd.MarkFlagRequired("user")
}
