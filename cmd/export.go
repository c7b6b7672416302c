package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"worktime/internal/timeutil"
	"worktime/output"
	"worktime/service"
	"worktime/worklog"
)

var (
	exportFormat   string
	exportMode     string
	exportOutput   string
	exportUser     string
	exportAll      bool
	exportYear     int
	exportMonth    int
	exportTimezone string
	exportLocale   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a month of worklogs to CSV/Excel",
	Long: `Export the time entries of one calendar month (UTC).

Modes:
- raw: one row per time entry
- daily: per user and day (first start, last end, worked hours, break hours)

Without --all only the entries of --user are exported. With --all the month
report of every user is exported, which requires --user to be an administrator.

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export own entries of August 2025 to CSV
  worktime export --user alice@example.com --year 2025 --month 8 --output ./august.csv

  # Export the daily summary of all users to Excel
  worktime export --user ada@example.com --all --mode daily --year 2025 --month 8 --output ./august.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, store, err := loadConfigAndStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		opts := exportOptions{
			userRef: exportUser,
			all:     exportAll,
			year:    exportYear,
			month:   exportMonth,
			mode:    exportMode,
			format:  exportFormat,
			output:  exportOutput,
			loc:     cfg.Location(),
			locale:  cfg.Locale(),
		}
		if exportTimezone != "" {
			if opts.loc, err = timeutil.LoadLocation(exportTimezone); err != nil {
				return err
			}
		}
		if exportLocale != "" {
			if opts.locale, err = timeutil.ParseLocale(exportLocale); err != nil {
				return err
			}
		}
		if opts.year == 0 || opts.month == 0 {
			now := time.Now().In(opts.loc)
			if opts.year == 0 {
				opts.year = now.Year()
			}
			if opts.month == 0 {
				opts.month = int(now.Month())
			}
		}

		rows, err := runExport(ctx, store, opts)
		if err != nil {
			return err
		}
		fmt.Printf("Export completed. Rows: %d, Mode: %s, Format: %s, File: %s\n", rows, opts.mode, opts.resolvedFormat(), opts.output)
		return nil
	},
}

type exportOptions struct {
	userRef string
	all     bool
	year    int
	month   int
	mode    string
	format  string
	output  string
	loc     *time.Location
	locale  timeutil.Locale
}

func (o exportOptions) resolvedFormat() string {
	if strings.TrimSpace(o.format) != "" {
		return o.format
	}
	return detectExportFormat(o.output)
}

// runExport writes the month and returns the number of data rows written.
func runExport(ctx context.Context, store service.Store, opts exportOptions) (int, error) {
	user, err := service.NewUserService(store).Resolve(ctx, opts.userRef)
	if err != nil {
		return 0, err
	}
	caller := worklog.Identity{UserID: user.ID}

	var entries []worklog.EntryWithOwner
	if opts.all {
		admin := service.NewAdminService(store, store, service.RoleAuthorizer{Users: store})
		if entries, err = admin.ListWorklogsForMonth(ctx, caller, opts.year, opts.month); err != nil {
			return 0, err
		}
	} else {
		own, err := service.NewTimeEntryService(store).ListForMonth(ctx, caller, opts.year, opts.month)
		if err != nil {
			return 0, err
		}
		owner := worklog.Owner{ID: user.ID, Name: user.Name, Email: user.Email}
		entries = make([]worklog.EntryWithOwner, 0, len(own))
		for _, entry := range own {
			entries = append(entries, worklog.EntryWithOwner{Entry: entry, Owner: owner})
		}
	}

	var table output.Table
	switch strings.TrimSpace(strings.ToLower(opts.mode)) {
	case "", "raw":
		table = output.EntryTable(entries, opts.loc)
	case "daily":
		table = output.SummaryTable(output.BuildDailySummaries(entries, opts.locale), opts.loc)
	default:
		return 0, fmt.Errorf("unsupported export mode: %s (supported: raw, daily)", opts.mode)
	}

	writer, err := output.WriterForFormat(opts.resolvedFormat())
	if err != nil {
		return 0, err
	}
	if err := writer.Write(opts.output, table); err != nil {
		return 0, err
	}
	return len(table.Rows), nil
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "xlsx", "xlsm":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "raw", "Export mode: raw|daily")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVarP(&exportUser, "user", "u", "", "User id or email whose entries are exported")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every user's entries (requires --user to be an administrator)")
	exportCmd.Flags().IntVar(&exportYear, "year", 0, "Year (default: current)")
	exportCmd.Flags().IntVar(&exportMonth, "month", 0, "Month 1-12 (default: current)")
	exportCmd.Flags().StringVar(&exportTimezone, "timezone", "", "IANA timezone for start/end columns (default: display.timezone)")
	exportCmd.Flags().StringVar(&exportLocale, "locale", "", "Locale of day labels, e.g. de_DE or en_US (default: display.locale)")

	_ = exportCmd.MarkFlagRequired("output")
	_ = exportCmd.MarkFlagRequired("user")
}
