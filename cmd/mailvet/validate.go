package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/mailvet/internal/cli"
	"github.com/Veraticus/mailvet/internal/common"
	"github.com/Veraticus/mailvet/internal/config"
	"github.com/Veraticus/mailvet/internal/detect"
	"github.com/Veraticus/mailvet/internal/engine"
	"github.com/Veraticus/mailvet/internal/model"
	"github.com/Veraticus/mailvet/internal/report"
	"github.com/Veraticus/mailvet/internal/table"
	"github.com/Veraticus/mailvet/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type validateReport struct {
	Column   string                `json:"column" yaml:"column"`
	Complete bool                  `json:"complete" yaml:"complete"`
	Summary  report.Summary        `json:"summary" yaml:"summary"`
	Exports  []report.ExportResult `json:"exports,omitempty" yaml:"exports,omitempty"`
	Verdicts []model.Verdict       `json:"verdicts" yaml:"verdicts"`
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file.csv>",
		Short: "Classify every address in the email column of a CSV file",
		Long: `Detect the email column of a CSV file (or use --column), classify every non-blank
address in batches, print a summary and optionally export filtered CSV files.

Export filters: all, valid, invalid, banking, high-risk, report.

Examples:
  mailvet validate customers.csv
  mailvet validate customers.csv --column "Work Email" --export valid,invalid
  mailvet validate customers.csv --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}

	cmd.Flags().String("column", "", "Column holding the addresses (default: detected)")
	cmd.Flags().Int("batch-size", 10, "Addresses classified per batch")
	cmd.Flags().String("export-dir", ".", "Directory for exported CSV files")
	cmd.Flags().StringSlice("export", nil, "Export filters to write (comma separated)")
	cmd.Flags().BoolP("interactive", "i", false, "Pick the column interactively")
	cmd.Flags().StringP("output", "o", formatText, "Output format (text, json, yaml)")

	_ = viper.BindPFlag(config.KeyBatchSize, cmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag(config.KeyExportDir, cmd.Flags().Lookup("export-dir"))

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	raw, _ := cmd.Flags().GetString("output")
	format, err := validateFormat(raw)
	if err != nil {
		return err
	}

	filters, err := parseFilters(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	tbl, result, err := loadAndDetect(args[0], cfg)
	if err != nil {
		return err
	}

	column, err := chooseColumn(ctx, cmd, result)
	if err != nil {
		return err
	}

	extraction, err := extractColumn(tbl.RecordSet(), column)
	if err != nil {
		return err
	}
	if extraction.Skipped > 0 {
		slog.Info("Skipped blank values", "column", column, "count", extraction.Skipped)
	}

	addresses := extraction.Addresses()
	errOut := cmd.ErrOrStderr()

	handler := cli.NewInterruptHandler(errOut)
	runCtx := handler.HandleInterrupts(ctx, true)
	defer handler.Stop()

	progress := cli.NewProgressReporter(errOut, len(addresses), cli.MailIcon+" Validating")
	verdicts, runErr := engine.NewRunner(nil).Run(runCtx, addresses, engine.Options{
		BatchSize: cfg.BatchSize,
		Pause:     cfg.BatchPause,
	}, progress.Update)

	complete := runErr == nil
	if complete {
		progress.Finish()
	} else {
		progress.Stop()
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("validation failed: %w", runErr)
	}

	rep := validateReport{
		Column:   column,
		Complete: complete,
		Summary:  report.NewSummary(verdicts),
		Verdicts: verdicts,
	}

	if len(filters) > 0 && len(verdicts) > 0 {
		exporter := report.NewExporter(cfg.ExportDir, cfg.ExportPrefix)
		rep.Exports, err = exporter.ExportAll(verdicts, filters)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
	}

	if err := writeOutput(cmd.OutOrStdout(), format, rep, func() string { return renderValidation(rep) }); err != nil {
		return err
	}

	if !complete {
		return common.NewUserError(
			fmt.Sprintf("Validation stopped after %d of %d addresses", len(verdicts), len(addresses)),
			runErr)
	}
	return nil
}

func parseFilters(cmd *cobra.Command) ([]report.Filter, error) {
	names, _ := cmd.Flags().GetStringSlice("export")
	filters := make([]report.Filter, 0, len(names))
	seen := make(map[report.Filter]bool, len(names))
	for _, name := range names {
		f, err := report.ParseFilter(strings.TrimSpace(name))
		if err != nil {
			return nil, common.NewUserError("Unknown export filter", err)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		filters = append(filters, f)
	}
	return filters, nil
}

// chooseColumn prefers the --column flag, then the picker when interactive, then the detected
// primary column.
func chooseColumn(ctx context.Context, cmd *cobra.Command, result detect.Result) (string, error) {
	if column, _ := cmd.Flags().GetString("column"); column != "" {
		return column, nil
	}

	interactive, _ := cmd.Flags().GetBool("interactive")
	if interactive {
		column, err := tui.PickColumn(ctx, result, tui.PickOptions{
			Input:  cmd.InOrStdin(),
			Output: cmd.ErrOrStderr(),
			Plain:  os.Getenv("NO_COLOR") != "",
		})
		if err != nil {
			return "", common.NewUserError("No column selected", err)
		}
		return column, nil
	}

	if primary := result.Structure.PrimaryEmailColumn; primary != nil {
		slog.Info("Using detected email column", "column", *primary)
		return *primary, nil
	}

	return "", common.NewUserError(
		"No email column detected; pass --column or --interactive",
		fmt.Errorf("%w: no column qualified as an email column", common.ErrInvalidSelection))
}

func extractColumn(set model.RecordSet, column string) (table.Extraction, error) {
	extraction, err := table.Extract(set, column)
	if err != nil {
		var selErr *common.InvalidSelectionError
		if errors.As(err, &selErr) {
			return extraction, common.NewUserError(
				fmt.Sprintf("Column %q not found (available: %s)", selErr.Column, strings.Join(selErr.Available, ", ")),
				err)
		}
		return extraction, common.NewUserError(fmt.Sprintf("Column %q has no addresses", column), err)
	}
	return extraction, nil
}

func renderValidation(rep validateReport) string {
	var b strings.Builder
	b.WriteString(cli.FormatTitle("Column: " + rep.Column))
	b.WriteString("\n")
	b.WriteString(cli.RenderSummary(rep.Summary))
	if !rep.Complete {
		b.WriteString("\n")
		b.WriteString(cli.FormatWarning("Partial results: validation was interrupted"))
	}
	for _, exp := range rep.Exports {
		b.WriteString("\n")
		b.WriteString(cli.FormatSuccess(fmt.Sprintf("%s Exported %d %s rows to %s", cli.FolderIcon, exp.Count, exp.Filter, exp.Path)))
	}
	return b.String()
}
