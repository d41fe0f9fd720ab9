package main

import (
	"fmt"

	"github.com/Veraticus/mailvet/internal/cli"
	"github.com/Veraticus/mailvet/internal/config"
	"github.com/Veraticus/mailvet/internal/detect"
	"github.com/Veraticus/mailvet/internal/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type scanReport struct {
	File       string               `json:"file" yaml:"file"`
	Size       string               `json:"size" yaml:"size"`
	Detection  detect.Result        `json:"detection" yaml:"detection"`
	Issues     []string             `json:"issues" yaml:"issues"`
	Statistics table.FileStatistics `json:"statistics" yaml:"statistics"`
}

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <file.csv>",
		Short: "Detect which column of a CSV file holds email addresses",
		Long: `Parse a CSV file, score every column for email likelihood and report the detected
structure, file statistics and any structural problems. Nothing is classified.`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().StringP("output", "o", formatText, "Output format (text, json, yaml)")
	cmd.Flags().Int("sample-size", detect.DefaultSampleSize, "Rows sampled per column")
	_ = viper.BindPFlag(config.KeyDetectSample, cmd.Flags().Lookup("sample-size"))

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetString("output")
	format, err := validateFormat(raw)
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

	rep := scanReport{
		File:       tbl.Name,
		Size:       table.FormatFileSize(tbl.Size),
		Detection:  result,
		Statistics: table.Statistics(tbl, result),
		Issues:     table.ValidateStructure(tbl),
	}

	return writeOutput(cmd.OutOrStdout(), format, rep, func() string {
		header := cli.FormatTitle(fmt.Sprintf("%s (%s)", rep.File, rep.Size))
		return header + "\n" + cli.RenderDetection(result, rep.Statistics, rep.Issues)
	})
}

// loadAndDetect parses path and runs column detection with the configured limits.
func loadAndDetect(path string, cfg *config.Config) (*table.Table, detect.Result, error) {
	tbl, err := table.NewParser(table.ParseOptions{MaxFileSize: cfg.MaxFileSize}).ParseFile(config.ExpandPath(path))
	if err != nil {
		return nil, detect.Result{}, fmt.Errorf("failed to load %s: %w", path, err)
	}

	result, err := detect.NewDetector(detect.Options{SampleSize: cfg.SampleSize}).Detect(tbl.RecordSet())
	if err != nil {
		return nil, detect.Result{}, fmt.Errorf("failed to detect columns: %w", err)
	}

	return tbl, result, nil
}
