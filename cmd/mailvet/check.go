package main

import (
	"strings"

	"github.com/Veraticus/mailvet/internal/classification"
	"github.com/Veraticus/mailvet/internal/cli"
	"github.com/Veraticus/mailvet/internal/model"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <address>...",
		Short: "Classify one or more email addresses",
		Long: `Run every rule stage against the given addresses and print the verdicts.

Examples:
  mailvet check user@sbi.co.in
  mailvet check a@b.com c@d.in -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().StringP("output", "o", formatText, "Output format (text, json, yaml)")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetString("output")
	format, err := validateFormat(raw)
	if err != nil {
		return err
	}

	classifier := classification.NewClassifier()
	verdicts := make([]model.Verdict, len(args))
	for i, address := range args {
		verdicts[i] = classifier.Classify(address)
	}

	var payload any = verdicts
	if len(verdicts) == 1 {
		payload = verdicts[0]
	}

	return writeOutput(cmd.OutOrStdout(), format, payload, func() string {
		boxes := make([]string, len(verdicts))
		for i, v := range verdicts {
			boxes[i] = cli.RenderVerdict(v)
		}
		return strings.Join(boxes, "\n")
	})
}
