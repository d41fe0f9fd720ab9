package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/mailvet/internal/cli"
	"github.com/Veraticus/mailvet/internal/pattern"
	"github.com/spf13/cobra"
)

type namedPattern struct {
	Name string `json:"name" yaml:"name"`
	Expr string `json:"expr" yaml:"expr"`
}

type patternLibrary struct {
	BankDomains       []string       `json:"bankDomains" yaml:"bankDomains"`
	TrustedDomains    []string       `json:"trustedDomains" yaml:"trustedDomains"`
	SuspiciousDomains []string       `json:"suspiciousDomains" yaml:"suspiciousDomains"`
	Suspicious        []namedPattern `json:"suspiciousPatterns" yaml:"suspiciousPatterns"`
	SQL               []namedPattern `json:"sqlPatterns" yaml:"sqlPatterns"`
	ColumnNames       []namedPattern `json:"columnNamePatterns" yaml:"columnNamePatterns"`
}

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the domain lists and heuristic patterns used by the rules",
		Long: `Print the bank, trusted and disposable domain lists together with the suspicious,
SQL keyword and column-name pattern batteries.

Examples:
  mailvet patterns
  mailvet patterns -o yaml`,
		Args: cobra.NoArgs,
		RunE: runPatterns,
	}

	cmd.Flags().StringP("output", "o", formatText, "Output format (text, json, yaml)")

	return cmd
}

func runPatterns(cmd *cobra.Command, _ []string) error {
	raw, _ := cmd.Flags().GetString("output")
	format, err := validateFormat(raw)
	if err != nil {
		return err
	}

	lib := patternLibrary{
		BankDomains:       pattern.BankDomains(),
		TrustedDomains:    pattern.TrustedDomains(),
		SuspiciousDomains: pattern.SuspiciousDomains(),
		Suspicious:        toNamed(pattern.SuspiciousPatterns()),
		SQL:               toNamed(pattern.SQLPatterns()),
		ColumnNames:       toNamed(pattern.ColumnNamePatterns()),
	}

	return writeOutput(cmd.OutOrStdout(), format, lib, func() string { return renderPatterns(lib) })
}

func toNamed(patterns []pattern.Pattern) []namedPattern {
	out := make([]namedPattern, len(patterns))
	for i, p := range patterns {
		out[i] = namedPattern{Name: p.Name, Expr: p.Expr}
	}
	return out
}

func renderPatterns(lib patternLibrary) string {
	var b strings.Builder
	b.WriteString(cli.FormatTitle("Pattern library"))
	b.WriteString("\n")

	domains := func(title string, list []string) {
		b.WriteString(cli.RenderBox(fmt.Sprintf("%s (%d)", title, len(list)), strings.Join(list, "\n")))
		b.WriteString("\n")
	}
	patterns := func(title string, list []namedPattern) {
		lines := make([]string, len(list))
		for i, p := range list {
			lines[i] = fmt.Sprintf("%-22s %s", p.Name, p.Expr)
		}
		b.WriteString(cli.RenderBox(fmt.Sprintf("%s (%d)", title, len(list)), strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	domains(cli.BankIcon+" Bank domains", lib.BankDomains)
	domains("Trusted domains", lib.TrustedDomains)
	domains("Disposable domains", lib.SuspiciousDomains)
	patterns("Suspicious patterns", lib.Suspicious)
	patterns("SQL keyword patterns", lib.SQL)
	patterns("Column name patterns", lib.ColumnNames)

	return strings.TrimRight(b.String(), "\n")
}
