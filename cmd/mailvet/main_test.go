package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/mailvet/internal/common"
	"github.com/Veraticus/mailvet/internal/model"
	"github.com/Veraticus/mailvet/internal/pattern"
	"github.com/Veraticus/mailvet/internal/report"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customersCSV = "Name,Work Email,Notes\n" +
	"Asha,user@sbi.co.in,vip\n" +
	"Ravi,jane@gmail.com,\n" +
	"Meera,bad-email,check later\n"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--log-level", "error"))

	err := cmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCheckCmd(t *testing.T) {
	tests := []struct {
		check func(t *testing.T, output string)
		name  string
		args  []string
	}{
		{
			name: "single address as json object",
			args: []string{"check", "user@sbi.co.in", "-o", "json"},
			check: func(t *testing.T, output string) {
				t.Helper()
				var v model.Verdict
				require.NoError(t, json.Unmarshal([]byte(output), &v))
				assert.Equal(t, "user@sbi.co.in", v.Address)
				assert.True(t, v.IsValid)
				assert.Equal(t, model.BankingYes, v.BankingCompliance)
			},
		},
		{
			name: "several addresses as json array",
			args: []string{"check", "user@sbi.co.in", "bad-email", "-o", "json"},
			check: func(t *testing.T, output string) {
				t.Helper()
				var vs []model.Verdict
				require.NoError(t, json.Unmarshal([]byte(output), &vs))
				require.Len(t, vs, 2)
				assert.Equal(t, "bad-email", vs[1].Address)
				assert.False(t, vs[1].IsValid)
			},
		},
		{
			name: "yaml",
			args: []string{"check", "user@sbi.co.in", "--output", "yaml"},
			check: func(t *testing.T, output string) {
				t.Helper()
				assert.Contains(t, output, "address: user@sbi.co.in")
				assert.Contains(t, output, "isValid: true")
			},
		},
		{
			name: "text",
			args: []string{"check", "jane@gmail.com"},
			check: func(t *testing.T, output string) {
				t.Helper()
				assert.Contains(t, output, "jane@gmail.com")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, tt.args...)
			require.NoError(t, err)
			tt.check(t, output)
		})
	}
}

func TestCheckCmd_Errors(t *testing.T) {
	_, err := execute(t, "check")
	require.Error(t, err)

	_, err = execute(t, "check", "a@b.com", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestScanCmd(t *testing.T) {
	output, err := execute(t, "scan", writeCSV(t, customersCSV), "-o", "json")
	require.NoError(t, err)

	var rep struct {
		Detection struct {
			Structure model.TableStructure `json:"structure"`
		} `json:"detection"`
		File       string `json:"file"`
		Statistics struct {
			TotalRows    int `json:"totalRows"`
			TotalColumns int `json:"totalColumns"`
		} `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &rep))

	assert.Equal(t, "customers.csv", rep.File)
	require.NotNil(t, rep.Detection.Structure.PrimaryEmailColumn)
	assert.Equal(t, "Work Email", *rep.Detection.Structure.PrimaryEmailColumn)
	assert.Equal(t, 3, rep.Statistics.TotalRows)
	assert.Equal(t, 3, rep.Statistics.TotalColumns)
}

func TestScanCmd_Errors(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		path    func(t *testing.T) string
	}{
		{
			name:    "not a csv",
			wantErr: common.ErrInvalidFile,
			path: func(t *testing.T) string {
				t.Helper()
				path := filepath.Join(t.TempDir(), "list.txt")
				require.NoError(t, os.WriteFile(path, []byte("email\na@b.com\n"), 0o600))
				return path
			},
		},
		{
			name:    "header only",
			wantErr: common.ErrNoData,
			path: func(t *testing.T) string {
				t.Helper()
				return writeCSV(t, "email\n")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "scan", tt.path(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateCmd(t *testing.T) {
	exportDir := t.TempDir()
	output, err := execute(t, "validate", writeCSV(t, customersCSV),
		"--export", "all,invalid", "--export-dir", exportDir, "-o", "json")
	require.NoError(t, err)

	var rep validateReport
	require.NoError(t, json.Unmarshal([]byte(output), &rep))

	assert.Equal(t, "Work Email", rep.Column)
	assert.True(t, rep.Complete)
	assert.Equal(t, 3, rep.Summary.Statistics.Total)
	require.Len(t, rep.Verdicts, 3)
	assert.Equal(t, "user@sbi.co.in", rep.Verdicts[0].Address)
	assert.Equal(t, "bad-email", rep.Verdicts[2].Address)

	require.Len(t, rep.Exports, 2)
	for _, exp := range rep.Exports {
		assert.Equal(t, exportDir, filepath.Dir(exp.Path))
		assert.FileExists(t, exp.Path)
	}
	assert.Equal(t, 3, rep.Exports[0].Count)
}

func TestValidateCmd_DuplicateExportFilters(t *testing.T) {
	exportDir := t.TempDir()
	output, err := execute(t, "validate", writeCSV(t, customersCSV),
		"--export", "valid,valid,all", "--export", "valid", "--export-dir", exportDir, "-o", "json")
	require.NoError(t, err)

	var rep validateReport
	require.NoError(t, json.Unmarshal([]byte(output), &rep))

	require.Len(t, rep.Exports, 2)
	assert.Equal(t, report.FilterValid, rep.Exports[0].Filter)
	assert.Equal(t, report.FilterAll, rep.Exports[1].Filter)

	entries, err := os.ReadDir(exportDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestValidateCmd_Column(t *testing.T) {
	output, err := execute(t, "validate", writeCSV(t, customersCSV), "--column", "Notes", "-o", "json")
	require.NoError(t, err)

	var rep validateReport
	require.NoError(t, json.Unmarshal([]byte(output), &rep))
	assert.Equal(t, "Notes", rep.Column)
	assert.Equal(t, 2, rep.Summary.Statistics.Total)
	assert.Empty(t, rep.Exports)
}

func TestValidateCmd_Errors(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		csv     string
		args    []string
	}{
		{
			name:    "unknown column",
			csv:     customersCSV,
			args:    []string{"--column", "Phone"},
			wantErr: common.ErrInvalidSelection,
		},
		{
			name:    "no email column",
			csv:     "Name,City\nAsha,Pune\nRavi,Delhi\n",
			wantErr: common.ErrInvalidSelection,
		},
		{
			name:    "blank column",
			csv:     "Name,Email\nAsha,\nRavi,  \n",
			args:    []string{"--column", "Email"},
			wantErr: common.ErrEmptyInput,
		},
		{
			name:    "unknown filter",
			csv:     customersCSV,
			args:    []string{"--export", "everything"},
			wantErr: common.ErrInvalidSelection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"validate", writeCSV(t, tt.csv)}, tt.args...)
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var userErr *common.UserError
			assert.ErrorAs(t, err, &userErr)
		})
	}
}

func TestPatternsCmd(t *testing.T) {
	output, err := execute(t, "patterns", "-o", "json")
	require.NoError(t, err)

	var lib patternLibrary
	require.NoError(t, json.Unmarshal([]byte(output), &lib))

	assert.Equal(t, pattern.BankDomains(), lib.BankDomains)
	assert.Equal(t, pattern.TrustedDomains(), lib.TrustedDomains)
	assert.Equal(t, pattern.SuspiciousDomains(), lib.SuspiciousDomains)
	assert.Contains(t, lib.BankDomains, "sbi.co.in")

	assert.Len(t, lib.Suspicious, len(pattern.SuspiciousPatterns()))
	require.Len(t, lib.SQL, len(pattern.SQLPatterns()))
	assert.Equal(t, "union select", lib.SQL[0].Name)
	require.Len(t, lib.ColumnNames, len(pattern.ColumnNamePatterns()))
	assert.Equal(t, `(?i)^e[-_]?mail`, lib.ColumnNames[0].Expr)

	text, err := execute(t, "patterns")
	require.NoError(t, err)
	assert.Contains(t, text, "Column name patterns")
	assert.Contains(t, text, "union select")
}

func TestConfigFlag_Missing(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "version")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestConfigFlag_File(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("batch:\n  size: 0\n"), 0o600))

	_, err := execute(t, "--config", cfgPath, "validate", writeCSV(t, customersCSV))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestVersionCmd(t *testing.T) {
	output, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "mailvet dev")
}
