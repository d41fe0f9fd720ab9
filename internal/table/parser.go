// Package table turns delimited text files into record sets and extracts address columns from
// them.
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/mailvet/internal/common"
	"github.com/Veraticus/mailvet/internal/model"
)

// DefaultMaxFileSize is the largest file ParseFile accepts.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// SupportedDelimiters are the delimiters considered during auto-detection, in preference order.
var SupportedDelimiters = []rune{',', ';', '\t', '|'}

// ParseOptions configures parsing.
type ParseOptions struct {
	// Delimiter forces a delimiter; zero auto-detects.
	Delimiter   rune
	MaxFileSize int64
}

// Table is a parsed delimited file.
type Table struct {
	Name    string
	Columns []string
	Records []model.Record
	// RaggedRows lists 1-based data rows whose field count differed from the header.
	RaggedRows []int
	Size       int64
	Delimiter  rune
}

// RecordSet returns the table as a record set.
func (t *Table) RecordSet() model.RecordSet {
	return model.RecordSet{Columns: t.Columns, Records: t.Records}
}

// Parser parses delimited files.
type Parser struct {
	opts ParseOptions
}

// NewParser creates a new parser.
func NewParser(opts ParseOptions) *Parser {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	return &Parser{opts: opts}
}

// ParseFile validates and parses a .csv file on disk.
func (p *Parser) ParseFile(path string) (*Table, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return nil, fmt.Errorf("%w: %s is not a CSV file", common.ErrInvalidFile, filepath.Base(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s is empty", common.ErrInvalidFile, filepath.Base(path))
	}
	if info.Size() > p.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: %s exceeds the %s limit",
			common.ErrFileTooLarge, filepath.Base(path), FormatFileSize(p.opts.MaxFileSize))
	}

	f, err := os.Open(path) //nolint:gosec // path is supplied by the user on purpose
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close input file", "path", path, "error", closeErr)
		}
	}()

	t, err := p.Parse(f)
	if err != nil {
		return nil, err
	}
	t.Name = filepath.Base(path)
	t.Size = info.Size()

	return t, nil
}

// Parse reads a header row followed by data rows. Completely blank rows are dropped; short rows
// are padded and long rows truncated to the header width, and both are reported in RaggedRows.
func (p *Parser) Parse(r io.Reader) (*Table, error) {
	content, err := io.ReadAll(io.LimitReader(r, p.opts.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if int64(len(content)) > p.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: input exceeds the %s limit", common.ErrFileTooLarge, FormatFileSize(p.opts.MaxFileSize))
	}
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	delimiter := p.opts.Delimiter
	if delimiter == 0 {
		delimiter = SniffDelimiter(content)
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file has no header row", common.ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV header: %w", err)
	}

	t := &Table{
		Columns:   normalizeHeader(header),
		Delimiter: delimiter,
	}

	dataRow := 0
	for {
		row, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", readErr)
		}
		if isBlankRow(row) {
			continue
		}
		dataRow++

		if len(row) != len(t.Columns) {
			t.RaggedRows = append(t.RaggedRows, dataRow)
		}

		record := make(model.Record, len(t.Columns))
		for i, column := range t.Columns {
			if i < len(row) {
				record[column] = row[i]
			} else {
				record[column] = ""
			}
		}
		t.Records = append(t.Records, record)
	}

	if len(t.Records) == 0 {
		return nil, fmt.Errorf("%w in CSV file", common.ErrNoData)
	}

	slog.Debug("Parsed CSV",
		"columns", len(t.Columns),
		"rows", len(t.Records),
		"delimiter", string(delimiter),
		"ragged_rows", len(t.RaggedRows))

	return t, nil
}

// SniffDelimiter picks the supported delimiter that occurs most often, outside quotes, on the
// first line. Ties go to the earlier delimiter in SupportedDelimiters; no match means comma.
func SniffDelimiter(content []byte) rune {
	line := firstLine(content)

	counts := make(map[rune]int, len(SupportedDelimiters))
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}

	best, bestCount := ',', 0
	for _, d := range SupportedDelimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}

func firstLine(content []byte) string {
	if i := bytes.IndexAny(content, "\r\n"); i >= 0 {
		return string(content[:i])
	}
	return string(content)
}

// normalizeHeader trims names, names blank headers by position and suffixes duplicates. A
// suffixed name never collides with another header, earlier or later.
func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	reserved := make(map[string]bool, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
		if names[i] == "" {
			names[i] = fmt.Sprintf("column_%d", i+1)
		}
		reserved[names[i]] = true
	}

	columns := make([]string, len(header))
	used := make(map[string]bool, len(header))
	next := make(map[string]int, len(header))

	for i, name := range names {
		if used[name] {
			base := name
			n := max(next[base], 1)
			for {
				name = fmt.Sprintf("%s_%d", base, n)
				n++
				if !used[name] && !reserved[name] {
					break
				}
			}
			next[base] = n
		}
		used[name] = true
		columns[i] = name
	}
	return columns
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// FormatFileSize renders a byte count with binary units.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	units := []string{"Bytes", "KB", "MB", "GB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}

	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", size), "0"), ".")
	return s + " " + units[i]
}
