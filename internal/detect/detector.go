// Package detect guesses which column of a record set holds email addresses.
//
// Every column is scored from a bounded sample using two signals: how much its name looks like
// an email column, and what fraction of its non-blank values have the shape of an address.
// The shape test is deliberately looser than the classifier; it only has to be fast.
package detect

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Veraticus/mailvet/internal/common"
	"github.com/Veraticus/mailvet/internal/model"
	"github.com/Veraticus/mailvet/internal/pattern"
)

// Scoring weights and limits.
const (
	DefaultSampleSize = 50
	MaxExamples       = 3

	ContentWeight = 0.7
	NameWeight    = 0.3

	// EmailThreshold is the weighted score a column must exceed to count as an email column. It
	// applies to the unrounded score, so a column reported at 50% confidence can still qualify.
	EmailThreshold = 0.5

	NameScoreExact   = 1.0
	NameScorePartial = 0.8
	NameScorePattern = 0.7
)

// Options configures a Detector.
type Options struct {
	SampleSize int
}

// Detector scores record-set columns for email likelihood.
type Detector struct {
	sampleSize int
}

// NewDetector creates a detector. A non-positive sample size selects DefaultSampleSize.
func NewDetector(opts Options) *Detector {
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	return &Detector{sampleSize: opts.SampleSize}
}

// Result is the outcome of a detection run.
type Result struct {
	// Profiles holds every column, sorted by descending confidence, ties in column order.
	Profiles []model.ColumnProfile `json:"profiles" yaml:"profiles"`
	// EmailColumns is the subset of Profiles that qualified as email columns.
	EmailColumns []model.ColumnProfile `json:"emailColumns" yaml:"emailColumns"`
	Structure    model.TableStructure  `json:"structure" yaml:"structure"`
}

// Detect runs detection with the default sample size.
func Detect(set model.RecordSet) (Result, error) {
	return NewDetector(Options{}).Detect(set)
}

// Detect scores every column of set and classifies its structure. The record set is only read.
func (d *Detector) Detect(set model.RecordSet) (Result, error) {
	if len(set.Records) == 0 {
		return Result{}, &common.EmptyInputError{Reason: "record set has no records"}
	}

	columns := set.Columns
	if len(columns) == 0 {
		columns = model.NewRecordSet(set.Records).Columns
	}
	if len(columns) == 0 {
		return Result{}, &common.EmptyInputError{Reason: "record set has no columns"}
	}

	sample := set.Records
	if len(sample) > d.sampleSize {
		sample = sample[:d.sampleSize]
	}

	profiles := make([]model.ColumnProfile, 0, len(columns))
	for i, column := range columns {
		profiles = append(profiles, scoreColumn(i, column, sample))
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].Confidence > profiles[j].Confidence
	})

	var emailColumns []model.ColumnProfile
	for _, p := range profiles {
		if p.IsEmail {
			emailColumns = append(emailColumns, p)
		}
	}

	common.LogDebug(context.Background(), "column detection finished", common.Fields{
		"columns":       len(columns),
		"sampled":       len(sample),
		"email_columns": len(emailColumns),
	})

	return Result{
		Profiles:     profiles,
		EmailColumns: emailColumns,
		Structure:    classifyStructure(len(columns), emailColumns),
	}, nil
}

// NameScore scores a column name for email likelihood in [0, 1].
func NameScore(column string) float64 {
	name := strings.ToLower(strings.TrimSpace(column))

	switch {
	case pattern.IsEmailColumnName(name):
		return NameScoreExact
	case strings.Contains(name, "email"), strings.Contains(name, "mail"):
		return NameScorePartial
	case pattern.MatchesColumnNamePattern(name):
		return NameScorePattern
	default:
		return 0
	}
}

// IsLikelyEmail is the cheap shape test applied to sampled values.
func IsLikelyEmail(value string) bool {
	return pattern.LikelyEmail.MatchString(value)
}

// Confidence combines content and name scores into a percentage.
func Confidence(contentScore, nameScore float64) int {
	return int(math.Round(weightedScore(contentScore, nameScore) * 100))
}

func weightedScore(contentScore, nameScore float64) float64 {
	return contentScore*ContentWeight + nameScore*NameWeight
}

func scoreColumn(index int, column string, sample []model.Record) model.ColumnProfile {
	profile := model.ColumnProfile{
		Name:      column,
		Index:     index,
		NameScore: NameScore(column),
		Examples:  []string{},
	}

	for _, record := range sample {
		value := strings.TrimSpace(record[column])
		if value == "" {
			continue
		}
		profile.SampledCount++
		if IsLikelyEmail(value) {
			profile.MatchedCount++
			if len(profile.Examples) < MaxExamples {
				profile.Examples = append(profile.Examples, value)
			}
		}
	}

	if profile.SampledCount > 0 {
		profile.ContentScore = float64(profile.MatchedCount) / float64(profile.SampledCount)
	}
	score := weightedScore(profile.ContentScore, profile.NameScore)
	profile.Confidence = int(math.Round(score * 100))
	profile.IsEmail = score > EmailThreshold && profile.MatchedCount > 0

	return profile
}

func classifyStructure(totalColumns int, emailColumns []model.ColumnProfile) model.TableStructure {
	switch {
	case totalColumns == 1 && len(emailColumns) == 1:
		primary := emailColumns[0].Name
		return model.TableStructure{
			Kind:               model.StructureSingleColumn,
			Description:        "Single column containing email addresses",
			PrimaryEmailColumn: &primary,
			Alternatives:       []model.ColumnProfile{},
			TotalColumns:       totalColumns,
		}
	case len(emailColumns) > 0:
		primary := emailColumns[0].Name
		alternatives := make([]model.ColumnProfile, len(emailColumns)-1)
		copy(alternatives, emailColumns[1:])
		return model.TableStructure{
			Kind:               model.StructureMultiColumn,
			Description:        fmt.Sprintf("%d of %d columns look like email data", len(emailColumns), totalColumns),
			PrimaryEmailColumn: &primary,
			Alternatives:       alternatives,
			TotalColumns:       totalColumns,
		}
	default:
		return model.TableStructure{
			Kind:                    model.StructureUnknown,
			Description:             "No email columns automatically detected",
			Alternatives:            []model.ColumnProfile{},
			TotalColumns:            totalColumns,
			RequiresManualSelection: true,
		}
	}
}
