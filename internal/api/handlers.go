package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/mailvet/internal/common"
	"github.com/Veraticus/mailvet/internal/engine"
	"github.com/Veraticus/mailvet/internal/model"
	"github.com/Veraticus/mailvet/internal/report"
	"github.com/Veraticus/mailvet/internal/table"
	"github.com/google/uuid"
)

// ClassifyRequest is the body of POST /v1/classify.
type ClassifyRequest struct {
	Address string `json:"address"`
}

// BatchRequest is the body of POST /v1/classify/batch.
type BatchRequest struct {
	Addresses []string `json:"addresses"`
	BatchSize int      `json:"batchSize,omitempty"`
}

// BatchResponse is returned by POST /v1/classify/batch.
type BatchResponse struct {
	ID         string            `json:"id"`
	Verdicts   []model.Verdict   `json:"verdicts"`
	Statistics report.Statistics `json:"statistics"`
	Summary    report.Summary    `json:"summary"`
}

// DetectResponse is returned by POST /v1/detect.
type DetectResponse struct {
	Profiles   []model.ColumnProfile `json:"profiles"`
	Structure  model.TableStructure  `json:"structure"`
	Issues     []string              `json:"issues"`
	Statistics table.FileStatistics  `json:"statistics"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	verdicts, err := s.runner.Run(r.Context(), []string{req.Address}, engine.Options{BatchSize: 1}, nil)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, verdicts[0])
}

func (s *Server) handleClassifyBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if len(req.Addresses) == 0 {
		respondError(w, r, &common.EmptyInputError{Reason: "addresses must not be empty"})
		return
	}
	if len(req.Addresses) > s.opts.MaxAddresses {
		respondError(w, r, fmt.Errorf("%w: at most %d addresses per request", common.ErrFileTooLarge, s.opts.MaxAddresses))
		return
	}

	batchSize := req.BatchSize
	if batchSize == 0 {
		batchSize = s.opts.BatchSize
	}

	verdicts, err := s.runner.Run(r.Context(), req.Addresses, engine.Options{BatchSize: batchSize}, nil)
	if err != nil {
		respondError(w, r, err)
		return
	}

	summary := report.NewSummary(verdicts)
	writeJSON(w, BatchResponse{
		ID:         uuid.New().String(),
		Verdicts:   verdicts,
		Statistics: summary.Statistics,
		Summary:    summary,
	})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	opts := table.ParseOptions{MaxFileSize: s.opts.MaxFileSize}
	if d := r.URL.Query().Get("delimiter"); d != "" {
		delimiter, err := parseDelimiter(d)
		if err != nil {
			respondError(w, r, err)
			return
		}
		opts.Delimiter = delimiter
	}

	body := http.MaxBytesReader(w, r.Body, s.opts.MaxFileSize+1)
	tbl, err := table.NewParser(opts).Parse(body)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.detector.Detect(tbl.RecordSet())
	if err != nil {
		respondError(w, r, err)
		return
	}

	issues := table.ValidateStructure(tbl)
	if issues == nil {
		issues = []string{}
	}

	writeJSON(w, DetectResponse{
		Profiles:   result.Profiles,
		Structure:  result.Structure,
		Statistics: table.Statistics(tbl, result),
		Issues:     issues,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", errBadRequest, err)
	}
	return nil
}

func parseDelimiter(s string) (rune, error) {
	if strings.EqualFold(s, "tab") || s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("%w: delimiter must be a single character", errBadRequest)
	}
	for _, supported := range table.SupportedDelimiters {
		if r == supported {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported delimiter %q", errBadRequest, s)
}
