package api

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Veraticus/mailvet/internal/certs"
	"github.com/Veraticus/mailvet/internal/common"
	"github.com/Veraticus/mailvet/internal/model"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, NewServer(Options{}), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, rec))
}

func TestClassify(t *testing.T) {
	rec := do(t, NewServer(Options{}), http.MethodPost, "/v1/classify", `{"address":"user@sbi.co.in"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	v := decode[model.Verdict](t, rec)
	assert.Equal(t, "user@sbi.co.in", v.Address)
	assert.True(t, v.IsValid)
	assert.Equal(t, model.BankingYes, v.BankingCompliance)
	assert.Equal(t, model.RiskLow, v.RiskLevel)
}

func TestClassify_WireFormat(t *testing.T) {
	rec := do(t, NewServer(Options{}), http.MethodPost, "/v1/classify", `{"address":"bad-email"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, key := range []string{"address", "isValid", "bankingCompliance", "riskLevel", "riskScore", "errorSummary", "checks"} {
		assert.Contains(t, raw, key)
	}
	checks, ok := raw["checks"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"basicFormat", "rfcCompliance", "rbiCompliance", "domainValidation", "bankingDomain", "securityCheck"} {
		assert.Contains(t, checks, key)
	}
}

func TestClassify_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"address":`},
		{name: "unknown field", body: `{"email":"a@b.com"}`},
		{name: "wrong type", body: `{"address":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, NewServer(Options{}), http.MethodPost, "/v1/classify", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, CodeBadRequest, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestClassifyBatch(t *testing.T) {
	body := `{"addresses":["user@sbi.co.in","bad-email","a@b..com","test@mailinator.com"],"batchSize":3}`
	rec := do(t, NewServer(Options{}), http.MethodPost, "/v1/classify/batch", body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[BatchResponse](t, rec)
	assert.NotEmpty(t, resp.ID)
	require.Len(t, resp.Verdicts, 4)
	assert.Equal(t, "user@sbi.co.in", resp.Verdicts[0].Address)
	assert.Equal(t, "bad-email", resp.Verdicts[1].Address)
	assert.Equal(t, "test@mailinator.com", resp.Verdicts[3].Address)
	assert.Equal(t, 4, resp.Statistics.Total)
	assert.Equal(t, 1, resp.Statistics.Valid)
}

func TestClassifyBatch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		status   int
	}{
		{name: "empty", body: `{"addresses":[]}`, status: http.StatusUnprocessableEntity, wantCode: CodeEmptyInput},
		{name: "negative batch", body: `{"addresses":["a@b.com"],"batchSize":-1}`, status: http.StatusBadRequest, wantCode: CodeInvalidSelection},
		{name: "too many", body: `{"addresses":["a@b.com","c@d.com","e@f.com"]}`, status: http.StatusRequestEntityTooLarge, wantCode: CodeTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, NewServer(Options{MaxAddresses: 2}), http.MethodPost, "/v1/classify/batch", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestDetect(t *testing.T) {
	csv := "Name,Work Email,Notes\nAsha,asha@sbi.co.in,x\nRavi,ravi@gmail.com,\n"
	rec := do(t, NewServer(Options{}), http.MethodPost, "/v1/detect", csv)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[DetectResponse](t, rec)
	require.Len(t, resp.Profiles, 3)
	assert.Equal(t, "Work Email", resp.Profiles[0].Name)
	assert.Equal(t, model.StructureMultiColumn, resp.Structure.Kind)
	require.NotNil(t, resp.Structure.PrimaryEmailColumn)
	assert.Equal(t, "Work Email", *resp.Structure.PrimaryEmailColumn)
	assert.Equal(t, 2, resp.Statistics.TotalRows)
	assert.NotNil(t, resp.Issues)
}

func TestDetect_Delimiter(t *testing.T) {
	q := url.Values{"delimiter": []string{";"}}
	rec := do(t, NewServer(Options{}), http.MethodPost, "/v1/detect?"+q.Encode(), "email;name\na@b.com;x\n")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[DetectResponse](t, rec)
	assert.Equal(t, model.StructureMultiColumn, resp.Structure.Kind)

	rec = do(t, NewServer(Options{}), http.MethodPost, "/v1/detect?delimiter=x", "email\na@b.com\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetect_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		status   int
		maxSize  int64
	}{
		{name: "header only", body: "email\n", status: http.StatusUnprocessableEntity, wantCode: CodeNoData},
		{name: "empty body", body: "", status: http.StatusUnprocessableEntity, wantCode: CodeNoData},
		{name: "too large", body: "email\n" + strings.Repeat("a@b.com\n", 20), maxSize: 32, status: http.StatusRequestEntityTooLarge, wantCode: CodeTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, NewServer(Options{MaxFileSize: tt.maxSize}), http.MethodPost, "/v1/detect", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestNotFound(t *testing.T) {
	rec := do(t, NewServer(Options{}), http.MethodGet, "/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type failingCerts struct{}

func (failingCerts) Certificate() (tls.Certificate, error) {
	return tls.Certificate{}, errors.New("disk full")
}

func TestStartTLS_CertificateError(t *testing.T) {
	err := NewServer(Options{}).StartTLS("127.0.0.1:0", failingCerts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRouter_ServesOverTLS(t *testing.T) {
	cert, err := certs.NewStore(t.TempDir()).Certificate()
	require.NoError(t, err)

	ts := httptest.NewUnstartedServer(NewServer(Options{}).Router())
	ts.TLS = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	ts.StartTLS()
	defer ts.Close()

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true, MinVersion: tls.VersionTLS12}, //nolint:gosec // self-signed test certificate
	}}
	resp, err := client.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, resp.TLS)
}

func captureLogs(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	require.NoError(t, common.SetupLoggerTo(&buf, level, "json"))
	return &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) map[string]map[string]any {
	t.Helper()
	lines := make(map[string]map[string]any)
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines[entry["msg"].(string)] = entry
	}
	return lines
}

func TestRequestLogger_ContextLogger(t *testing.T) {
	buf := captureLogs(t, "debug")

	handler := middleware.RequestID(requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		common.Logger(r.Context()).Info("handled")
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, buf)
	require.Contains(t, lines, "handled")
	require.Contains(t, lines, "request")
	assert.Equal(t, "req-123", lines["handled"]["request_id"])
	assert.Equal(t, "req-123", lines["request"]["request_id"])
	assert.EqualValues(t, http.StatusNoContent, lines["request"]["status"])
}

func TestRequestLogger_ScopesErrorsAndRuns(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		wantMsg string
		wantRun bool
	}{
		{name: "bad request", body: `{`, status: http.StatusBadRequest, wantMsg: "request error"},
		{name: "classified", body: `{"address":"user@sbi.co.in"}`, status: http.StatusOK, wantMsg: "Batch validation complete", wantRun: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t, "info")

			req := httptest.NewRequest(http.MethodPost, "/v1/classify", strings.NewReader(tt.body))
			req.Header.Set(middleware.RequestIDHeader, "req-456")
			rec := httptest.NewRecorder()
			NewServer(Options{}).Router().ServeHTTP(rec, req)
			require.Equal(t, tt.status, rec.Code)

			lines := logLines(t, buf)
			require.Contains(t, lines, tt.wantMsg)
			entry := lines[tt.wantMsg]
			assert.Equal(t, "req-456", entry["request_id"])
			if tt.wantRun {
				assert.NotEmpty(t, entry["run_id"])
			}
		})
	}
}
