package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/mailvet/internal/classification"
	"github.com/Veraticus/mailvet/internal/detect"
	"github.com/Veraticus/mailvet/internal/model"
	"github.com/Veraticus/mailvet/internal/report"
	"github.com/Veraticus/mailvet/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestInterruptHandler(t *testing.T) {
	tests := []struct {
		name        string
		wantPartial bool
	}{
		{name: "with partial results", wantPartial: true},
		{name: "without partial results", wantPartial: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &syncBuffer{}
			handler := NewInterruptHandler(output)

			ctx := handler.HandleInterrupts(context.Background(), tt.wantPartial)
			assert.False(t, handler.WasInterrupted())
			assert.NoError(t, ctx.Err())

			handler.interrupt()
			handler.interrupt()

			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
				t.Fatal("context was not cancelled")
			}

			assert.True(t, handler.WasInterrupted())
			out := output.String()
			assert.Equal(t, 1, strings.Count(out, "Validation interrupted!"))
			assert.Equal(t, tt.wantPartial, strings.Contains(out, "validated so far"))
		})
	}
}

func TestInterruptHandler_Stop(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output)

	ctx := handler.HandleInterrupts(context.Background(), true)
	handler.Stop()

	require.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, output.String())
}

func TestNewInterruptHandler_NilWriter(t *testing.T) {
	handler := NewInterruptHandler(nil)
	assert.NotNil(t, handler.writer)
}

func TestProgressReporter(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf, 25, "Validating")

	p.Update(10, 25)
	p.Update(25, 25)
	assert.Equal(t, 25, p.Processed())

	p.Update(30, 30)
	assert.Equal(t, 30, p.Processed())

	p.Finish()
	assert.Contains(t, buf.String(), "Validating")
}

func TestProgressReporter_Stop(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf, 40, "Validating")

	p.Update(10, 40)
	p.Stop()

	assert.Equal(t, 10, p.Processed())
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestRenderVerdict(t *testing.T) {
	out := RenderVerdict(classification.Classify("bad-email"))

	assert.Contains(t, out, "bad-email")
	assert.Contains(t, out, "Invalid")
	assert.Contains(t, out, "Basic Format")
	assert.Contains(t, out, classification.CheckHasAtSymbol)
	assert.Contains(t, out, "Missing @ symbol")

	out = RenderVerdict(classification.Classify("user@sbi.co.in"))
	assert.Contains(t, out, "Valid")
	assert.Contains(t, out, "sbi.co.in")
	assert.NotContains(t, out, "Errors:")
}

func TestRenderDetection(t *testing.T) {
	set := model.RecordSet{
		Columns: []string{"name", "email"},
		Records: []model.Record{{"name": "Asha", "email": "asha@sbi.co.in"}},
	}
	result, err := detect.Detect(set)
	require.NoError(t, err)

	tbl := &table.Table{Columns: set.Columns, Records: set.Records}
	out := RenderDetection(result, table.Statistics(tbl, result), []string{"Empty columns detected: x"})

	assert.Contains(t, out, "COLUMN")
	assert.Contains(t, out, "email")
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "Primary email column:")
	assert.Contains(t, out, "Empty columns detected: x")
}

func TestRenderStructure_Manual(t *testing.T) {
	out := RenderStructure(model.TableStructure{
		Kind:                    model.StructureUnknown,
		Description:             "No email columns automatically detected",
		RequiresManualSelection: true,
	})

	assert.Contains(t, out, "Manual column selection required")
	assert.NotContains(t, out, "Primary email column")
}

func TestRenderSummary(t *testing.T) {
	verdicts := []model.Verdict{
		classification.Classify("user@sbi.co.in"),
		classification.Classify("bad-email"),
	}

	out := RenderSummary(report.NewSummary(verdicts))
	assert.Contains(t, out, "Total: 2")
	assert.Contains(t, out, "sbi.co.in (1)")
	assert.Contains(t, out, "Missing @ symbol (1)")
}

func TestStageTitle(t *testing.T) {
	assert.Equal(t, "RBI Guidelines", StageTitle("rbiCompliance"))
	assert.Equal(t, "other", StageTitle("other"))
}
