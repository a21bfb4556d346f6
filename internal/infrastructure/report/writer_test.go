package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/felixgeelhaar/covrun/internal/application"
	"github.com/felixgeelhaar/covrun/internal/domain"
)

func sampleResult() application.ReportResult {
	files := map[string]domain.FileCoverage{
		"src/lib.rs": {LinesCovered: 9, LinesTotal: 10, BranchesCovered: 3, BranchesTotal: 4},
		"src/io.rs":  {LinesCovered: 1, LinesTotal: 10},
	}
	return application.ReportResult{
		ReportPath: "lcov.info",
		Files: []application.FileResult{
			{File: "src/io.rs", Coverage: files["src/io.rs"]},
			{File: "src/lib.rs", Coverage: files["src/lib.rs"]},
		},
		Summary: domain.Summarize(files),
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := (Writer{}).Write(&buf, sampleResult(), application.OutputText); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "src/lib.rs") {
		t.Fatalf("expected file row, got:\n%s", out)
	}
	if !strings.Contains(out, "Total:") {
		t.Fatalf("expected summary line, got:\n%s", out)
	}
	// Not a TTY, so no ANSI escapes should leak into the output
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected ANSI escapes:\n%s", out)
	}
}

func TestWriteTextDelta(t *testing.T) {
	result := sampleResult()
	delta := 2.5
	result.Delta = &delta

	var buf bytes.Buffer
	if err := (Writer{}).Write(&buf, result, application.OutputText); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "+2.5%") {
		t.Fatalf("expected delta line, got:\n%s", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (Writer{}).Write(&buf, sampleResult(), application.OutputJSON); err != nil {
		t.Fatalf("write: %v", err)
	}
	var decoded application.ReportResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Summary.Files != 2 {
		t.Fatalf("expected 2 files in summary, got %d", decoded.Summary.Files)
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := (Writer{}).Write(&buf, sampleResult(), "xml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
