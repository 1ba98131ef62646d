package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/vintr-dev/tapscore/internal/scorer"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Domain", "Accuracy", "N"}
	rows := [][]string{
		{"chat", "0.97", "12"},
		{"news", "0.8", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Domain  Accuracy   N" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "chat        0.97  12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "news         0.8   3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func sampleResults() scorer.Results {
	res := scorer.Results{
		NextWordPrediction: scorer.TaskResult{
			Score: scorer.AccuracyScore{Accuracy: 0.2, Top3Accuracy: 0.4, N: 10},
			PerDomain: map[string]scorer.AccuracyScore{
				"chat": {Accuracy: 0.2, Top3Accuracy: 0.4, N: 10},
			},
		},
		AutoCompletion: scorer.CompletionResult{
			Score: scorer.AccuracyScore{Accuracy: 0.5, Top3Accuracy: 0.6, N: 8},
			PerDomain: map[string]scorer.AccuracyScore{
				"chat": {Accuracy: 0.5, Top3Accuracy: 0.6, N: 8},
			},
			PerCompletionRate: map[string]scorer.AccuracyScore{
				"<25%": {Accuracy: 0.3, Top3Accuracy: 0.4, N: 2},
			},
			PerOther: map[string]scorer.AccuracyScore{
				"without_typo": {Accuracy: 0.6, Top3Accuracy: 0.7, N: 6},
				"with_typo":    {Accuracy: 0.2, Top3Accuracy: 0.3, N: 2},
			},
		},
		AutoCorrection: scorer.CorrectionResult{
			Score: scorer.CorrectionScore{Accuracy: 0.7, Precision: 0.75, Recall: 0.6, Fscore: 0.67, NTypo: 10, N: 20},
			PerDomain: map[string]scorer.CorrectionScore{
				"chat": {Accuracy: 0.7, Precision: 0.75, Recall: 0.6, Fscore: 0.67, NTypo: 10, N: 20},
			},
		},
		SwipeResolution: scorer.TaskResult{
			Score: scorer.AccuracyScore{Accuracy: 0.9, Top3Accuracy: 0.9, N: 4},
			PerDomain: map[string]scorer.AccuracyScore{
				"chat": {Accuracy: 0.9, Top3Accuracy: 0.9, N: 4},
			},
		},
	}
	res.OverallScore = scorer.OneScore(res)
	return res
}

func TestRenderResults(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderResults(&buf, sampleResults()); err != nil {
		t.Fatalf("RenderResults: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Next Word Prediction",
		"Auto-Completion",
		"Auto-Correction",
		"Swipe Resolution",
		"Completion Rate",
		"Typo Type",
		"DELETE_SPACE",
		"Overall Score: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	// Every per-domain table carries an aggregate row.
	if n := strings.Count(out, "\nall "); n < 4 {
		t.Errorf("expected at least 4 aggregate rows, found %d", n)
	}
}

func TestRenderJSONRoundTrip(t *testing.T) {
	res := sampleResults()
	var buf bytes.Buffer
	if err := RenderJSON(&buf, res); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	score, ok := decoded["overall_score"].(float64)
	if !ok {
		t.Fatal("overall_score missing from json output")
	}
	if score != res.OverallScore {
		t.Errorf("overall_score = %v, want %v", score, res.OverallScore)
	}
}

func TestRenderMistakes(t *testing.T) {
	mistakes := map[string][]scorer.Mistake{
		"auto_correction": {
			{Actual: "hello", Preds: []string{"hallo", "hullo"}, Context: "well ", Count: 3},
		},
	}
	var buf bytes.Buffer
	if err := RenderMistakes(&buf, mistakes); err != nil {
		t.Fatalf("RenderMistakes: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Auto-Correction Mistakes") {
		t.Error("missing mistakes section title")
	}
	if !strings.Contains(out, "hallo, hullo") {
		t.Error("missing joined predictions")
	}
	if strings.Contains(out, "Next Word Prediction Mistakes") {
		t.Error("empty task should not be rendered")
	}
}

func TestRenderScoreHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderScoreHistory(&buf, []float64{0.1, 0.3, 0.5, 0.7}, 40, 5); err != nil {
		t.Fatalf("RenderScoreHistory: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// Title, underline, 5 plot rows, summary line, trailing blank trimmed.
	if len(lines) != 8 {
		t.Fatalf("expected 8 lines, got %d: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[2], "1.0 │ ") {
		t.Errorf("unexpected top axis row: %q", lines[2])
	}
	if !strings.HasPrefix(lines[6], "0.0 │ ") {
		t.Errorf("unexpected bottom axis row: %q", lines[6])
	}
	if !strings.Contains(lines[7], "Runs: 4") {
		t.Errorf("unexpected summary line: %q", lines[7])
	}
}

func TestRenderScoreHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderScoreHistory(&buf, nil, 40, 5); err != nil {
		t.Fatalf("RenderScoreHistory: %v", err)
	}
	if !strings.Contains(buf.String(), "No runs found.") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestResample(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		want   int
	}{
		{"shrink", []float64{1, 1, 3, 3, 5, 5}, 3, 3},
		{"stretch", []float64{1, 2}, 5, 5},
		{"exact", []float64{1, 2, 3}, 3, 3},
		{"single", []float64{7}, 4, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := resample(tc.values, tc.width)
			if len(got) != tc.want {
				t.Fatalf("len = %d, want %d", len(got), tc.want)
			}
			if got[0] != tc.values[0] {
				t.Errorf("first value = %v, want %v", got[0], tc.values[0])
			}
		})
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := plotWidthFor(80); got != 74 {
		t.Errorf("plotWidthFor(80) = %d, want 74", got)
	}
	if got := plotWidthFor(5); got != minPlotWidth {
		t.Errorf("plotWidthFor(5) = %d, want %d", got, minPlotWidth)
	}
	if got := plotWidthFor(0); got != 74 {
		t.Errorf("plotWidthFor(0) = %d, want 74", got)
	}
}
