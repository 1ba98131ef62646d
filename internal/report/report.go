package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/vintr-dev/tapscore/internal/noise"
	"github.com/vintr-dev/tapscore/internal/scorer"
)

const allDomainsLabel = "all"

var taskOrder = []string{
	"next_word_prediction",
	"auto_completion",
	"auto_correction",
	"swipe_resolution",
}

var taskTitles = map[string]string{
	"next_word_prediction": "Next Word Prediction",
	"auto_completion":      "Auto-Completion",
	"auto_correction":      "Auto-Correction",
	"swipe_resolution":     "Swipe Resolution",
}

// RenderJSON writes the full results document as indented JSON.
func RenderJSON(w io.Writer, res scorer.Results) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, "")
	return err
}

// RenderResults prints the per-task tables and the overall score.
func RenderResults(w io.Writer, res scorer.Results) error {
	if err := renderAccuracyTask(w, taskTitles["next_word_prediction"], res.NextWordPrediction); err != nil {
		return err
	}
	if err := renderCompletion(w, res.AutoCompletion); err != nil {
		return err
	}
	if err := renderCorrection(w, res.AutoCorrection); err != nil {
		return err
	}
	if err := renderAccuracyTask(w, taskTitles["swipe_resolution"], res.SwipeResolution); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Overall Score: %s\n", formatScore(res.OverallScore))
	return err
}

func renderAccuracyTask(w io.Writer, title string, tr scorer.TaskResult) error {
	if err := writeTitle(w, title); err != nil {
		return err
	}
	if err := writeAccuracyTable(w, "Domain", accuracyRows(tr.PerDomain, tr.Score)); err != nil {
		return err
	}
	return renderPerformances(w, tr.Performances)
}

func renderCompletion(w io.Writer, cr scorer.CompletionResult) error {
	if err := writeTitle(w, taskTitles["auto_completion"]); err != nil {
		return err
	}
	if err := writeAccuracyTable(w, "Domain", accuracyRows(cr.PerDomain, cr.Score)); err != nil {
		return err
	}
	rateOrder := []string{"<25%", "25%~50%", "50%~75%", ">75%"}
	rateRows := make([][]string, 0, len(rateOrder))
	for _, bucket := range rateOrder {
		rateRows = append(rateRows, accuracyRow(bucket, cr.PerCompletionRate[bucket]))
	}
	if err := writeAccuracyTable(w, "Completion Rate", rateRows); err != nil {
		return err
	}
	otherRows := [][]string{
		accuracyRow("without typo", cr.PerOther["without_typo"]),
		accuracyRow("with typo", cr.PerOther["with_typo"]),
	}
	if err := writeAccuracyTable(w, "Partial Word", otherRows); err != nil {
		return err
	}
	return renderPerformances(w, cr.Performances)
}

func renderCorrection(w io.Writer, cr scorer.CorrectionResult) error {
	if err := writeTitle(w, taskTitles["auto_correction"]); err != nil {
		return err
	}
	domains := sortedKeys(cr.PerDomain)
	rows := make([][]string, 0, len(domains)+1)
	for _, domain := range domains {
		rows = append(rows, correctionRow(domain, cr.PerDomain[domain]))
	}
	rows = append(rows, correctionRow(allDomainsLabel, cr.Score))
	if err := writeCorrectionTable(w, "Domain", rows); err != nil {
		return err
	}

	typeRows := make([][]string, 0, len(noise.AllTypos))
	for _, t := range noise.AllTypos {
		typeRows = append(typeRows, correctionRow(t.String(), cr.PerTypoType[t.String()]))
	}
	if err := writeCorrectionTable(w, "Typo Type", typeRows); err != nil {
		return err
	}

	numberRows := [][]string{
		correctionRow("1", cr.PerNumberOfTypos["1"]),
		correctionRow("2", cr.PerNumberOfTypos["2"]),
		correctionRow("3+", cr.PerNumberOfTypos["3+"]),
	}
	if err := writeCorrectionTable(w, "Typos", numberRows); err != nil {
		return err
	}
	return renderPerformances(w, cr.Performances)
}

// RenderMistakes prints the most common mistakes per task.
func RenderMistakes(w io.Writer, mistakes map[string][]scorer.Mistake) error {
	for _, task := range taskOrder {
		entries := mistakes[task]
		if len(entries) == 0 {
			continue
		}
		if err := writeTitle(w, taskTitles[task]+" Mistakes"); err != nil {
			return err
		}
		headers := []string{"Count", "Expected", "Predictions", "Context"}
		rows := make([][]string, 0, len(entries))
		for _, m := range entries {
			rows = append(rows, []string{
				strconv.Itoa(m.Count),
				m.Actual,
				strings.Join(m.Preds, ", "),
				m.Context,
			})
		}
		rightAlign := map[int]bool{0: true}
		for _, line := range formatTable(headers, rows, rightAlign) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	return nil
}

func accuracyRows(perDomain map[string]scorer.AccuracyScore, total scorer.AccuracyScore) [][]string {
	domains := sortedKeys(perDomain)
	rows := make([][]string, 0, len(domains)+1)
	for _, domain := range domains {
		rows = append(rows, accuracyRow(domain, perDomain[domain]))
	}
	rows = append(rows, accuracyRow(allDomainsLabel, total))
	return rows
}

func accuracyRow(label string, score scorer.AccuracyScore) []string {
	return []string{
		label,
		formatScore(score.Accuracy),
		formatScore(score.Top3Accuracy),
		strconv.Itoa(score.N),
	}
}

func correctionRow(label string, score scorer.CorrectionScore) []string {
	return []string{
		label,
		formatScore(score.Accuracy),
		formatScore(score.Precision),
		formatScore(score.Recall),
		formatScore(score.Fscore),
		formatScore(score.Top3Fscore),
		strconv.Itoa(score.NTypo),
		strconv.Itoa(score.N),
	}
}

func writeAccuracyTable(w io.Writer, labelHeader string, rows [][]string) error {
	headers := []string{labelHeader, "Accuracy", "Top-3", "N"}
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func writeCorrectionTable(w io.Writer, labelHeader string, rows [][]string) error {
	headers := []string{labelHeader, "Accuracy", "Precision", "Recall", "F-score", "Top-3 F", "N Typo", "N"}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func renderPerformances(w io.Writer, perf scorer.Performance) error {
	if _, err := fmt.Fprintf(w, "Memory: mean %s, min %s, max %s\n",
		perf.MeanMemory.String(), perf.MinMemory.String(), perf.MaxMemory.String()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Runtime: mean %s, fastest %s, slowest %s\n",
		perf.MeanRuntime.String(), perf.FastestRuntime.String(), perf.SlowestRuntime.String()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func writeTitle(w io.Writer, title string) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, strings.Repeat("-", len(title)))
	return err
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
