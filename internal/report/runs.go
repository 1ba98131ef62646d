package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/vintr-dev/tapscore/internal/store"
)

// RenderRuns prints a table of stored runs, newest first.
func RenderRuns(w io.Writer, runs []store.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	headers := []string{"ID", "Date", "Lang", "Seed", "Sentences", "Score"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.Lang,
			strconv.FormatInt(run.Seed, 10),
			strconv.Itoa(run.Sentences),
			strconv.FormatFloat(run.OverallScore, 'f', 2, 64),
		})
	}
	rightAlign := map[int]bool{0: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
