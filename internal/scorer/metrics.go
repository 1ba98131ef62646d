package scorer

import (
	"math"
	"strconv"
)

func accuracyMetric(tp, tn, fp, fn int) float64 {
	total := tp + tn + fp + fn
	if total == 0 {
		return 0
	}
	return float64(tp+tn) / float64(total)
}

func precisionMetric(tp, fp int) float64 {
	if tp+fp == 0 {
		return 0
	}
	return float64(tp) / float64(tp+fp)
}

func recallMetric(tp, fn int) float64 {
	if tp+fn == 0 {
		return 0
	}
	return float64(tp) / float64(tp+fn)
}

// fbeta generalizes the F1 score: beta < 1 weights precision higher,
// beta > 1 weights recall higher.
func fbeta(precision, recall, beta float64) float64 {
	denom := beta*beta*precision + recall
	if denom == 0 {
		return 0
	}
	return (1 + beta*beta) * precision * recall / denom
}

// roundToN rounds to n significant digits.
func roundToN(x float64, n int) float64 {
	if x == 0 {
		return 0
	}
	digits := float64(n-1) - math.Floor(math.Log10(math.Abs(x)))
	scale := math.Pow(10, digits)
	return math.Round(x*scale) / scale
}

// Readable is a performance number that renders as a human-readable string
// when a unit was attached, and as a raw number otherwise.
type Readable struct {
	Raw   float64
	Human string
}

func (r Readable) String() string {
	if r.Human != "" {
		return r.Human
	}
	return strconv.FormatFloat(r.Raw, 'f', -1, 64)
}

// MarshalJSON emits the human-readable form when present.
func (r Readable) MarshalJSON() ([]byte, error) {
	if r.Human != "" {
		return strconv.AppendQuote(nil, r.Human), nil
	}
	return strconv.AppendFloat(nil, r.Raw, 'f', -1, 64), nil
}

// UnmarshalJSON accepts either form.
func (r *Readable) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		human, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		r.Human = human
		return nil
	}
	raw, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	r.Raw = raw
	return nil
}

func humanReadableMemory(x float64) string {
	x = roundToN(x, 3)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if x < 1000 {
			return formatNumber(x) + " " + unit
		}
		x /= 1000
	}
	return formatNumber(x) + " TB"
}

func humanReadableRuntime(x float64) string {
	x = roundToN(x, 3)
	for _, unit := range []string{"ns", "μs", "ms"} {
		if x < 1000 {
			return formatNumber(x) + " " + unit
		}
		x /= 1000
	}
	return formatNumber(x) + " s"
}

func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func meanInt64(xs []int64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += float64(x)
	}
	return sum / float64(len(xs))
}

func minInt64(xs []int64) int64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxInt64(xs []int64) int64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
