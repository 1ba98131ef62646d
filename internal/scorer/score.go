package scorer

import "github.com/vintr-dev/tapscore/internal/noise"

// AccuracyScore is the metric block for accuracy-based tasks.
type AccuracyScore struct {
	Accuracy     float64 `json:"accuracy"`
	Top3Accuracy float64 `json:"top3_accuracy"`
	N            int     `json:"n"`
}

// CorrectionScore is the metric block for auto-correction, where clean
// words provide the negatives and noisy words the positives.
type CorrectionScore struct {
	Accuracy      float64 `json:"accuracy"`
	Precision     float64 `json:"precision"`
	Recall        float64 `json:"recall"`
	Fscore        float64 `json:"fscore"`
	Top3Accuracy  float64 `json:"top3_accuracy"`
	Top3Precision float64 `json:"top3_precision"`
	Top3Recall    float64 `json:"top3_recall"`
	Top3Fscore    float64 `json:"top3_fscore"`
	NTypo         int     `json:"n_typo"`
	N             int     `json:"n"`
}

// Performance summarizes memory and runtime samples for one task.
type Performance struct {
	MeanMemory     Readable `json:"mean_memory"`
	MinMemory      Readable `json:"min_memory"`
	MaxMemory      Readable `json:"max_memory"`
	MeanRuntime    Readable `json:"mean_runtime"`
	FastestRuntime Readable `json:"fastest_runtime"`
	SlowestRuntime Readable `json:"slowest_runtime"`
}

// TaskResult holds the results for an accuracy-based task.
type TaskResult struct {
	Score        AccuracyScore            `json:"score"`
	PerDomain    map[string]AccuracyScore `json:"per_domain"`
	Performances Performance              `json:"performances"`
}

// CompletionResult holds the auto-completion results, with extra breakdowns
// by completion rate and by the presence of a typo in the partial word.
type CompletionResult struct {
	Score             AccuracyScore            `json:"score"`
	PerDomain         map[string]AccuracyScore `json:"per_domain"`
	PerCompletionRate map[string]AccuracyScore `json:"per_completion_rate"`
	PerOther          map[string]AccuracyScore `json:"per_other"`
	Performances      Performance              `json:"performances"`
}

// CorrectionResult holds the auto-correction results, with extra breakdowns
// by typo kind and by the number of stacked typos.
type CorrectionResult struct {
	Score            CorrectionScore            `json:"score"`
	PerDomain        map[string]CorrectionScore `json:"per_domain"`
	PerTypoType      map[string]CorrectionScore `json:"per_typo_type"`
	PerNumberOfTypos map[string]CorrectionScore `json:"per_number_of_typos"`
	Performances     Performance                `json:"performances"`
}

// Results is the complete evaluation output.
type Results struct {
	NextWordPrediction TaskResult       `json:"next_word_prediction"`
	AutoCompletion     CompletionResult `json:"auto_completion"`
	AutoCorrection     CorrectionResult `json:"auto_correction"`
	SwipeResolution    TaskResult       `json:"swipe_resolution"`
	OverallScore       float64          `json:"overall_score"`
}

// OneScore folds the per-task metrics into a single comparable number.
// Next-word prediction and auto-completion use top-3 metrics since the user
// picks from a suggestion list; auto-correction and swipe resolution use
// top-1 metrics since they apply without user input.
func OneScore(r Results) float64 {
	return 0.15*r.NextWordPrediction.Score.Top3Accuracy +
		0.2*r.AutoCompletion.Score.Top3Accuracy +
		0.4*r.AutoCorrection.Score.Fscore +
		0.25*r.SwipeResolution.Score.Accuracy
}

// Score computes the final metrics from the accumulated counts. beta tunes
// the F-score used for auto-correction.
func (s *Scorer) Score(beta float64) Results {
	results := Results{
		NextWordPrediction: s.scoreNextWord(),
		AutoCompletion:     s.scoreCompletion(),
		AutoCorrection:     s.scoreCorrection(beta),
		SwipeResolution:    s.scoreSwipe(),
	}
	results.OverallScore = OneScore(results)
	return results
}

func (s *Scorer) scoreNextWord() TaskResult {
	total := Count{}
	perDomain := make(map[string]AccuracyScore, len(s.nwpCounts))
	for domain, c := range s.nwpCounts {
		total = total.Add(c)
		perDomain[domain] = scoreAccuracy(c)
	}
	return TaskResult{
		Score:        scoreAccuracy(total),
		PerDomain:    perDomain,
		Performances: s.scorePerformances(s.nwpMemories, s.nwpRuntimes),
	}
}

func (s *Scorer) scoreCompletion() CompletionResult {
	total := Count{}
	perDomainCounts := make(map[string]Count)
	perRateCounts := make(map[float64]Count)
	perOtherCounts := map[string]Count{withoutTypo: {}, withTypo: {}}

	for domain, byTypo := range s.acpCounts {
		for hasTypo, byRate := range byTypo {
			for rate, c := range byRate {
				total = total.Add(c)
				perDomainCounts[domain] = perDomainCounts[domain].Add(c)
				perRateCounts[rate] = perRateCounts[rate].Add(c)
				perOtherCounts[hasTypo] = perOtherCounts[hasTypo].Add(c)
			}
		}
	}

	perDomain := make(map[string]AccuracyScore, len(perDomainCounts))
	for domain, c := range perDomainCounts {
		perDomain[domain] = scoreAccuracy(c)
	}

	rateBuckets := map[string]Count{}
	for rate, c := range perRateCounts {
		switch {
		case rate < 0.25:
			rateBuckets["<25%"] = rateBuckets["<25%"].Add(c)
		case rate < 0.5:
			rateBuckets["25%~50%"] = rateBuckets["25%~50%"].Add(c)
		case rate < 0.75:
			rateBuckets["50%~75%"] = rateBuckets["50%~75%"].Add(c)
		default:
			rateBuckets[">75%"] = rateBuckets[">75%"].Add(c)
		}
	}
	perRate := make(map[string]AccuracyScore, 4)
	for _, bucket := range []string{"<25%", "25%~50%", "50%~75%", ">75%"} {
		perRate[bucket] = scoreAccuracy(rateBuckets[bucket])
	}

	perOther := map[string]AccuracyScore{
		withoutTypo: scoreAccuracy(perOtherCounts[withoutTypo]),
		withTypo:    scoreAccuracy(perOtherCounts[withTypo]),
	}

	return CompletionResult{
		Score:             scoreAccuracy(total),
		PerDomain:         perDomain,
		PerCompletionRate: perRate,
		PerOther:          perOther,
		Performances:      s.scorePerformances(s.acpMemories, s.acpRuntimes),
	}
}

func (s *Scorer) scoreCorrection(beta float64) CorrectionResult {
	// Per-domain split into clean and noisy counts.
	noTypoPerDomain := make(map[string]Count)
	typoPerDomain := make(map[string]Count)
	for domain, byClass := range s.acrCounts {
		for class, c := range byClass {
			if class.n == 0 {
				noTypoPerDomain[domain] = noTypoPerDomain[domain].Add(c)
			} else {
				typoPerDomain[domain] = typoPerDomain[domain].Add(c)
			}
		}
	}
	noTypoTotal, typoTotal := Count{}, Count{}
	for _, c := range noTypoPerDomain {
		noTypoTotal = noTypoTotal.Add(c)
	}
	for _, c := range typoPerDomain {
		typoTotal = typoTotal.Add(c)
	}
	perDomain := make(map[string]CorrectionScore, len(noTypoPerDomain))
	for domain := range noTypoPerDomain {
		perDomain[domain] = scorePrecisionRecall(noTypoPerDomain[domain], typoPerDomain[domain], beta)
	}

	// Global split by typo class. The clean counts are not bucketed by
	// class, so they get redistributed across the classes in proportion to
	// each class's share of the noisy total.
	typoPerClass := make(map[typoClass]Count)
	for _, byClass := range s.acrCounts {
		for class, c := range byClass {
			if class.n > 0 {
				typoPerClass[class] = typoPerClass[class].Add(c)
			}
		}
	}
	noTypoPerClass := make(map[typoClass]Count, len(typoPerClass))
	if typoTotal.Total > 0 {
		for class, c := range typoPerClass {
			noTypoPerClass[class] = noTypoTotal.Scale(float64(c.Total) / float64(typoTotal.Total))
		}
	}

	perTypoType := make(map[string]CorrectionScore, len(noise.AllTypos))
	for _, t := range noise.AllTypos {
		class := typoClass{n: 1, typo: t}
		perTypoType[t.String()] = scorePrecisionRecall(noTypoPerClass[class], typoPerClass[class], beta)
	}

	single, singleClean := Count{}, Count{}
	multi3, multi3Clean := Count{}, Count{}
	for class, c := range typoPerClass {
		switch {
		case class.n == 1:
			single = single.Add(c)
			singleClean = singleClean.Add(noTypoPerClass[class])
		case class.n > 2:
			multi3 = multi3.Add(c)
			multi3Clean = multi3Clean.Add(noTypoPerClass[class])
		}
	}
	double := typoClass{n: 2}
	perNumber := map[string]CorrectionScore{
		"1":  scorePrecisionRecall(singleClean, single, beta),
		"2":  scorePrecisionRecall(noTypoPerClass[double], typoPerClass[double], beta),
		"3+": scorePrecisionRecall(multi3Clean, multi3, beta),
	}

	return CorrectionResult{
		Score:            scorePrecisionRecall(noTypoTotal, typoTotal, beta),
		PerDomain:        perDomain,
		PerTypoType:      perTypoType,
		PerNumberOfTypos: perNumber,
		Performances:     s.scorePerformances(s.acrMemories, s.acrRuntimes),
	}
}

func (s *Scorer) scoreSwipe() TaskResult {
	total := Count{}
	perDomain := make(map[string]AccuracyScore, len(s.swpCounts))
	for domain, c := range s.swpCounts {
		total = total.Add(c)
		perDomain[domain] = scoreAccuracy(c)
	}
	return TaskResult{
		Score:        scoreAccuracy(total),
		PerDomain:    perDomain,
		Performances: s.scorePerformances(s.swpMemories, s.swpRuntimes),
	}
}

func scoreAccuracy(c Count) AccuracyScore {
	score := AccuracyScore{N: c.Total}
	if c.Total != 0 {
		score.Accuracy = roundToN(float64(c.Correct)/float64(c.Total), 2)
		score.Top3Accuracy = roundToN(float64(c.Correct3)/float64(c.Total), 2)
	}
	return score
}

func scorePrecisionRecall(noTypoC, typoC Count, beta float64) CorrectionScore {
	tn := noTypoC.Correct
	fp := noTypoC.Total - noTypoC.Correct
	tp := typoC.Correct
	fn := typoC.Total - typoC.Correct

	tn3 := noTypoC.Correct3
	fp3 := noTypoC.Total - noTypoC.Correct3
	tp3 := typoC.Correct3
	fn3 := typoC.Total - typoC.Correct3

	p := precisionMetric(tp, fp)
	r := recallMetric(tp, fn)
	p3 := precisionMetric(tp3, fp3)
	r3 := recallMetric(tp3, fn3)

	return CorrectionScore{
		Accuracy:      roundToN(accuracyMetric(tp, tn, fp, fn), 2),
		Precision:     roundToN(p, 2),
		Recall:        roundToN(r, 2),
		Fscore:        roundToN(fbeta(p, r, beta), 2),
		Top3Accuracy:  roundToN(accuracyMetric(tp3, tn3, fp3, fn3), 2),
		Top3Precision: roundToN(p3, 2),
		Top3Recall:    roundToN(r3, 2),
		Top3Fscore:    roundToN(fbeta(p3, r3, beta), 2),
		NTypo:         typoC.Total,
		N:             noTypoC.Total + typoC.Total,
	}
}

func (s *Scorer) scorePerformances(memories, runtimes []int64) Performance {
	perf := Performance{
		MeanMemory:     Readable{Raw: meanInt64(memories)},
		MinMemory:      Readable{Raw: float64(minInt64(memories))},
		MaxMemory:      Readable{Raw: float64(maxInt64(memories))},
		MeanRuntime:    Readable{Raw: meanInt64(runtimes)},
		FastestRuntime: Readable{Raw: float64(minInt64(runtimes))},
		SlowestRuntime: Readable{Raw: float64(maxInt64(runtimes))},
	}
	if !s.rawPerf {
		perf.MeanMemory.Human = humanReadableMemory(perf.MeanMemory.Raw)
		perf.MinMemory.Human = humanReadableMemory(perf.MinMemory.Raw)
		perf.MaxMemory.Human = humanReadableMemory(perf.MaxMemory.Raw)
		perf.MeanRuntime.Human = humanReadableRuntime(perf.MeanRuntime.Raw)
		perf.FastestRuntime.Human = humanReadableRuntime(perf.FastestRuntime.Raw)
		perf.SlowestRuntime.Human = humanReadableRuntime(perf.SlowestRuntime.Raw)
	}
	return perf
}
