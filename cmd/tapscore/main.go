// Package main provides the CLI entrypoint for tapscore.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vintr-dev/tapscore/internal/config"
	"github.com/vintr-dev/tapscore/internal/corrector"
	"github.com/vintr-dev/tapscore/internal/dataset"
	"github.com/vintr-dev/tapscore/internal/layout"
	"github.com/vintr-dev/tapscore/internal/noise"
	"github.com/vintr-dev/tapscore/internal/oracle"
	"github.com/vintr-dev/tapscore/internal/report"
	"github.com/vintr-dev/tapscore/internal/resultsui"
	"github.com/vintr-dev/tapscore/internal/scorer"
	"github.com/vintr-dev/tapscore/internal/store"
)

const (
	defaultLang        = "en-US"
	defaultSeed        = int64(42)
	defaultTopMistakes = 10
	defaultPlotHeight  = 10
)

var (
	runLang          string
	runDataset       string
	runLayout        string
	runWordlist      string
	runMaxSentences  int
	runWorkers       int
	runSeed          int64
	runBeta          float64
	runTrackMistakes bool
	runTopMistakes   int
	runCacheDir      string
	runDB            string
	runXOffset       float64
	runYOffset       float64
	runXRatio        float64
	runYRatio        float64
	runJSON          bool
	runRaw           bool
	runNoStore       bool

	runsLang  string
	runsLimit int
	runsPlot  bool
	runsDB    string

	reportID   int64
	reportFile string
	reportJSON bool
	reportDB   string

	resultsLang string
	resultsDB   string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tapscore",
		Short:         "Keyboard correction quality benchmark",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newRunsCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newResultsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a corrector against a dataset",
		Args:  cobra.NoArgs,
		RunE:  runRunCmd,
	}
	cmd.Flags().StringVar(&runLang, "lang", defaultLang, "language code (default: en-US)")
	cmd.Flags().StringVar(&runDataset, "dataset", "", "dataset path ({domain: [sentences]} JSON)")
	cmd.Flags().StringVar(&runLayout, "layout", "", "custom keyboard layout (JSON path or layout name)")
	cmd.Flags().StringVar(&runWordlist, "wordlist", "", "word list path for the baseline corrector")
	cmd.Flags().IntVar(&runMaxSentences, "max-sentences", 0, "cap on sentences across domains (0 = all)")
	cmd.Flags().IntVar(&runWorkers, "workers", runtime.NumCPU(), "number of parallel workers")
	cmd.Flags().Int64Var(&runSeed, "seed", defaultSeed, "base random seed")
	cmd.Flags().Float64Var(&runBeta, "beta", scorer.DefaultBeta, "beta for the auto-correction F-score")
	cmd.Flags().BoolVar(&runTrackMistakes, "track-mistakes", false, "report the most common mistakes per task")
	cmd.Flags().IntVar(&runTopMistakes, "top-mistakes", defaultTopMistakes, "number of mistakes to report per task")
	cmd.Flags().StringVar(&runCacheDir, "cache-dir", "", "cache directory for the typo corpus")
	cmd.Flags().StringVar(&runDB, "db", "", "path to the run database")
	cmd.Flags().Float64Var(&runXOffset, "x-offset", 0, "horizontal tap offset")
	cmd.Flags().Float64Var(&runYOffset, "y-offset", 0, "vertical tap offset")
	cmd.Flags().Float64Var(&runXRatio, "x-ratio", noise.DefaultSigmaRatio, "horizontal tap precision ratio")
	cmd.Flags().Float64Var(&runYRatio, "y-ratio", noise.DefaultSigmaRatio, "vertical tap precision ratio")
	cmd.Flags().BoolVar(&runJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&runRaw, "raw", false, "report performance figures as raw numbers")
	cmd.Flags().BoolVar(&runNoStore, "no-store", false, "do not persist the run")
	return cmd
}

func runRunCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lang", &runLang, fileCfg.Evaluate.Lang)
	applyStringConfig(cmd, "dataset", &runDataset, fileCfg.Evaluate.Dataset)
	applyStringConfig(cmd, "layout", &runLayout, fileCfg.Evaluate.Layout)
	applyStringConfig(cmd, "wordlist", &runWordlist, fileCfg.Evaluate.Wordlist)
	applyIntConfig(cmd, "max-sentences", &runMaxSentences, fileCfg.Evaluate.MaxSentences)
	applyIntConfig(cmd, "workers", &runWorkers, fileCfg.Evaluate.Workers)
	applyInt64Config(cmd, "seed", &runSeed, fileCfg.Evaluate.Seed)
	applyFloatConfig(cmd, "beta", &runBeta, fileCfg.Evaluate.Beta)
	applyBoolConfig(cmd, "track-mistakes", &runTrackMistakes, fileCfg.Evaluate.TrackMistakes)
	applyIntConfig(cmd, "top-mistakes", &runTopMistakes, fileCfg.Evaluate.TopMistakes)
	applyStringConfig(cmd, "cache-dir", &runCacheDir, fileCfg.Evaluate.CacheDir)
	applyStringConfig(cmd, "db", &runDB, fileCfg.Evaluate.DB)
	applyFloatConfig(cmd, "x-offset", &runXOffset, fileCfg.Evaluate.XOffset)
	applyFloatConfig(cmd, "y-offset", &runYOffset, fileCfg.Evaluate.YOffset)
	applyFloatConfig(cmd, "x-ratio", &runXRatio, fileCfg.Evaluate.XRatio)
	applyFloatConfig(cmd, "y-ratio", &runYRatio, fileCfg.Evaluate.YRatio)

	if runWorkers < 1 {
		return fmt.Errorf("--workers must be >= 1")
	}
	if runBeta <= 0 {
		return fmt.Errorf("--beta must be > 0")
	}
	if runXRatio <= 0 || runYRatio <= 0 {
		return fmt.Errorf("--x-ratio and --y-ratio must be > 0")
	}

	datasetPath := runDataset
	if datasetPath == "" {
		datasetPath = config.DefaultDatasetPath(runLang)
	}
	data, err := dataset.Load(datasetPath)
	if err != nil {
		return datasetLoadError(runLang, datasetPath, err)
	}
	data = dataset.Cap(data, runMaxSentences, runSeed)
	total := 0
	for _, sentences := range data {
		total += len(sentences)
	}

	var keyboard *layout.Keyboard
	if runLayout != "" {
		kb, err := layout.LoadKeyboard(resolveLayoutPath(runLayout))
		if err != nil {
			return err
		}
		keyboard = &kb
	}

	baseline, err := buildBaseline(runLang, runWordlist, keyboard)
	if err != nil {
		return err
	}
	correctors := make([]corrector.Corrector, runWorkers)
	for i := range correctors {
		correctors[i] = baseline
	}

	probs, err := resolveProbabilities(fileCfg.Probabilities)
	if err != nil {
		return err
	}

	opts := []oracle.Option{
		oracle.WithBeta(runBeta),
		oracle.WithGaussian(runXOffset, runYOffset, runXRatio, runYRatio),
		oracle.WithProgress(func(done, total int) {
			logErrf("\rScored %d/%d sentences", done, total)
		}),
	}
	if keyboard != nil {
		opts = append(opts, oracle.WithKeyboard(*keyboard))
	}
	cacheDir := runCacheDir
	if cacheDir == "" {
		cacheDir = config.DefaultTypoCacheDir()
	}
	opts = append(opts, oracle.WithCacheDir(cacheDir))
	if probs != nil {
		opts = append(opts, oracle.WithProbabilities(probs))
	}
	if runTrackMistakes {
		opts = append(opts, oracle.TrackMistakes(runTopMistakes))
	}
	if runRaw {
		opts = append(opts, oracle.RawPerformances())
	}

	o := oracle.New(runLang, data, opts...)
	result, err := o.Evaluate(context.Background(), correctors, runSeed)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	logErrln("")

	if runJSON {
		if err := report.RenderJSON(os.Stdout, result.Results); err != nil {
			return fmt.Errorf("failed to render results: %w", err)
		}
	} else {
		if err := report.RenderResults(os.Stdout, result.Results); err != nil {
			return fmt.Errorf("failed to render results: %w", err)
		}
		if len(result.Mistakes) > 0 {
			if err := report.RenderMistakes(os.Stdout, result.Mistakes); err != nil {
				return fmt.Errorf("failed to render mistakes: %w", err)
			}
		}
	}

	if runNoStore {
		return nil
	}
	return persistRun(result.Results, datasetPath, total)
}

// resolveLayoutPath turns a bare layout name into a path under the layout
// directory. Values containing a path separator are used as-is.
func resolveLayoutPath(value string) string {
	if strings.ContainsRune(value, os.PathSeparator) || strings.HasSuffix(value, ".json") {
		return value
	}
	return filepath.Join(config.DefaultLayoutDir(), value+".json")
}

func buildBaseline(lang, wordlistPath string, keyboard *layout.Keyboard) (*corrector.Vocab, error) {
	path := wordlistPath
	if path == "" {
		path = config.DefaultWordlistPath(lang)
	}
	words, err := corrector.LoadWords(path)
	if err != nil {
		return nil, wordlistLoadError(lang, path, err)
	}

	var helper *layout.Helper
	if keyboard != nil {
		helper = layout.New(*keyboard)
	} else {
		kb, err := layout.Builtin(lang)
		if err != nil {
			return nil, err
		}
		helper = layout.New(kb)
	}
	return corrector.NewVocab(words, helper), nil
}

func persistRun(results scorer.Results, datasetPath string, sentences int) error {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	st, err := openStore(runDB)
	if err != nil {
		return err
	}
	defer closeStore(st)

	run := store.Run{
		CreatedAt:    time.Now().UTC(),
		Lang:         runLang,
		DatasetPath:  datasetPath,
		Seed:         runSeed,
		Workers:      runWorkers,
		Beta:         runBeta,
		Sentences:    sentences,
		OverallScore: results.OverallScore,
		ResultsJSON:  string(resultsJSON),
	}
	id, err := st.InsertRun(context.Background(), run, collectDomainScores(results))
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	logErrf("Stored run %d\n", id)
	return nil
}

func collectDomainScores(results scorer.Results) []store.DomainScore {
	var scores []store.DomainScore
	add := func(task string, perDomain map[string]scorer.AccuracyScore) {
		for domain, s := range perDomain {
			scores = append(scores, store.DomainScore{
				Task:         task,
				Domain:       domain,
				Accuracy:     s.Accuracy,
				Top3Accuracy: s.Top3Accuracy,
				N:            s.N,
			})
		}
	}
	add("next_word_prediction", results.NextWordPrediction.PerDomain)
	add("auto_completion", results.AutoCompletion.PerDomain)
	add("swipe_resolution", results.SwipeResolution.PerDomain)
	for domain, s := range results.AutoCorrection.PerDomain {
		scores = append(scores, store.DomainScore{
			Task:         "auto_correction",
			Domain:       domain,
			Accuracy:     s.Accuracy,
			Top3Accuracy: s.Top3Accuracy,
			N:            s.N,
		})
	}
	return scores
}

func resolveProbabilities(overrides map[string]float64) (map[noise.Typo]float64, error) {
	if len(overrides) == 0 {
		return nil, nil
	}
	probs := make(map[noise.Typo]float64, len(noise.DefaultProbs))
	for t, p := range noise.DefaultProbs {
		probs[t] = p
	}
	for name, p := range overrides {
		t, ok := noise.ParseTypo(name)
		if !ok {
			return nil, fmt.Errorf("unknown typo kind %q in config", name)
		}
		if p < 0 {
			return nil, fmt.Errorf("probability for %s must be >= 0", name)
		}
		probs[t] = p
	}
	return probs, nil
}

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Args:  cobra.NoArgs,
		RunE:  runRunsCmd,
	}
	cmd.Flags().StringVar(&runsLang, "lang", "", "language filter")
	cmd.Flags().IntVar(&runsLimit, "limit", 0, "limit to last N runs")
	cmd.Flags().BoolVar(&runsPlot, "plot", false, "plot score history")
	cmd.Flags().StringVar(&runsDB, "db", "", "path to the run database")
	return cmd
}

func runRunsCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore(runsDB)
	if err != nil {
		return err
	}
	defer closeStore(st)

	runs, err := st.ListRuns(context.Background(), runsLang, runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if runsPlot {
		scores := make([]float64, len(runs))
		for i, run := range runs {
			scores[len(runs)-1-i] = run.OverallScore
		}
		return report.RenderScoreHistory(cmd.OutOrStdout(), scores, report.TerminalWidth(), defaultPlotHeight)
	}
	return report.RenderRuns(cmd.OutOrStdout(), runs)
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a stored or exported result",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().Int64Var(&reportID, "id", 0, "run id (default: latest)")
	cmd.Flags().StringVar(&reportFile, "file", "", "results JSON file instead of a stored run")
	cmd.Flags().BoolVar(&reportJSON, "json", false, "print results as JSON")
	cmd.Flags().StringVar(&reportDB, "db", "", "path to the run database")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	var results scorer.Results
	if reportFile != "" {
		data, err := os.ReadFile(reportFile)
		if err != nil {
			return fmt.Errorf("failed to read results file: %w", err)
		}
		if err := json.Unmarshal(data, &results); err != nil {
			return fmt.Errorf("failed to decode results file: %w", err)
		}
	} else {
		st, err := openStore(reportDB)
		if err != nil {
			return err
		}
		defer closeStore(st)

		id := reportID
		if id == 0 {
			runs, err := st.ListRuns(context.Background(), "", 1)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			if len(runs) == 0 {
				return fmt.Errorf("no stored runs (run: tapscore run)")
			}
			id = runs[0].ID
		}
		run, err := st.GetRun(context.Background(), id)
		if err != nil {
			return fmt.Errorf("failed to load run %d: %w", id, err)
		}
		if err := json.Unmarshal([]byte(run.ResultsJSON), &results); err != nil {
			return fmt.Errorf("failed to decode run %d results: %w", id, err)
		}
	}

	if reportJSON {
		return report.RenderJSON(cmd.OutOrStdout(), results)
	}
	return report.RenderResults(cmd.OutOrStdout(), results)
}

func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Browse stored runs interactively",
		Args:  cobra.NoArgs,
		RunE:  runResultsCmd,
	}
	cmd.Flags().StringVar(&resultsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&resultsDB, "db", "", "path to the run database")
	return cmd
}

func runResultsCmd(_ *cobra.Command, _ []string) error {
	st, err := openStore(resultsDB)
	if err != nil {
		return err
	}
	defer closeStore(st)

	model := resultsui.NewModel(st, resultsLang)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run results TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func openStore(path string) (*store.Store, error) {
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tapscore configuration
# Uncomment a value to enable it. CLI flags override config values.

[evaluate]
# lang = %q              # Language code
# dataset = ""           # Dataset path ({domain: [sentences]} JSON)
# layout = ""            # Custom keyboard layout JSON path
# wordlist = ""          # Word list for the baseline corrector
# max-sentences = 0      # Cap on sentences across domains (0 = all)
# workers = %d            # Number of parallel workers (default: CPU count)
# seed = %d              # Base random seed
# beta = %.1f            # Beta for the auto-correction F-score
# track-mistakes = false # Report the most common mistakes per task
# top-mistakes = %d      # Number of mistakes to report per task
# x-ratio = %.0f         # Horizontal tap precision ratio
# y-ratio = %.0f         # Vertical tap precision ratio

# [probabilities]        # Override typo probabilities by name
# DELETE_CHAR = 0.005
# COMMON_TYPO = 0.05
`,
		defaultLang,
		runtime.NumCPU(),
		defaultSeed,
		scorer.DefaultBeta,
		defaultTopMistakes,
		noise.DefaultSigmaRatio,
		noise.DefaultSigmaRatio,
	)
}

func datasetLoadError(lang, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load dataset: %v", err),
		fmt.Sprintf("expected dataset at: %s", path),
		fmt.Sprintf("Provide one with: tapscore run --lang %s --dataset <path>", lang),
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func wordlistLoadError(lang, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list: %v", err),
		fmt.Sprintf("expected word list at: %s", path),
		fmt.Sprintf("Provide one with: tapscore run --lang %s --wordlist <path>", lang),
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
