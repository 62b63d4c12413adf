package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/linuxmatters/deadair/internal/analyzer"
	"github.com/linuxmatters/deadair/internal/audio"
	"github.com/linuxmatters/deadair/internal/cli"
	"github.com/linuxmatters/deadair/internal/config"
	"github.com/linuxmatters/deadair/internal/logging"
	"github.com/linuxmatters/deadair/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version    bool     `short:"v" help:"Show version information"`
	Config     string   `short:"c" type:"path" help:"Path to YAML config file (optional)"`
	Logs       bool     `help:"Save detailed analysis reports next to each input"`
	JSON       bool     `help:"Print the cut plan as JSON instead of running the TUI"`
	MinSilence float64  `default:"0.5" help:"Shortest silence worth cutting, in seconds"`
	Files      []string `arg:"" name:"files" help:"Recordings to analyze" type:"existingfile" optional:""`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("deadair"),
		kong.Description("Adaptive silence analysis for recorded video"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Validate input
	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	// Load optional tuning config
	var cfg *config.Config
	if cliArgs.Config != "" {
		var err error
		cfg, err = config.Load(cliArgs.Config)
		if err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
	}

	minSilence := cliArgs.MinSilence
	if cfg != nil && cfg.MinSilence != nil {
		minSilence = *cfg.MinSilence
	}
	opts := cfg.ExtractOptions()

	// Piped output gets the machine-readable plan; the TUI needs a terminal.
	if cliArgs.JSON || !isatty.IsTerminal(os.Stdout.Fd()) {
		if err := runPlain(cliArgs, minSilence, opts); err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
		return
	}

	runTUI(cliArgs, minSilence, opts)
}

// filePlan is one file's entry in the JSON cut plan.
type filePlan struct {
	Input        string                     `json:"input"`
	DurationSecs float64                    `json:"duration_secs"`
	ThresholdDb  float64                    `json:"threshold_db"`
	AnalysisInfo string                     `json:"analysis_info"`
	Silences     []analyzer.SilenceInterval `json:"silences"`
	Segments     []analyzer.Segment         `json:"segments"`
	Error        string                     `json:"error,omitempty"`
}

// runPlain analyzes every file and prints the cut plan as JSON on stdout.
// Logs go to stderr so the plan stays machine-readable.
func runPlain(cliArgs *CLI, minSilence float64, opts analyzer.ExtractOptions) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	a := analyzer.New(audio.NewMeter())
	plans := make([]filePlan, 0, len(cliArgs.Files))
	failed := 0

	for _, inputPath := range cliArgs.Files {
		plan := analyzeOne(context.Background(), a, inputPath, minSilence, opts, cliArgs.Logs)
		if plan.Error != "" {
			failed++
		}
		plans = append(plans, plan)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(plans); err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(cliArgs.Files))
	}
	return nil
}

// analyzeOne runs the full pipeline for a single file and builds its plan.
func analyzeOne(ctx context.Context, a *analyzer.Analyzer, inputPath string, minSilence float64, opts analyzer.ExtractOptions, writeReport bool) filePlan {
	startTime := time.Now()
	plan := filePlan{Input: inputPath}

	result, err := a.AnalyzeFile(ctx, inputPath, minSilence)
	if err != nil {
		plan.Error = err.Error()
		return plan
	}

	totalDuration, err := a.Duration(ctx, inputPath)
	if err != nil {
		plan.Error = err.Error()
		return plan
	}

	segments := analyzer.ExtractSegments(result.Silences, totalDuration, opts)

	plan.DurationSecs = totalDuration
	plan.ThresholdDb = result.ThresholdDb
	plan.AnalysisInfo = result.AnalysisInfo
	plan.Silences = result.Silences
	plan.Segments = segments

	if writeReport {
		reportData := logging.ReportData{
			InputPath:    inputPath,
			StartTime:    startTime,
			EndTime:      time.Now(),
			DurationSecs: totalDuration,
			MinSilence:   minSilence,
			Result:       result,
			Segments:     segments,
			Options:      opts,
		}
		if err := logging.GenerateReport(reportData); err != nil {
			slog.Warn("report generation failed", "path", inputPath, "error", err)
		}
	}

	return plan
}

// runTUI drives the Bubbletea interface while analysis runs in the background.
func runTUI(cliArgs *CLI, minSilence float64, opts analyzer.ExtractOptions) {
	// Route slog to a debug file so the alt-screen TUI stays clean
	debugLog, err := os.Create("deadair-debug.log")
	if err == nil {
		defer debugLog.Close()
		slog.SetDefault(slog.New(slog.NewTextHandler(debugLog, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	model := ui.NewModel(cliArgs.Files)
	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		a := analyzer.New(audio.NewMeter())

		for i, inputPath := range cliArgs.Files {
			startTime := time.Now()

			p.Send(ui.FileStartMsg{
				FileIndex: i,
				FileName:  inputPath,
			})

			fileIndex := i
			a.Progress = func(stage analyzer.Stage, done bool) {
				p.Send(ui.StageMsg{
					FileIndex: fileIndex,
					Stage:     stage,
					Done:      done,
				})
			}

			result, err := a.AnalyzeFile(context.Background(), inputPath, minSilence)
			if err != nil {
				p.Send(ui.FileCompleteMsg{
					FileIndex: i,
					Error:     err,
				})
				continue
			}

			totalDuration, err := a.Duration(context.Background(), inputPath)
			if err != nil {
				p.Send(ui.FileCompleteMsg{
					FileIndex: i,
					Error:     err,
				})
				continue
			}

			segments := analyzer.ExtractSegments(result.Silences, totalDuration, opts)

			var reportPath string
			if cliArgs.Logs {
				reportData := logging.ReportData{
					InputPath:    inputPath,
					StartTime:    startTime,
					EndTime:      time.Now(),
					DurationSecs: totalDuration,
					MinSilence:   minSilence,
					Result:       result,
					Segments:     segments,
					Options:      opts,
				}
				if err := logging.GenerateReport(reportData); err != nil {
					slog.Warn("report generation failed", "path", inputPath, "error", err)
				} else {
					reportPath = logging.ReportPath(inputPath)
				}
			}

			silencePct := 0.0
			if totalDuration > 0 {
				var silent float64
				for _, s := range result.Silences {
					silent += s.Duration()
				}
				silencePct = silent / totalDuration * 100
			}

			p.Send(ui.FileCompleteMsg{
				FileIndex:   i,
				ThresholdDb: result.ThresholdDb,
				SilencePct:  silencePct,
				Adjusted:    resultAdjusted(result),
				Duration:    totalDuration,
				Segments:    segments,
				ReportPath:  reportPath,
			})
		}

		p.Send(ui.AllCompleteMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		os.Exit(1)
	}
}

// resultAdjusted reports whether the sensitive pass won, parsed from the
// analysis info line.
func resultAdjusted(result *analyzer.AdaptiveResult) bool {
	return result != nil && strings.Contains(result.AnalysisInfo, "adjusted=true")
}
