package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/jivechunk/internal/audio"
	"github.com/linuxmatters/jivechunk/internal/cli"
	"github.com/linuxmatters/jivechunk/internal/config"
	"github.com/linuxmatters/jivechunk/internal/detect"
	"github.com/linuxmatters/jivechunk/internal/pipeline"
	"github.com/linuxmatters/jivechunk/internal/ui"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

// Defaults come from config (defaults, env, .env, YAML) via kong.Vars, so a
// flag given on the command line always wins.
var CLI struct {
	Input string `arg:"" name:"input" help:"Input audio file (.wav, .mp3, .flac)" optional:""`

	MinSilenceMs    int     `name:"min-silence-ms" help:"Shortest pause that splits speech, in ms" default:"${min_silence_ms}" group:"Detection"`
	SilenceThreshDB float64 `name:"silence-thresh-db" help:"Level below which audio is silence, in dBFS" default:"${silence_thresh_db}" group:"Detection"`
	PaddingMs       int     `name:"padding-ms" help:"Silence kept around each speech segment, in ms" default:"${padding_ms}" group:"Detection"`
	ScanStepMs      int     `name:"scan-step-ms" help:"Granularity of segment boundaries, in ms" default:"${scan_step_ms}" group:"Detection"`

	Mode    string  `help:"max: chunks no longer than --seconds; min: chunks at least --seconds" default:"${mode}" group:"Repacking"`
	Seconds float64 `help:"Duration bound for each chunk, in seconds" default:"${seconds}" group:"Repacking"`

	OutputDir string `name:"output-dir" help:"Directory for numbered chunk files (cleared first)" default:"${output_dir}" group:"Output"`
	Combined  string `help:"File receiving all chunks back to back (empty to skip)" default:"${combined}" group:"Output"`

	FFmpeg    string `name:"ffmpeg" help:"Path to the ffmpeg binary" default:"${ffmpeg}"`
	Config    string `name:"config" help:"YAML config file"`
	NoTUI     bool   `name:"no-tui" help:"Plain output instead of the progress display"`
	LogLevel  string `name:"log-level" help:"debug, info, warn or error" default:"${log_level}"`
	LogFormat string `name:"log-format" help:"text or json" default:"${log_format}"`
	LogFile   string `name:"log-file" help:"Write logs to this file" default:"${log_file}"`
	Version   bool   `help:"Show version information"`
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, config.FileFromArgs(os.Args[1:]))
	if err != nil {
		cli.PrintError(err.Error())
		return 1
	}

	kong.Parse(&CLI,
		kong.Name("jivechunk"),
		kong.Description(cli.Description),
		kong.Vars(flagDefaults(cfg)),
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if CLI.Version {
		cli.PrintVersion(version)
		return 0
	}

	if CLI.Input == "" {
		cli.PrintError("<input> is required")
		return 1
	}

	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		cli.PrintError(err.Error())
		return 1
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		cli.PrintError(err.Error())
		return 1
	}
	defer closeLog()

	p := pipeline.New(cfg, detect.NewFFmpeg(cfg.FFmpegPath), logger)

	if CLI.NoTUI {
		return runPlain(ctx, p)
	}
	return runTUI(ctx, p, cfg)
}

func flagDefaults(cfg *config.Config) kong.Vars {
	return kong.Vars{
		"version":           version,
		"min_silence_ms":    strconv.Itoa(cfg.SilenceMinLenMs),
		"silence_thresh_db": strconv.FormatFloat(cfg.SilenceThreshDB, 'f', -1, 64),
		"padding_ms":        strconv.Itoa(cfg.PaddingMs),
		"scan_step_ms":      strconv.Itoa(cfg.ScanStepMs),
		"mode":              cfg.Mode,
		"seconds":           strconv.FormatFloat(cfg.DurationBoundSec, 'f', -1, 64),
		"output_dir":        cfg.OutputDir,
		"combined":          cfg.CombinedPath,
		"ffmpeg":            cfg.FFmpegPath,
		"log_level":         cfg.LogLevel,
		"log_format":        cfg.LogFormat,
		"log_file":          cfg.LogFile,
	}
}

func applyFlags(cfg *config.Config) {
	cfg.SilenceMinLenMs = CLI.MinSilenceMs
	cfg.SilenceThreshDB = CLI.SilenceThreshDB
	cfg.PaddingMs = CLI.PaddingMs
	cfg.ScanStepMs = CLI.ScanStepMs
	cfg.Mode = CLI.Mode
	cfg.DurationBoundSec = CLI.Seconds
	cfg.OutputDir = CLI.OutputDir
	cfg.CombinedPath = CLI.Combined
	cfg.FFmpegPath = CLI.FFmpeg
	cfg.LogLevel = CLI.LogLevel
	cfg.LogFormat = CLI.LogFormat
	cfg.LogFile = CLI.LogFile
}

// newLogger writes to the log file when one is set, otherwise to stderr in
// plain mode. The progress display owns the terminal, so without a log file
// logs are dropped while it runs.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		return cfg.NewLogger(f), func() { _ = f.Close() }, nil
	}

	var w io.Writer = io.Discard
	if CLI.NoTUI {
		w = os.Stderr
	}
	return cfg.NewLogger(w), func() {}, nil
}

func runPlain(ctx context.Context, p *pipeline.Pipeline) int {
	cli.PrintBanner()

	res, err := p.Run(ctx, CLI.Input, func(e pipeline.Event) {
		switch e.Stage {
		case pipeline.StageLoad:
			cli.PrintInfo("Loaded audio", fmt.Sprintf("%s (%s, %s)", CLI.Input, cli.FormatSeconds(e.Source), e.Format))
		case pipeline.StageDetect:
			cli.PrintInfo("Speech segments", strconv.Itoa(e.Segments))
		case pipeline.StageRepack:
			cli.PrintSection(fmt.Sprintf("Saving %d chunks", e.Chunks))
		case pipeline.StageExport:
			cli.PrintChunk(e.Chunk.Index, e.Chunk.Duration)
		}
	})
	if err != nil {
		printFailure(err)
		return 1
	}

	cli.PrintSummary(res)
	return 0
}

func runTUI(ctx context.Context, p *pipeline.Pipeline, cfg *config.Config) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(CLI.Input, cfg.Bound())
	program := tea.NewProgram(model)

	var res *pipeline.Result
	var runErr error
	done := make(chan struct{})

	go func() {
		defer close(done)
		res, runErr = p.Run(ctx, CLI.Input, func(e pipeline.Event) {
			if msg := eventMsg(e); msg != nil {
				program.Send(msg)
			}
		})
		if runErr != nil {
			program.Send(ui.RunFailed{Err: runErr})
			return
		}
		program.Send(ui.RunComplete{Summary: cli.Summary(res)})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		cli.PrintError(fmt.Sprintf("running UI: %v", err))
		return 1
	}

	if errors.Is(model.Err(), ui.ErrInterrupted) {
		cancel()
	}
	<-done

	if runErr != nil {
		printFailure(runErr)
		return 1
	}

	// The UI may have quit before RunComplete arrived.
	if summary := model.CompletionSummary(); summary != "" {
		cli.PrintBox(summary)
	} else {
		cli.PrintSummary(res)
	}
	return 0
}

func eventMsg(e pipeline.Event) tea.Msg {
	switch e.Stage {
	case pipeline.StageLoad:
		return ui.LoadComplete{Source: e.Source, Format: e.Format}
	case pipeline.StageDetect:
		return ui.DetectComplete{Segments: e.Segments}
	case pipeline.StageRepack:
		return ui.RepackComplete{Chunks: e.Chunks}
	case pipeline.StageExport:
		return ui.ChunkSaved{Done: e.Done, Total: e.Total, Index: e.Chunk.Index, Duration: e.Chunk.Duration}
	default:
		return nil
	}
}

func printFailure(err error) {
	cli.PrintError(err.Error())

	switch {
	case errors.Is(err, context.Canceled):
		cli.PrintHint("Run cancelled; chunk files written so far were kept.")
	case errors.Is(err, audio.ErrFileNotFound):
		cli.PrintHint("Check the input path.")
	case errors.Is(err, audio.ErrUnsupportedFormat):
		cli.PrintHint("Supported formats: .wav, .mp3, .flac")
	case errors.Is(err, detect.ErrDetectionFailure):
		cli.PrintHint("No valid chunks detected. Check silence threshold settings (--silence-thresh-db, --min-silence-ms) and that ffmpeg is installed.")
	}
}
