// Package pipeline runs one chunking job: load, detect, repack, export.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/linuxmatters/jivechunk/internal/audio"
	"github.com/linuxmatters/jivechunk/internal/config"
	"github.com/linuxmatters/jivechunk/internal/detect"
	"github.com/linuxmatters/jivechunk/internal/export"
	"github.com/linuxmatters/jivechunk/internal/repack"
)

// Stage identifies a step of the pipeline.
type Stage int

const (
	StageLoad Stage = iota
	StageDetect
	StageRepack
	StageExport
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "load"
	case StageDetect:
		return "detect"
	case StageRepack:
		return "repack"
	case StageExport:
		return "export"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Event reports a finished step. StageExport is reported once per chunk.
type Event struct {
	Stage    Stage
	Source   time.Duration // StageLoad: length of the input
	Format   string        // StageLoad: e.g. "44.1kHz 16-bit stereo"
	Segments int           // StageDetect: speech segments found
	Chunks   int           // StageRepack: chunks to write
	Done     int           // StageExport
	Total    int           // StageExport
	Chunk    export.Written
}

// ProgressFunc receives events in order from the goroutine calling Run.
type ProgressFunc func(Event)

// Result summarises a completed run.
type Result struct {
	RunID        string
	Input        string
	Source       time.Duration
	Format       string
	Segments     int
	Mode         repack.Mode
	Bound        time.Duration
	Chunks       []export.Written
	CombinedPath string
	Elapsed      time.Duration
}

// Pipeline wires configuration, a silence detector and a logger together.
type Pipeline struct {
	cfg      *config.Config
	detector detect.Detector
	logger   *slog.Logger
}

// New creates a Pipeline.
func New(cfg *config.Config, detector detect.Detector, logger *slog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, detector: detector, logger: logger}
}

// Run processes input. On error, chunk files already written stay on disk.
func (p *Pipeline) Run(ctx context.Context, input string, progress ProgressFunc) (*Result, error) {
	if progress == nil {
		progress = func(Event) {}
	}
	start := time.Now()
	res := &Result{
		RunID:        uuid.NewString(),
		Input:        input,
		Mode:         p.cfg.RepackMode(),
		Bound:        p.cfg.Bound(),
		CombinedPath: p.cfg.CombinedPath,
	}
	log := p.logger.With(slog.String("run_id", res.RunID))

	log.Debug("starting run", slog.String("input", input), slog.String("config", p.cfg.String()))

	// Load
	buf, err := audio.Load(input)
	if err != nil {
		log.Error("load failed", slog.String("input", input), slog.String("error", err.Error()))
		return nil, fmt.Errorf("load %s: %w", input, err)
	}
	res.Source = buf.Duration()
	res.Format = buf.FormatString()
	log.Info("loaded audio",
		slog.String("input", input),
		slog.Float64("seconds", res.Source.Seconds()),
		slog.String("format", res.Format),
	)
	progress(Event{Stage: StageLoad, Source: res.Source, Format: res.Format})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Detect
	segments, err := detect.Split(ctx, p.detector, input, buf, p.cfg.DetectParams())
	if err != nil {
		log.Error("silence detection failed", slog.String("error", err.Error()))
		return nil, err
	}
	res.Segments = len(segments)
	log.Info("detected speech segments", slog.Int("segments", res.Segments))
	progress(Event{Stage: StageDetect, Segments: res.Segments})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Repack
	if err := export.PrepareDir(p.cfg.OutputDir); err != nil {
		log.Error("output directory", slog.String("dir", p.cfg.OutputDir), slog.String("error", err.Error()))
		return nil, err
	}
	chunks, err := repack.Repack(segments, res.Mode, res.Bound)
	if err != nil {
		log.Error("repack failed", slog.String("mode", string(res.Mode)), slog.String("error", err.Error()))
		return nil, err
	}
	log.Info("repacked segments",
		slog.String("mode", string(res.Mode)),
		slog.Float64("bound_seconds", res.Bound.Seconds()),
		slog.Int("chunks", len(chunks)),
	)
	progress(Event{Stage: StageRepack, Chunks: len(chunks)})

	// Export
	written, err := export.Write(ctx, chunks, export.Options{
		Dir:          p.cfg.OutputDir,
		FirstIndex:   p.cfg.FirstIndex(),
		CombinedPath: p.cfg.CombinedPath,
	}, func(done, total int, w export.Written) {
		log.Info("saved chunk",
			slog.Int("index", w.Index),
			slog.String("path", w.Path),
			slog.Float64("seconds", w.Duration.Seconds()),
		)
		progress(Event{Stage: StageExport, Done: done, Total: total, Chunk: w})
	})
	res.Chunks = written
	if err != nil {
		log.Error("export failed", slog.Int("written", len(written)), slog.String("error", err.Error()))
		return nil, err
	}

	res.Elapsed = time.Since(start)
	log.Info("run complete",
		slog.Int("chunks", len(written)),
		slog.String("output_dir", p.cfg.OutputDir),
		slog.Duration("elapsed", res.Elapsed),
	)
	progress(Event{Stage: StageDone, Chunks: len(written)})
	return res, nil
}
