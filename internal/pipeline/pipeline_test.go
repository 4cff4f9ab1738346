package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/jivechunk/internal/audio"
	"github.com/linuxmatters/jivechunk/internal/config"
	"github.com/linuxmatters/jivechunk/internal/detect"
)

type fakeDetector struct {
	silences []detect.Interval
	err      error
}

func (f fakeDetector) Silences(context.Context, string, detect.Params) ([]detect.Interval, error) {
	return f.silences, f.err
}

// writeInput writes a 10s mono 1kHz ramp and returns its path.
func writeInput(t *testing.T) string {
	t.Helper()
	data := make([]int, 10000)
	for i := range data {
		data[i] = i%2000 - 1000
	}
	pcm, err := audio.NewPCM(data, 1000, 1, 16)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "episode.wav")
	require.NoError(t, audio.WriteWAV(path, pcm))
	return path
}

func testConfig(t *testing.T, mode string, seconds string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.FromEnv(context.Background(), envconfig.MapLookuper(map[string]string{
		"JIVECHUNK_MODE":       mode,
		"JIVECHUNK_SECONDS":    seconds,
		"JIVECHUNK_PADDING_MS": "0",
		"JIVECHUNK_OUTPUT_DIR": filepath.Join(dir, "chunks"),
		"JIVECHUNK_COMBINED":   filepath.Join(dir, "combined_audio.wav"),
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Silence at 3-5s leaves speech of 3s and 5s.
var midSilence = fakeDetector{silences: []detect.Interval{{Start: 3 * time.Second, End: 5 * time.Second}}}

func TestRunMaxMode(t *testing.T) {
	input := writeInput(t)
	cfg := testConfig(t, "max", "4")

	var events []Event
	res, err := New(cfg, midSilence, discardLogger()).Run(context.Background(), input, func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, res.Source)
	assert.Equal(t, "1.0kHz 16-bit mono", res.Format)
	assert.Equal(t, 2, res.Segments)
	require.Len(t, res.Chunks, 2)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "0.wav"), res.Chunks[0].Path)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "1.wav"), res.Chunks[1].Path)
	assert.Equal(t, 4*time.Second, res.Chunks[0].Duration)
	assert.Equal(t, 4*time.Second, res.Chunks[1].Duration)
	assert.NotEmpty(t, res.RunID)

	var stages []Stage
	for _, e := range events {
		stages = append(stages, e.Stage)
	}
	assert.Equal(t, []Stage{StageLoad, StageDetect, StageRepack, StageExport, StageExport, StageDone}, stages)

	combined, err := audio.Load(cfg.CombinedPath)
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, combined.Duration())
}

func TestRunMinMode(t *testing.T) {
	input := writeInput(t)
	cfg := testConfig(t, "min", "4")

	res, err := New(cfg, midSilence, discardLogger()).Run(context.Background(), input, nil)
	require.NoError(t, err)

	require.Len(t, res.Chunks, 1)
	assert.Equal(t, 1, res.Chunks[0].Index)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "1.wav"), res.Chunks[0].Path)
	assert.Equal(t, 8*time.Second, res.Chunks[0].Duration)
}

func TestRunConservesSpeech(t *testing.T) {
	input := writeInput(t)
	cfg := testConfig(t, "max", "2.5")

	res, err := New(cfg, midSilence, discardLogger()).Run(context.Background(), input, nil)
	require.NoError(t, err)

	source, err := audio.Load(input)
	require.NoError(t, err)
	first, err := source.Slice(0, 3*time.Second)
	require.NoError(t, err)
	second, err := source.Slice(5*time.Second, 10*time.Second)
	require.NoError(t, err)
	want, err := first.Concat(second)
	require.NoError(t, err)

	var got []int
	for _, c := range res.Chunks {
		assert.LessOrEqual(t, c.Duration, 2500*time.Millisecond)
		chunk, err := audio.Load(c.Path)
		require.NoError(t, err)
		got = append(got, chunk.IntBuffer().Data...)
	}
	assert.Equal(t, want.IntBuffer().Data, got)
}

func TestRunClearsOutputDir(t *testing.T) {
	input := writeInput(t)
	cfg := testConfig(t, "max", "180")
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0o755))
	stale := filepath.Join(cfg.OutputDir, "42.wav")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := New(cfg, midSilence, discardLogger()).Run(context.Background(), input, nil)
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "0.wav"))
}

func TestRunMissingInput(t *testing.T) {
	cfg := testConfig(t, "max", "180")
	_, err := New(cfg, midSilence, discardLogger()).Run(context.Background(), filepath.Join(t.TempDir(), "nope.wav"), nil)
	assert.ErrorIs(t, err, audio.ErrFileNotFound)
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestRunDetectionFailure(t *testing.T) {
	input := writeInput(t)
	cfg := testConfig(t, "max", "180")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	_, err := New(cfg, fakeDetector{err: errors.New("ffmpeg exploded")}, logger).Run(context.Background(), input, nil)
	assert.ErrorIs(t, err, detect.ErrDetectionFailure)
	assert.NoDirExists(t, cfg.OutputDir)
	assert.Contains(t, logs.String(), "run_id=")
	assert.Contains(t, logs.String(), "ffmpeg exploded")
}

func TestRunAllSilence(t *testing.T) {
	input := writeInput(t)
	cfg := testConfig(t, "max", "180")

	silent := fakeDetector{silences: []detect.Interval{{Start: 0, End: 10 * time.Second}}}
	_, err := New(cfg, silent, discardLogger()).Run(context.Background(), input, nil)
	assert.ErrorIs(t, err, detect.ErrDetectionFailure)
}

func TestRunCancelled(t *testing.T) {
	input := writeInput(t)
	cfg := testConfig(t, "max", "180")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(cfg, midSilence, discardLogger()).Run(ctx, input, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "detect", StageDetect.String())
	assert.Equal(t, "stage(9)", Stage(9).String())
}

func TestRunCancelledDuringExport(t *testing.T) {
	input := writeInput(t)
	cfg := testConfig(t, "max", "1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	saved := 0
	res, err := New(cfg, midSilence, discardLogger()).Run(ctx, input, func(e Event) {
		if e.Stage == StageExport {
			saved++
			cancel()
		}
	})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, saved)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "0.wav"))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "1.wav"))
}
