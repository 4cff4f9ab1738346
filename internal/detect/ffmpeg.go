package detect

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// FFmpeg detects silence with the ffmpeg CLI silencedetect filter.
type FFmpeg struct {
	path string
}

// NewFFmpeg creates an FFmpeg detector.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found in PATH).
func NewFFmpeg(ffmpegPath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpeg{path: ffmpegPath}
}

// Silences implements Detector.
func (f *FFmpeg) Silences(ctx context.Context, path string, p Params) ([]Interval, error) {
	filter := fmt.Sprintf("silencedetect=noise=%sdB:d=%s",
		strconv.FormatFloat(p.SilenceThreshDB, 'f', -1, 64),
		strconv.FormatFloat(p.MinSilenceLen.Seconds(), 'f', -1, 64),
	)

	cmd := exec.CommandContext(ctx, f.path,
		"-hide_banner",
		"-nostats",
		"-i", path,
		"-af", filter,
		"-f", "null",
		"-",
	)

	// silencedetect reports on stderr
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg error: %w, stderr: %s", err, lastLines(stderr.String(), 5))
	}

	return ParseSilenceDetect(stderr.String())
}

// ParseSilenceDetect extracts silence intervals from silencedetect output.
// A silence_start with no matching silence_end runs to the end of the input
// and is returned with End set to math.MaxInt64.
func ParseSilenceDetect(output string) ([]Interval, error) {
	var intervals []Interval
	scanner := bufio.NewScanner(strings.NewReader(output))

	var currentStart time.Duration
	hasStart := false

	for scanner.Scan() {
		line := scanner.Text()

		if v, ok := fieldAfter(line, "silence_start:"); ok {
			start, err := parseSeconds(v)
			if err != nil {
				return nil, fmt.Errorf("parse silence_start %q: %w", v, err)
			}
			currentStart = max(start, 0)
			hasStart = true
		}

		if v, ok := fieldAfter(line, "silence_end:"); ok && hasStart {
			end, err := parseSeconds(v)
			if err != nil {
				return nil, fmt.Errorf("parse silence_end %q: %w", v, err)
			}
			intervals = append(intervals, Interval{Start: currentStart, End: end})
			hasStart = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if hasStart {
		intervals = append(intervals, Interval{Start: currentStart, End: math.MaxInt64})
	}
	return intervals, nil
}

// fieldAfter returns the first whitespace-separated token after key.
func fieldAfter(line, key string) (string, bool) {
	_, rest, found := strings.Cut(line, key)
	if !found {
		return "", false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}

func parseSeconds(s string) (time.Duration, error) {
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(math.Round(sec * float64(time.Second))), nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Verify interface implementation at compile time.
var _ Detector = (*FFmpeg)(nil)
