package media

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var (
	ErrProbeFailed         = errors.New("probe failed")
	ErrNoVideoStream       = errors.New("no video stream")
	ErrMissingField        = errors.New("missing metadata field")
	ErrMalformedFrameRate  = errors.New("malformed frame rate")
	ErrMalformedResolution = errors.New("malformed resolution")
	ErrMalformedTimestamp  = errors.New("malformed creation time")
)

type Stage string

const (
	StageProbe  Stage = "probe"
	StageParse  Stage = "parse"
	StageRename Stage = "rename"
)

// StageOf classifies an extraction error. Anything that is not a malformed
// field is attributed to the probe itself.
func StageOf(err error) Stage {
	switch {
	case errors.Is(err, ErrMalformedFrameRate),
		errors.Is(err, ErrMalformedResolution),
		errors.Is(err, ErrMalformedTimestamp):
		return StageParse
	default:
		return StageProbe
	}
}

const (
	videoStreamPath = `streams.#(codec_type=="video")`

	creationTimeLayout = "2006-01-02T15:04:05.999999Z"
)

// ffprobe reports UTC with microseconds, e.g. 2023-05-01T12:30:00.000000Z.
var creationTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{1,6}Z$`)

type Extractor struct {
	Prober Prober
	// Timeout bounds a single probe call. Zero means no limit.
	Timeout time.Duration
	// ExactFPS rounds N/D instead of keeping only the numerator.
	ExactFPS bool
}

// Extract probes path and builds its VideoInfo. The returned error always
// wraps one of the package's Err* values.
func (e *Extractor) Extract(ctx context.Context, path string) (VideoInfo, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	data, err := e.Prober.Probe(ctx, path)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}

	return ParseProbe(path, data, e.ExactFPS)
}

// ParseProbe reads the first video stream of an ffprobe JSON document.
func ParseProbe(path string, data []byte, exactFPS bool) (VideoInfo, error) {
	if !gjson.ValidBytes(data) {
		return VideoInfo{}, fmt.Errorf("%w: invalid ffprobe output", ErrProbeFailed)
	}

	stream := gjson.GetBytes(data, videoStreamPath)
	if !stream.Exists() {
		return VideoInfo{}, ErrNoVideoStream
	}

	fps, err := parseFrameRate(stream.Get("r_frame_rate"), exactFPS)
	if err != nil {
		return VideoInfo{}, err
	}

	width, err := dimension(stream, "width")
	if err != nil {
		return VideoInfo{}, err
	}
	height, err := dimension(stream, "height")
	if err != nil {
		return VideoInfo{}, err
	}

	created, err := parseCreationTime(stream.Get("tags.creation_time"))
	if err != nil {
		return VideoInfo{}, err
	}

	return VideoInfo{
		Path:         path,
		FPS:          fps,
		Resolution:   Resolution{Width: width, Height: height},
		CreationTime: created,
	}, nil
}

// parseFrameRate keeps only the numerator of "N/D" unless exact is set, so
// "30000/1001" yields 30000.
func parseFrameRate(r gjson.Result, exact bool) (int, error) {
	if !r.Exists() {
		return 0, fmt.Errorf("%w: r_frame_rate", ErrMissingField)
	}

	num, den, hasDen := strings.Cut(strings.TrimSpace(r.String()), "/")
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedFrameRate, r.String())
	}
	if !exact || !hasDen {
		return n, nil
	}

	d, err := strconv.Atoi(den)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedFrameRate, r.String())
	}

	fps := int(math.Round(float64(n) / float64(d)))
	if fps <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedFrameRate, r.String())
	}
	return fps, nil
}

func dimension(stream gjson.Result, key string) (int, error) {
	r := stream.Get(key)
	if !r.Exists() {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, key)
	}

	var n int
	switch r.Type {
	case gjson.Number:
		if r.Num != math.Trunc(r.Num) {
			return 0, fmt.Errorf("%w: %s=%s", ErrMalformedResolution, key, r.Raw)
		}
		n = int(r.Num)
	case gjson.String:
		v, err := strconv.Atoi(strings.TrimSpace(r.Str))
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", ErrMalformedResolution, key, r.Str)
		}
		n = v
	default:
		return 0, fmt.Errorf("%w: %s=%s", ErrMalformedResolution, key, r.Raw)
	}

	if n <= 0 {
		return 0, fmt.Errorf("%w: %s=%d", ErrMalformedResolution, key, n)
	}
	return n, nil
}

func parseCreationTime(r gjson.Result) (time.Time, error) {
	if !r.Exists() {
		return time.Time{}, fmt.Errorf("%w: tags.creation_time", ErrMissingField)
	}

	s := r.String()
	if !creationTimePattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}

	t, err := time.Parse(creationTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrMalformedTimestamp, err)
	}
	return t, nil
}
