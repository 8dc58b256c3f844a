package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const defaultFFProbe = "ffprobe"

// Prober inspects a media file and returns the raw ffprobe JSON document for
// it. Implementations must honour ctx cancellation.
type Prober interface {
	Probe(ctx context.Context, path string) ([]byte, error)
}

// FFProbe shells out to the ffprobe binary.
type FFProbe struct {
	// BinPath defaults to "ffprobe" looked up on PATH.
	BinPath string
}

func NewFFProbe(binPath string) *FFProbe {
	return &FFProbe{BinPath: binPath}
}

func (f *FFProbe) Probe(ctx context.Context, path string) ([]byte, error) {
	bin := f.BinPath
	if bin == "" {
		bin = defaultFFProbe
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s %q: %w", bin, path, ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s %q: %w: %s", bin, path, err, msg)
		}
		return nil, fmt.Errorf("%s %q: %w", bin, path, err)
	}

	return out, nil
}
