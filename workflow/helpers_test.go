package workflow

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/andrius-ordojan/video-renamer/console"
)

func init() {
	color.NoColor = true
}

func probeJSON(width, height int, frameRate, created string) string {
	return fmt.Sprintf(`{
  "streams": [
    {"index": 0, "codec_type": "audio", "codec_name": "aac"},
    {
      "index": 1,
      "codec_type": "video",
      "codec_name": "h264",
      "width": %d,
      "height": %d,
      "r_frame_rate": %q,
      "tags": {"creation_time": %q}
    }
  ],
  "format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`, width, height, frameRate, created)
}

var standardProbe = probeJSON(1920, 1080, "30/1", "2023-05-01T12:30:00.000000Z")

// stubProber answers by base name. Unknown names fail like a missing file.
type stubProber struct {
	responses map[string]string
	failures  map[string]error
	calls     atomic.Int32
}

func (s *stubProber) Probe(ctx context.Context, path string) ([]byte, error) {
	s.calls.Add(1)
	name := filepath.Base(path)
	if err, ok := s.failures[name]; ok {
		return nil, err
	}
	if data, ok := s.responses[name]; ok {
		return []byte(data), nil
	}
	return nil, fmt.Errorf("no fixture for %s", name)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func quietPrinter() (*console.Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return console.New(&out, &errOut, console.LevelQuiet), &out, &errOut
}

func ls(t *testing.T, dir string) []string {
	t.Helper()
	var names []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			names = append(names, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return names
}
