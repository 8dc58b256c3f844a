package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrius-ordojan/video-renamer/media"
)

func TestDiscover_MatchesExtensionAtAnyDepth(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"a.mp4",
		"B.MP4",
		"sub/c.Mp4",
		"sub/deep/deeper/d.mp4",
		"notes.txt",
		"e.mov",
		"f.mp4.txt",
		"sub/g.mkv",
	} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(name)), name)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "folder.mp4"), 0o755))

	got, err := Discover(root, nil, nil)
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "a.mp4"),
		filepath.Join(root, "B.MP4"),
		filepath.Join(root, "sub", "c.Mp4"),
		filepath.Join(root, "sub", "deep", "deeper", "d.mp4"),
	}
	sort.Strings(want)
	assert.Equal(t, want, got)
}

func TestDiscover_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp4"), "a")
	writeFile(t, filepath.Join(root, "b.MOV"), "b")
	writeFile(t, filepath.Join(root, "c.mkv"), "c")

	got, err := Discover(root, []string{"mov", ".MKV"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "b.MOV"), filepath.Join(root, "c.mkv")}, got)
}

func TestDiscover_Deterministic(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"z.mp4", "m/a.mp4", "a.mp4", "m/z.mp4"} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(name)), name)
	}

	first, err := Discover(root, nil, nil)
	require.NoError(t, err)
	second, err := Discover(root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, sort.StringsAreSorted(first))
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "notExist"), nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestDiscover_RootIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	writeFile(t, path, "x")

	_, err := Discover(path, nil, nil)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestDiscover_Symlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "real.mp4"), "real")
	writeFile(t, filepath.Join(outside, "dir", "inner.mp4"), "inner")

	require.NoError(t, os.Symlink(filepath.Join(outside, "real.mp4"), filepath.Join(root, "link.mp4")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "dir"), filepath.Join(root, "folder.mp4")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "dir"), filepath.Join(root, "linked")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "gone.mp4"), filepath.Join(root, "dangling.mp4")))

	got, err := Discover(root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "link.mp4")}, got)
}

func TestDiscover_SkipsUnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp4"), "a")
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "hidden.mp4"), "h")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	var warned []string
	got, err := Discover(root, nil, func(path string, err error) {
		warned = append(warned, path)
		assert.ErrorIs(t, err, os.ErrPermission)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "a.mp4")}, got)
	assert.Equal(t, []string{locked}, warned)
}

func TestExtractAll_IsolatesFailures(t *testing.T) {
	prober := &stubProber{
		responses: map[string]string{
			"a.mp4": standardProbe,
			"c.mp4": standardProbe,
			"d.mp4": probeJSON(1920, 1080, "30/1", "2023-05-01 12:30:00"),
		},
		failures: map[string]error{
			"b.mp4": errors.New("exit status 1"),
		},
	}
	paths := []string{"/v/d.mp4", "/v/c.mp4", "/v/b.mp4", "/v/a.mp4"}

	done := 0
	outcomes := extractAll(context.Background(), paths, &media.Extractor{Prober: prober}, 3, func() { done++ })

	require.Len(t, outcomes, 4)
	assert.Equal(t, 4, done)

	byPath := make(map[string]Outcome)
	var order []string
	for _, o := range outcomes {
		byPath[o.Path] = o
		order = append(order, o.Path)
	}
	assert.Equal(t, []string{"/v/a.mp4", "/v/b.mp4", "/v/c.mp4", "/v/d.mp4"}, order)

	assert.NotNil(t, byPath["/v/a.mp4"].Info)
	assert.NotNil(t, byPath["/v/c.mp4"].Info)
	assert.ErrorIs(t, byPath["/v/b.mp4"].Err, media.ErrProbeFailed)
	assert.Nil(t, byPath["/v/b.mp4"].Info)
	assert.ErrorIs(t, byPath["/v/d.mp4"].Err, media.ErrMalformedTimestamp)
}

type slowProber struct{}

func (slowProber) Probe(ctx context.Context, path string) ([]byte, error) {
	if filepath.Base(path) == "hung.mp4" {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []byte(standardProbe), nil
}

func TestExtractAll_TimeoutOnlyFailsHungProbe(t *testing.T) {
	extractor := &media.Extractor{Prober: slowProber{}, Timeout: 50 * time.Millisecond}
	paths := []string{"/v/a.mp4", "/v/hung.mp4", "/v/z.mp4"}

	outcomes := extractAll(context.Background(), paths, extractor, 2, nil)
	require.Len(t, outcomes, 3)

	assert.NotNil(t, outcomes[0].Info)
	assert.ErrorIs(t, outcomes[1].Err, context.DeadlineExceeded)
	assert.NotNil(t, outcomes[2].Info)
}

func TestExtractAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prober := &stubProber{responses: map[string]string{"a.mp4": standardProbe}}
	outcomes := extractAll(ctx, []string{"/v/a.mp4"}, &media.Extractor{Prober: prober}, 0, nil)

	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, context.Canceled)
	assert.Equal(t, int32(0), prober.calls.Load())
}

func TestExtractAll_Empty(t *testing.T) {
	outcomes := extractAll(context.Background(), nil, &media.Extractor{Prober: &stubProber{}}, 4, nil)
	assert.Empty(t, outcomes)
}
