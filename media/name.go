package media

import (
	"path/filepath"
	"strconv"
	"strings"
)

const (
	separator = "_"

	// same as the probe timestamp, minus colons and fraction
	creationLayout = "2006-01-02T150405"
)

// BuildFilename derives the new base name for a video. An empty prefix falls
// back to the original stem. The extension is kept but lowercased.
func BuildFilename(info VideoInfo, prefix string) string {
	head := prefix
	if head == "" {
		head = info.Stem()
	}

	parts := []string{
		head,
		info.Resolution.String(),
		strconv.Itoa(info.FPS) + "fps",
		info.CreationTime.Format(creationLayout),
	}

	return strings.Join(parts, separator) + strings.ToLower(info.Ext())
}

// TargetName is BuildFilename bound to v.
func (v VideoInfo) TargetName(prefix string) string {
	return BuildFilename(v, prefix)
}

// TargetPath joins the new name onto the file's current directory. A rename
// never moves a file to another directory.
func (v VideoInfo) TargetPath(prefix string) string {
	return filepath.Join(v.Dir(), v.TargetName(prefix))
}
