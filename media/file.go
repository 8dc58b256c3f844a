package media

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// VideoInfo is the metadata extracted from a single video file. Values are
// only ever produced whole by the extractor and are not modified afterwards.
type VideoInfo struct {
	Path         string     `json:"path"`
	FPS          int        `json:"fps"`
	Resolution   Resolution `json:"resolution"`
	CreationTime time.Time  `json:"creation_time"`
}

func (v VideoInfo) Dir() string {
	return filepath.Dir(v.Path)
}

func (v VideoInfo) Ext() string {
	return filepath.Ext(v.Path)
}

// Stem is the base name without its extension.
func (v VideoInfo) Stem() string {
	base := filepath.Base(v.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
