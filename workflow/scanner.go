package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/andrius-ordojan/video-renamer/media"
)

const DefaultExtension = ".mp4"

var ErrNotDirectory = errors.New("not a directory")

// Outcome is the result of extracting one file. Exactly one of Info and Err
// is set.
type Outcome struct {
	Path string
	Info *media.VideoInfo
	Err  error
}

func normalizeExtensions(exts []string) map[string]bool {
	if len(exts) == 0 {
		exts = []string{DefaultExtension}
	}

	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

// Discover walks root and returns every file whose extension matches one of
// exts, case-insensitively, sorted lexicographically. Subdirectories that
// cannot be read are passed to warn and skipped; a root that cannot be read
// is an error.
func Discover(root string, exts []string, warn func(path string, err error)) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	filter := normalizeExtensions(exts)
	var files []string

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if warn != nil {
				warn(path, err)
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !filter[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		// Symlinks count when they point at a regular file. Linked
		// directories are not descended into.
		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// extractAll probes every path on a bounded pool of workers and waits for all
// of them. done is called once per finished file from a single goroutine.
// The outcomes are returned in path order.
func extractAll(ctx context.Context, paths []string, extractor *media.Extractor, numWorkers int, done func()) []Outcome {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU() * 2
	}
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}

	jobs := make(chan string, 100)
	resultsChan := make(chan Outcome, 100)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				resultsChan <- extractOne(ctx, extractor, path)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			jobs <- path
		}
	}()

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]Outcome, 0, len(paths))
	for o := range resultsChan {
		results = append(results, o)
		if done != nil {
			done()
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results
}

func extractOne(ctx context.Context, extractor *media.Extractor, path string) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Path: path, Err: fmt.Errorf("%w: %w", media.ErrProbeFailed, err)}
	}

	info, err := extractor.Extract(ctx, path)
	if err != nil {
		return Outcome{Path: path, Err: err}
	}
	return Outcome{Path: path, Info: &info}
}
