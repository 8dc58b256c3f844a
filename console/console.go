// Package console prints human readable progress for a run. Output is gated
// by a verbosity level: warnings and errors always print, progress needs
// level 1 and per-file detail needs level 2.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

type Status int

const (
	DETAIL Status = iota
	PROGRESS
	SUCCESS
	WARNING
	ERROR
)

func (s Status) String() string {
	return []string{
		"·",
		"i",
		"✓",
		"!",
		"!!",
	}[s]
}

func (s Status) Color() *color.Color {
	return []*color.Color{
		color.New(color.FgWhite, color.Italic), // Detail
		color.New(color.FgWhite),               // Progress
		color.New(color.FgHiGreen),             // Success
		color.New(color.FgYellow),              // Warning
		color.New(color.FgHiRed, color.Bold),   // Error
	}[s]
}

const (
	LevelQuiet    = 0
	LevelProgress = 1
	LevelDetail   = 2
)

type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	err   io.Writer
	level int
}

func New(out, err io.Writer, level int) *Printer {
	return &Printer{out: out, err: err, level: level}
}

// Default writes to the process's stdout and stderr.
func Default(level int) *Printer {
	return New(os.Stdout, os.Stderr, level)
}

func (p *Printer) Enabled(level int) bool {
	return p.level >= level
}

func (p *Printer) emit(w io.Writer, status Status, format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	msg := fmt.Sprintf("(%s) %s\n", status, fmt.Sprintf(format, args...))
	status.Color().Fprint(w, msg)
}

// Detail logs per-file activity at level 2.
func (p *Printer) Detail(format string, args ...interface{}) {
	if p.Enabled(LevelDetail) {
		p.emit(p.out, DETAIL, format, args...)
	}
}

func (p *Printer) Progress(format string, args ...interface{}) {
	if p.Enabled(LevelProgress) {
		p.emit(p.out, PROGRESS, format, args...)
	}
}

func (p *Printer) Success(format string, args ...interface{}) {
	if p.Enabled(LevelProgress) {
		p.emit(p.out, SUCCESS, format, args...)
	}
}

func (p *Printer) Warn(format string, args ...interface{}) {
	p.emit(p.err, WARNING, format, args...)
}

func (p *Printer) Error(format string, args ...interface{}) {
	p.emit(p.err, ERROR, format, args...)
}

// Plain writes a line to stdout regardless of the level.
func (p *Printer) Plain(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, format+"\n", args...)
}

// Out is the stdout sink, for structured dumps.
func (p *Printer) Out() io.Writer {
	return p.out
}

// Bar returns a progress bar over total items. Below level 1 it renders
// nowhere.
func (p *Printer) Bar(total int, description string) *progressbar.ProgressBar {
	w := io.Discard
	if p.Enabled(LevelProgress) {
		w = p.err
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
