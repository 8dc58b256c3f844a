package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/andrius-ordojan/video-renamer/console"
	"github.com/andrius-ordojan/video-renamer/media"
	"github.com/andrius-ordojan/video-renamer/workflow"
)

type args struct {
	Input     string                   `arg:"-i,--input,required" help:"base directory containing video files"`
	Prefix    string                   `arg:"-p,--prefix" help:"prefix for renamed files; defaults to each file's original name"`
	Verbose   bool                     `arg:"-v,--verbose" help:"print progress and a summary"`
	Debug     bool                     `arg:"-V,--debug" help:"also print every planned and applied rename; -vv is accepted as well"`
	DryRun    bool                     `arg:"-d,--dry-run" help:"print and check the planned renames without modifying the file system"`
	Ext       []string                 `arg:"-e,--ext,separate" help:"extension to match, case-insensitive and repeatable [default: .mp4]"`
	Workers   int                      `arg:"-w,--workers" help:"number of concurrent ffprobe calls [default: 2x CPU count]"`
	Timeout   time.Duration            `arg:"--timeout" default:"1m" help:"time limit for a single ffprobe call, 0 disables it"`
	FFProbe   string                   `arg:"--ffprobe" default:"ffprobe" help:"path to the ffprobe binary"`
	Collision workflow.CollisionPolicy `arg:"--collision" default:"fail" help:"when two files map to the same name: fail or suffix"`
	ExactFPS  bool                     `arg:"--exact-fps" help:"round the full frame rate instead of keeping only its numerator"`
	Dump      bool                     `arg:"--dump" help:"print the extracted metadata as JSON instead of renaming"`
}

func (args) Description() string {
	return "Renames video files after their resolution, frame rate and creation time"
}

// level maps the verbosity flags onto console levels.
func (a args) level() int {
	switch {
	case a.Debug:
		return console.LevelDetail
	case a.Verbose:
		return console.LevelProgress
	default:
		return console.LevelQuiet
	}
}

// expandVerbosity rewrites the stacked -vv form, which go-arg cannot count,
// into --debug.
func expandVerbosity(argv []string) []string {
	out := make([]string, 0, len(argv))
	for _, a := range argv {
		if a == "--" {
			return append(out, argv[len(out):]...)
		}
		if len(a) > 2 && a[0] == '-' && strings.Trim(a[1:], "v") == "" {
			a = "--debug"
		}
		out = append(out, a)
	}
	return out
}

var newProber = func(binPath string) media.Prober {
	return media.NewFFProbe(binPath)
}

func parseArgs() (args, bool, error) {
	var a args
	p, err := arg.NewParser(arg.Config{Program: "video-renamer"}, &a)
	if err != nil {
		return a, false, err
	}

	err = p.Parse(expandVerbosity(os.Args[1:]))
	switch {
	case errors.Is(err, arg.ErrHelp):
		p.WriteHelp(os.Stdout)
		return a, true, nil
	case err != nil:
		p.WriteUsage(os.Stderr)
		return a, false, err
	}

	if a.Workers < 0 {
		return a, false, fmt.Errorf("workers must not be negative, got %d", a.Workers)
	}
	if len(a.Ext) == 0 {
		a.Ext = []string{workflow.DefaultExtension}
	}

	return a, false, nil
}

func run(ctx context.Context) (workflow.Report, error) {
	a, helped, err := parseArgs()
	if err != nil || helped {
		return workflow.Report{}, err
	}

	out := console.Default(a.level())

	report, err := workflow.Run(ctx, workflow.Options{
		Root:       a.Input,
		Extensions: a.Ext,
		Prefix:     a.Prefix,
		DryRun:     a.DryRun,
		Dump:       a.Dump,
		Workers:    a.Workers,
		Timeout:    a.Timeout,
		ExactFPS:   a.ExactFPS,
		Collision:  a.Collision,
		Prober:     newProber(a.FFProbe),
	}, out)
	if err != nil {
		return report, err
	}

	report.Print(out)
	return report, nil
}

func main() {
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	report, err := run(ctx)
	stop()

	if err != nil {
		log.Printf("error: %s", err)
		os.Exit(workflow.ExitFatal)
	}

	os.Exit(report.ExitCode())
}
