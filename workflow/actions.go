package workflow

import (
	"fmt"
)

type (
	actionType string
)

const (
	ActionRename   actionType = "rename"
	ActionSkip     actionType = "skip"
	ActionConflict actionType = "conflict"
)

type action struct {
	aType  actionType
	source string
	target string

	// check validates the action against the filesystem without changing it
	check   func() error
	execute func() (string, error)
	summary func() string
}

func newRenameAction(source, target string) action {
	if source == "" {
		panic("source path not set for rename")
	}
	if target == "" {
		panic("target path not set for rename")
	}

	return action{
		aType:  ActionRename,
		source: source,
		target: target,
		check: func() error {
			return checkTarget(source, target)
		},
		execute: func() (string, error) {
			if err := renameFile(source, target); err != nil {
				return "", err
			}
			return fmt.Sprintf("Renamed `%s` to `%s`", source, target), nil
		},
		summary: func() string {
			return fmt.Sprintf("Rename: %s -> %s", source, target)
		},
	}
}

func newSkipAction(source string) action {
	if source == "" {
		panic("source path not set for skip")
	}

	return action{
		aType:  ActionSkip,
		source: source,
		target: source,
		check: func() error {
			return nil
		},
		execute: func() (string, error) {
			return fmt.Sprintf("Skipping `%s`, already named", source), nil
		},
		summary: func() string {
			return fmt.Sprintf("Skip: %s (already named)", source)
		},
	}
}

func newConflictAction(source, target, owner string) action {
	if source == "" || owner == "" {
		panic("conflict needs both the source and the file owning the target")
	}

	err := fmt.Errorf("%s: %w (claimed by %s)", target, ErrCollision, owner)
	return action{
		aType:  ActionConflict,
		source: source,
		target: target,
		check: func() error {
			return err
		},
		execute: func() (string, error) {
			return "", err
		},
		summary: func() string {
			return fmt.Sprintf("Conflict: %s -> %s (same name as %s)", source, target, owner)
		},
	}
}
