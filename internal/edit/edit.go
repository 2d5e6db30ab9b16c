package edit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Mode selects where the content goes relative to the anchor.
type Mode string

const (
	Before  Mode = "before"
	After   Mode = "after"
	Replace Mode = "replace"
)

// Edit is one anchored change.
type Edit struct {
	Anchor  string
	Regexp  bool // Anchor is a regular expression instead of a literal
	Mode    Mode
	Content string
}

// ErrPrecondition is matched by every *PreconditionError.
var ErrPrecondition = errors.New("precondition failed")

// Kind classifies a precondition failure.
type Kind string

const (
	FileMissing     Kind = "file missing"
	AnchorNotFound  Kind = "anchor not found"
	AnchorAmbiguous Kind = "anchor ambiguous"
)

// PreconditionError reports that a file or anchor an edit depends on is not
// in the expected state.
type PreconditionError struct {
	Kind    Kind
	Path    string
	Anchor  string
	Matches int
}

func (e *PreconditionError) Error() string {
	switch e.Kind {
	case FileMissing:
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	case AnchorAmbiguous:
		return fmt.Sprintf("%s in %s: %q matches %d times", e.Kind, e.Path, e.Anchor, e.Matches)
	default:
		return fmt.Sprintf("%s in %s: %q", e.Kind, e.Path, e.Anchor)
	}
}

// Is lets errors.Is(err, ErrPrecondition) match any kind.
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// Apply returns text with e applied. It does not touch the filesystem; the
// returned *PreconditionError has an empty Path.
func Apply(text string, e Edit) (string, error) {
	start, end, err := locate(text, e)
	if err != nil {
		return "", err
	}

	switch e.Mode {
	case Before:
		return text[:start] + e.Content + text[start:], nil
	case After:
		return text[:end] + e.Content + text[end:], nil
	case Replace:
		return text[:start] + e.Content + text[end:], nil
	default:
		return "", fmt.Errorf("unknown edit mode %q", e.Mode)
	}
}

// locate finds the single match of the anchor.
func locate(text string, e Edit) (int, int, error) {
	if e.Anchor == "" {
		return 0, 0, fmt.Errorf("edit has no anchor")
	}

	if e.Regexp {
		re, err := regexp.Compile(e.Anchor)
		if err != nil {
			return 0, 0, fmt.Errorf("compiling anchor %q: %w", e.Anchor, err)
		}
		locs := re.FindAllStringIndex(text, -1)
		if n := len(locs); n != 1 {
			return 0, 0, &PreconditionError{Kind: kindFor(n), Anchor: e.Anchor, Matches: n}
		}
		return locs[0][0], locs[0][1], nil
	}

	n := strings.Count(text, e.Anchor)
	if n != 1 {
		return 0, 0, &PreconditionError{Kind: kindFor(n), Anchor: e.Anchor, Matches: n}
	}
	start := strings.Index(text, e.Anchor)
	return start, start + len(e.Anchor), nil
}

func kindFor(matches int) Kind {
	if matches == 0 {
		return AnchorNotFound
	}
	return AnchorAmbiguous
}

// ApplyFile applies e to the file at path and writes the result atomically.
func ApplyFile(path string, e Edit) error {
	data, err := read(path)
	if err != nil {
		return err
	}

	out, err := Apply(string(data), e)
	if err != nil {
		var pe *PreconditionError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return err
	}
	return writeAtomic(path, []byte(out))
}

// Append adds content to the end of the file at path. The file must exist.
// A last line without a newline is terminated first.
func Append(path, content string) error {
	data, err := read(path)
	if err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return writeAtomic(path, append(data, content...))
}

func read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &PreconditionError{Kind: FileMissing, Path: path}
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// writeAtomic writes data to a temp file next to path and renames it into
// place, keeping the original permissions.
func writeAtomic(path string, data []byte) error {
	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".railyard-tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	success = true
	return nil
}
