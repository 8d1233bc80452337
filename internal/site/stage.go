package site

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/logfields"
)

const fileMode = 0o644

// rename is swapped in tests to simulate a failing filesystem.
var rename = os.Rename

// Stage collects output in a sibling directory of the output root. Nothing
// reaches the output root until Commit.
type Stage struct {
	outputDir string
	dir       string
	written   map[string]string // output rel path -> source that produced it
}

// NewStage creates a staging directory next to outputDir.
func NewStage(outputDir string) (*Stage, error) {
	outputDir = filepath.Clean(outputDir)
	dir, err := os.MkdirTemp(filepath.Dir(outputDir), "."+filepath.Base(outputDir)+"_stage-")
	if err != nil {
		return nil, serrors.IOError("create staging directory", outputDir, err)
	}
	slog.Debug("Initialized staging directory", slog.String("staging", dir), slog.String("final", outputDir))
	return &Stage{outputDir: outputDir, dir: dir, written: make(map[string]string)}, nil
}

// Files returns how many files were staged.
func (s *Stage) Files() int { return len(s.written) }

// claim reserves rel for source, failing when another input already wrote it.
func (s *Stage) claim(rel, source string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(rel)))
	if clean == "." || strings.HasPrefix(clean, "../") || filepath.IsAbs(filepath.FromSlash(rel)) {
		return "", serrors.InvalidInput("output path escapes the output directory: " + rel)
	}
	if prev, taken := s.written[clean]; taken {
		return "", serrors.OutputConflict(clean).
			WithContext("first", prev).
			WithContext("second", source)
	}
	s.written[clean] = source
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}

// WriteFile stages data at rel. source names the input for conflict reports.
func (s *Stage) WriteFile(rel, source string, data []byte) error {
	return s.write(rel, source, bytes.NewReader(data))
}

// CopyFile stages the bytes of src at rel.
func (s *Stage) CopyFile(rel, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return serrors.IOError("open", src, err)
	}
	defer f.Close()
	return s.write(rel, src, f)
}

func (s *Stage) write(rel, source string, r io.Reader) error {
	dst, err := s.claim(rel, source)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return serrors.IOError("create directory", filepath.Dir(dst), err)
	}
	if err := atomic.WriteFile(dst, r); err != nil {
		return serrors.IOError("write", rel, err)
	}
	if err := os.Chmod(dst, fileMode); err != nil {
		return serrors.IOError("chmod", rel, err)
	}
	return nil
}

// CopyTree stages every regular file below root, keeping relative paths.
func (s *Stage) CopyTree(root string) (int, error) {
	n := 0
	err := walkFiles(root, func(rel, abs string) error {
		n++
		return s.CopyFile(rel, abs)
	})
	return n, err
}

// Commit replaces the contents of the output directory with the staged
// files. Existing entries are moved aside first and removed once the new
// tree is in place. If promotion fails part way, the promoted entries go
// back into the stage and the previous output is restored.
func (s *Stage) Commit() error {
	if s.dir == "" {
		return serrors.InternalError("no staging directory initialized", nil)
	}

	prev, err := s.moveAside()
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.restore(nil, prev)
		return serrors.IOError("read staging directory", s.dir, err)
	}
	promoted := make([]string, 0, len(entries))
	for _, e := range entries {
		to := filepath.Join(s.outputDir, e.Name())
		if err := rename(filepath.Join(s.dir, e.Name()), to); err != nil {
			s.restore(promoted, prev)
			return serrors.IOError("promote staging", to, err)
		}
		promoted = append(promoted, e.Name())
	}

	if err := os.Remove(s.dir); err != nil {
		slog.Warn("Failed to remove staging directory", logfields.Path(s.dir), logfields.Error(err))
	}
	s.dir = ""
	if prev != "" {
		if err := os.RemoveAll(prev); err != nil {
			slog.Warn("Failed to remove previous output", logfields.Path(prev), logfields.Error(err))
		}
	}
	slog.Debug("Promoted staging directory", logfields.Path(s.outputDir), logfields.Count(len(s.written)))
	return nil
}

// restore undoes a partial Commit: promoted entries move back into the
// stage, then everything in prev returns to the output directory. The
// stage stays in place so Abort can still clean it up.
func (s *Stage) restore(promoted []string, prev string) {
	moveEntries(promoted, s.outputDir, s.dir)
	if prev == "" {
		return
	}
	entries, err := os.ReadDir(prev)
	if err != nil {
		slog.Error("Failed to read previous output, left in place", logfields.Path(prev), logfields.Error(err))
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if moveEntries(names, prev, s.outputDir) {
		if err := os.Remove(prev); err != nil {
			slog.Warn("Failed to remove backup directory", logfields.Path(prev), logfields.Error(err))
		}
	}
	slog.Warn("Restored previous output after failed commit", logfields.Path(s.outputDir), logfields.Count(len(names)))
}

// moveEntries renames each named entry from one directory to another and
// reports whether all of them moved.
func moveEntries(names []string, from, to string) bool {
	ok := true
	for _, name := range names {
		if err := rename(filepath.Join(from, name), filepath.Join(to, name)); err != nil {
			slog.Error("Failed to move entry back", logfields.Path(filepath.Join(from, name)), logfields.Error(err))
			ok = false
		}
	}
	return ok
}

// moveAside moves every existing output entry into a sibling directory and
// returns it, or "" when the output directory was already empty.
func (s *Stage) moveAside() (string, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return "", serrors.IOError("read output directory", s.outputDir, err)
	}
	if len(entries) == 0 {
		return "", nil
	}
	prev, err := os.MkdirTemp(filepath.Dir(s.outputDir), "."+filepath.Base(s.outputDir)+"_prev-")
	if err != nil {
		return "", serrors.IOError("create backup directory", s.outputDir, err)
	}
	moved := make([]string, 0, len(entries))
	for _, e := range entries {
		if err := rename(filepath.Join(s.outputDir, e.Name()), filepath.Join(prev, e.Name())); err != nil {
			if moveEntries(moved, prev, s.outputDir) {
				_ = os.Remove(prev)
			}
			return "", serrors.IOError("back up existing output", e.Name(), err)
		}
		moved = append(moved, e.Name())
	}
	return prev, nil
}

// Abort removes the staging directory after a failed build.
func (s *Stage) Abort() {
	if s.dir == "" {
		return
	}
	dir := s.dir
	s.dir = ""
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", logfields.Path(dir), logfields.Error(err))
		return
	}
	slog.Debug("Removed staging directory after abort", logfields.Path(dir))
}
