// Package site handles the filesystem side of a build: validating the input
// and output directories, loading pages and templates into a SiteTree, and
// committing compiled output atomically.
package site

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"git.home.luguber.info/inful/tagsite/internal/config"
	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/logfields"
)

// Input root entries.
const (
	PagesDir     = "pages"
	TemplatesDir = "templates"
	PublicDir    = "public"
)

// ValidateDirs checks the run preconditions: both directories exist and the
// output directory is empty.
func ValidateDirs(inputDir, outputDir string) error {
	if err := requireDir(inputDir, "input"); err != nil {
		return err
	}
	if err := requireDir(outputDir, "output"); err != nil {
		return err
	}
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return serrors.IOError("read output directory", outputDir, err)
	}
	if len(entries) != 0 {
		return serrors.InvalidInput(fmt.Sprintf("output directory %s is not empty, delete everything inside it", outputDir))
	}
	return nil
}

func requireDir(path, role string) error {
	if path == "" {
		return serrors.InvalidInput(role + " directory is required")
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return serrors.InvalidInput(fmt.Sprintf("%s directory %s does not exist", role, path))
	}
	if err != nil {
		return serrors.IOError("stat "+role+" directory", path, err)
	}
	if !info.IsDir() {
		return serrors.InvalidInput(fmt.Sprintf("%s path %s is not a directory", role, path))
	}
	return nil
}

// knownEntries are the top-level names an input root may contain.
func knownEntries() []string {
	known := []string{PagesDir, TemplatesDir, PublicDir, config.EnvFileName}
	return append(known, config.FileNames...)
}

// CheckInputRoot returns the unexpected top-level entries of inputDir and logs
// a warning for each. Hidden entries such as .git are ignored.
func CheckInputRoot(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, serrors.IOError("read input directory", inputDir, err)
	}
	known := knownEntries()
	var unexpected []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || slices.Contains(known, name) {
			continue
		}
		unexpected = append(unexpected, name)
		slog.Warn("Unexpected entry in input directory, ignoring", logfields.Path(name))
	}
	return unexpected, nil
}
