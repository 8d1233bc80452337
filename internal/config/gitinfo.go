package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/tagsite/internal/logfields"
)

// Globals added by WithGitInfo.
const (
	GitCommitKey      = "git_commit"
	GitShortCommitKey = "git_short_commit"
	GitCommitDateKey  = "git_commit_date"
)

// GitInfo describes the HEAD commit of the repository containing the input.
type GitInfo struct {
	Commit string
	Date   time.Time
}

// ShortCommit returns the abbreviated commit hash.
func (g GitInfo) ShortCommit() string {
	if len(g.Commit) > 8 {
		return g.Commit[:8]
	}
	return g.Commit
}

// ReadGitInfo opens the repository containing root and resolves HEAD.
func ReadGitInfo(root string) (*GitInfo, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", ref.Hash(), err)
	}
	return &GitInfo{Commit: ref.Hash().String(), Date: commit.Committer.When.UTC()}, nil
}

// WithGitInfo adds the git_* globals when root lies inside a git work tree.
// Keys already present in the config win. Outside a repository the site is
// returned unchanged.
func (s *Site) WithGitInfo(root string) *Site {
	info, err := ReadGitInfo(root)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			slog.Warn("Input is not inside a git repository, git globals unavailable", logfields.Path(root))
		} else {
			slog.Warn("Failed to read git info", logfields.Path(root), logfields.Error(err))
		}
		return s
	}

	values := make(map[string]string, len(s.Values)+3)
	for k, v := range s.Values {
		values[k] = v
	}
	for k, v := range map[string]string{
		GitCommitKey:      info.Commit,
		GitShortCommitKey: info.ShortCommit(),
		GitCommitDateKey:  info.Date.Format(time.RFC3339),
	} {
		if _, exists := values[k]; !exists {
			values[k] = v
		}
	}
	return &Site{Path: s.Path, Values: values}
}
