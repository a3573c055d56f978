package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"continuum-hq/continuum/pkg/evidence"
)

// GitMirrorConfig contains configuration for the git log mirror.
type GitMirrorConfig struct {
	// Repository is the remote URL (https form).
	Repository string

	// Token is the access token used for basic auth.
	Token string

	// Branch is the mirrored branch. Default: "main".
	Branch string

	// PushInterval rate-limits pushes: at most one push per interval.
	// Default: 1 minute.
	PushInterval time.Duration

	// Timeout bounds each remote operation. Default: 30 seconds.
	Timeout time.Duration
}

// GitMirror mirrors the local JSONL log directory to a remote git
// repository: pull-or-clone on startup to restore earlier logs, then a
// debounced commit-and-push after writes. Every operation is best-effort;
// a failed push is logged and retried on the next cycle, never surfaced to
// request handling.
type GitMirror struct {
	config GitMirrorConfig
	dir    string
	repo   *gogit.Repository
	logger *slog.Logger

	mu     sync.Mutex
	notify chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewGitMirror creates a mirror over the given log directory.
func NewGitMirror(dir string, config GitMirrorConfig) (*GitMirror, error) {
	if config.Repository == "" {
		return nil, evidence.NewMirrorError("init", fmt.Errorf("repository URL not configured"))
	}
	if config.Branch == "" {
		config.Branch = "main"
	}
	if config.PushInterval <= 0 {
		config.PushInterval = time.Minute
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &GitMirror{
		config: config,
		dir:    dir,
		logger: slog.Default().With("component", "evidence.mirror"),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}, nil
}

// Start restores the log directory from the remote (clone, or pull when a
// checkout already exists) and launches the background push loop. A failed
// restore downgrades to a fresh local repository rather than aborting: the
// mirror is durability insurance, not a dependency.
func (m *GitMirror) Start(ctx context.Context) error {
	if err := m.restore(ctx); err != nil {
		m.logger.Warn("mirror restore failed, starting with local repository",
			"error", err,
		)
		if err := m.initLocal(); err != nil {
			return err
		}
	}

	m.wg.Add(1)
	go m.pushLoop()

	m.logger.Info("git mirror started",
		"branch", m.config.Branch,
		"push_interval", m.config.PushInterval,
	)
	return nil
}

// Notify schedules a push. Coalesces: any number of notifications between
// pushes result in a single commit.
func (m *GitMirror) Notify() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Close stops the push loop after a final flush and waits for it to finish.
func (m *GitMirror) Close() error {
	close(m.done)
	m.wg.Wait()
	return nil
}

func (m *GitMirror) pushLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.PushInterval)
	defer ticker.Stop()

	pending := false
	for {
		select {
		case <-m.notify:
			pending = true

		case <-ticker.C:
			if !pending {
				continue
			}
			pending = false
			m.sync()

		case <-m.done:
			// Final flush before exit.
			select {
			case <-m.notify:
				pending = true
			default:
			}
			if pending {
				m.sync()
			}
			return
		}
	}
}

// sync commits any changes in the log directory and pushes them.
func (m *GitMirror) sync() {
	ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
	defer cancel()

	if err := m.commitAndPush(ctx); err != nil {
		m.logger.Error("mirror sync failed", "error", err)
	}
}

func (m *GitMirror) commitAndPush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.repo == nil {
		return evidence.NewMirrorError("commit", fmt.Errorf("repository not initialized"))
	}

	worktree, err := m.repo.Worktree()
	if err != nil {
		return evidence.NewMirrorError("commit", err)
	}

	if err := worktree.AddGlob("."); err != nil {
		return evidence.NewMirrorError("commit", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return evidence.NewMirrorError("commit", err)
	}
	if status.IsClean() {
		return nil
	}

	_, err = worktree.Commit(
		fmt.Sprintf("auto backup %s", time.Now().UTC().Format(time.RFC3339)),
		&gogit.CommitOptions{
			Author: &object.Signature{
				Name:  "continuum",
				Email: "audit@continuum.local",
				When:  time.Now(),
			},
		},
	)
	if err != nil {
		return evidence.NewMirrorError("commit", err)
	}

	branchSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", m.config.Branch, m.config.Branch))
	err = m.repo.PushContext(ctx, &gogit.PushOptions{
		RefSpecs: []gitconfig.RefSpec{branchSpec},
		Auth:     m.auth(),
		Force:    true,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return evidence.NewMirrorError("push", err)
	}

	m.logger.Info("mirror pushed")
	return nil
}

// restore clones the remote into the log directory, or pulls when a
// checkout is already present.
func (m *GitMirror) restore(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	opCtx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	gitDir := filepath.Join(m.dir, ".git")
	if _, err := os.Stat(gitDir); err == nil {
		repo, err := gogit.PlainOpen(m.dir)
		if err != nil {
			return evidence.NewMirrorError("open", err)
		}
		m.repo = repo

		worktree, err := repo.Worktree()
		if err != nil {
			return evidence.NewMirrorError("pull", err)
		}
		err = worktree.PullContext(opCtx, &gogit.PullOptions{
			ReferenceName: plumbing.NewBranchReferenceName(m.config.Branch),
			Auth:          m.auth(),
		})
		if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return evidence.NewMirrorError("pull", err)
		}
		m.logger.Info("mirror pulled previous logs")
		return nil
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return evidence.NewMirrorError("clone", err)
	}

	repo, err := gogit.PlainCloneContext(opCtx, m.dir, false, &gogit.CloneOptions{
		URL:           m.config.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(m.config.Branch),
		SingleBranch:  true,
		Auth:          m.auth(),
	})
	if err != nil {
		return evidence.NewMirrorError("clone", err)
	}

	m.repo = repo
	m.logger.Info("mirror cloned previous logs")
	return nil
}

// initLocal falls back to a fresh local repository when the remote is
// unreachable at startup; later pushes publish it.
func (m *GitMirror) initLocal() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	repo, err := gogit.PlainInit(m.dir, false)
	if err != nil {
		if !errors.Is(err, gogit.ErrRepositoryAlreadyExists) {
			return evidence.NewMirrorError("init", err)
		}
		repo, err = gogit.PlainOpen(m.dir)
		if err != nil {
			return evidence.NewMirrorError("init", err)
		}
	}

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{m.config.Repository},
	})
	if err != nil && !errors.Is(err, gogit.ErrRemoteExists) {
		return evidence.NewMirrorError("init", err)
	}

	// Commits must land on the configured branch, not the init default.
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(m.config.Branch))
	if err := repo.Storer.SetReference(head); err != nil {
		return evidence.NewMirrorError("init", err)
	}

	m.repo = repo
	return nil
}

// auth returns token-based basic auth; the username is ignored by GitHub
// for token auth.
func (m *GitMirror) auth() *githttp.BasicAuth {
	if m.config.Token == "" {
		return nil
	}
	return &githttp.BasicAuth{
		Username: "git",
		Password: m.config.Token,
	}
}
