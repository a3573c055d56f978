package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"continuum-hq/continuum/pkg/evidence"
)

// GitHubConfig contains configuration for the GitHub contents-API backend.
type GitHubConfig struct {
	// Repo is the target repository in "owner/name" form.
	Repo string

	// Token is the access token used for authentication.
	Token string

	// Branch is the target branch. Default: "main".
	Branch string

	// BaseURL is the API base URL, overridable for tests and GitHub
	// Enterprise. Default: "https://api.github.com".
	BaseURL string

	// Timeout bounds a single write attempt. Default: 10 seconds.
	Timeout time.Duration
}

// GitHubStorage writes each event as one immutable, uniquely named object
// via the GitHub contents API. One object per event means concurrent writes
// never conflict and no retry logic is needed: the write is idempotent by
// uniqueness of the event id.
//
// This backend is best-effort by contract. Callers log failures and carry
// on; nothing here may fail a request.
type GitHubStorage struct {
	config GitHubConfig
	client *http.Client
	logger *slog.Logger
}

// NewGitHubStorage creates a GitHub contents-API storage backend.
func NewGitHubStorage(config GitHubConfig) (*GitHubStorage, error) {
	if config.Repo == "" || config.Token == "" {
		return nil, evidence.NewStorageError("github", "init",
			fmt.Errorf("repo and token are required"))
	}
	if config.Branch == "" {
		config.Branch = "main"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.github.com"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &GitHubStorage{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: slog.Default().With("component", "evidence.storage.github"),
	}, nil
}

// StoreEvent uploads one analysis event to a date-bucketed path:
// evidence/<yyyy-mm-dd>/<event-id>.json.
func (s *GitHubStorage) StoreEvent(ctx context.Context, event *evidence.AnalysisEvent) error {
	path := fmt.Sprintf("evidence/%s/%s.json", event.Timestamp.UTC().Format("2006-01-02"), event.ID)
	return s.put(ctx, path, event)
}

// StoreFeedback uploads one feedback event under the feedback/ prefix.
func (s *GitHubStorage) StoreFeedback(ctx context.Context, event *evidence.FeedbackEvent) error {
	path := fmt.Sprintf("feedback/%s/%s.json", event.Timestamp.UTC().Format("2006-01-02"), event.ID)
	return s.put(ctx, path, event)
}

// Stats is not served from the remote backend.
func (s *GitHubStorage) Stats(ctx context.Context) (*evidence.StorageStats, error) {
	return &evidence.StorageStats{
		FreqTypes: map[string]int64{},
		Decisions: map[string]int64{},
	}, nil
}

// Close releases nothing; the HTTP client holds no persistent connections
// worth tearing down explicitly.
func (s *GitHubStorage) Close() error {
	return nil
}

// put performs a single contents-API write. No retries: a new object name
// is generated per event, so a failed write is simply a missing remote copy
// and the in-process record remains the source of truth.
func (s *GitHubStorage) put(ctx context.Context, path string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return evidence.NewStorageError("github", "marshal", err)
	}

	body, err := json.Marshal(map[string]string{
		"message": fmt.Sprintf("record %s", path),
		"content": base64.StdEncoding.EncodeToString(payload),
		"branch":  s.config.Branch,
	})
	if err != nil {
		return evidence.NewStorageError("github", "marshal", err)
	}

	url := fmt.Sprintf("%s/repos/%s/contents/%s", s.config.BaseURL, s.config.Repo, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return evidence.NewStorageError("github", "request", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return evidence.NewStorageError("github", "put", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		// Read a bounded slice of the body for the error message.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return evidence.NewStorageError("github", "put",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, detail))
	}

	s.logger.Debug("remote object written", "path", path)
	return nil
}
