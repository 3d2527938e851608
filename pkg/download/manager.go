// Package download streams product component files to disk with bounded
// retries, atomic finalization and idempotent skip-existing reruns.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cperrin88/sentfetch/internal/logger"
	"github.com/cperrin88/sentfetch/pkg/auth"
	pkgerrors "github.com/cperrin88/sentfetch/pkg/errors"
	"github.com/cperrin88/sentfetch/pkg/fsutil"
	"github.com/cperrin88/sentfetch/pkg/model"
)

// Defaults for retry and concurrency bounds.
const (
	DefaultMaxRetries  = 3
	DefaultConcurrency = 3
	DefaultBackoff     = time.Second
)

// ManagerImpl is an HTTP-based download manager. Files are streamed to a
// temporary path and moved into place only on full success, so a
// half-written file never occupies the final path.
type ManagerImpl struct {
	client    *http.Client
	auth      auth.TokenSource
	userAgent string
	backoff   time.Duration
}

// NewManager creates a new download manager with the given timeout.
func NewManager(tokens auth.TokenSource, timeout time.Duration) *ManagerImpl {
	return &ManagerImpl{
		client:    &http.Client{Timeout: timeout},
		auth:      tokens,
		userAgent: "sentfetch/1.0",
		backoff:   DefaultBackoff,
	}
}

// Fetch downloads a single item, retrying transient failures with
// exponential backoff up to the configured attempt bound.
func (m *ManagerImpl) Fetch(ctx context.Context, item Item, opts Options) model.DownloadOutcome {
	outcome := model.DownloadOutcome{
		Component: item.Entry.Component,
		RelPath:   item.Entry.RelPath,
		Path:      item.Dest,
	}

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	if skipExisting(item) {
		outcome.Status = model.StatusSkipped
		return outcome
	}

	if item.Entry.URL == nil {
		outcome.Status = model.StatusFailed
		outcome.Err = fmt.Errorf("entry has no URL: %w", pkgerrors.ErrDownloadFailed)
		return outcome
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		outcome.Attempts = attempt
		if attempt > 1 {
			delay := m.backoff << (attempt - 2)
			logger.Debug("retrying download", logger.Fields{
				"file":    item.Entry.RelPath,
				"attempt": attempt,
				"delay":   delay.String(),
			})
			select {
			case <-ctx.Done():
				outcome.Status = model.StatusFailed
				outcome.Err = ctx.Err()
				return outcome
			case <-time.After(delay):
			}
		}

		err := m.fetchOnce(ctx, item)
		if err == nil {
			outcome.Status = model.StatusSuccess
			return outcome
		}
		lastErr = err

		// Non-retriable failures short-circuit without consuming the
		// remaining retry budget.
		if isNotRetriable(err) || ctx.Err() != nil {
			break
		}
	}

	outcome.Status = model.StatusFailed
	outcome.Err = pkgerrors.Wrapf(lastErr, "giving up on %s after %d attempts",
		item.Entry.RelPath, outcome.Attempts)
	return outcome
}

// FetchAll downloads one product's items with a bounded worker pool and
// returns one outcome per item in input order. Failures never abort the
// batch.
func (m *ManagerImpl) FetchAll(ctx context.Context, items []Item, opts Options) []model.DownloadOutcome {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	outcomes := make([]model.DownloadOutcome, len(items))
	tasks := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				outcomes[idx] = m.Fetch(ctx, items[idx], opts)
			}
		}()
	}

	for i := range items {
		tasks <- i
	}
	close(tasks)
	wg.Wait()

	return outcomes
}

// skipExisting reports whether the destination already holds a complete
// copy: the file exists and matches the expected size when one is known.
func skipExisting(item Item) bool {
	st, err := os.Stat(item.Dest)
	if err != nil || st.Size() == 0 {
		return false
	}
	if item.Entry.Size > 0 && st.Size() != item.Entry.Size {
		return false
	}
	return true
}

// fetchOnce performs one attempt: request, stream to temp, atomic move.
func (m *ManagerImpl) fetchOnce(ctx context.Context, item Item) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.Entry.URL.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w: %s", pkgerrors.ErrNotRetriable, err)
	}
	req.Header.Set("User-Agent", m.userAgent)
	if m.auth != nil {
		if err := m.auth.Apply(ctx, req); err != nil {
			return fmt.Errorf("could not authenticate download: %w: %s", pkgerrors.ErrNotRetriable, err)
		}
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return pkgerrors.Wrap(err, "download request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return err
	}

	tmpPath, err := writeBodyToTemp(resp.Body, item.Dest)
	if err != nil {
		return err
	}

	if err := fsutil.Move(tmpPath, item.Dest); err != nil {
		_ = os.Remove(tmpPath)
		return pkgerrors.Wrap(err, "could not finalize file")
	}
	if err := os.Chmod(item.Dest, fsutil.FileModeDefault); err != nil {
		return pkgerrors.Wrap(err, "could not set permissions")
	}
	return nil
}

// classifyStatus maps an HTTP status to retriable/non-retriable errors.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500:
		return fmt.Errorf("transient status %d: %w", code, pkgerrors.ErrDownloadFailed)
	default:
		return fmt.Errorf("status %d: %w", code, pkgerrors.ErrNotRetriable)
	}
}

func isNotRetriable(err error) bool {
	return errors.Is(err, pkgerrors.ErrNotRetriable)
}

// writeBodyToTemp streams the body into a dl-*.tmp file next to the final
// destination so the later move stays on one filesystem.
func writeBodyToTemp(body io.Reader, destPath string) (string, error) {
	if err := fsutil.EnsureDir(filepath.Dir(destPath)); err != nil {
		return "", pkgerrors.Wrap(err, "could not create destination dir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(destPath), "dl-*.tmp")
	if err != nil {
		return "", pkgerrors.Wrap(err, "could not create temp file")
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not write file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not sync file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not close file")
	}
	return tmpPath, nil
}
