package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-hifi/internal/logging"
	"github.com/cwbudde/algo-hifi/internal/retry"
)

// ErrTooLarge is returned when a download exceeds the size cap.
var ErrTooLarge = errors.New("offline: download exceeds size limit")

// Fetcher makes a URI available as a local file. The returned release
// function removes anything the fetch created and must always be called
// when err is nil.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (path string, release func() error, err error)
}

// LocalFetcher serves plain paths and file:// URIs without copying.
type LocalFetcher struct{}

// Fetch implements Fetcher.
func (LocalFetcher) Fetch(_ context.Context, uri string) (string, func() error, error) {
	path := strings.TrimPrefix(uri, "file://")
	if _, err := os.Stat(path); err != nil {
		return "", nil, err
	}
	return path, func() error { return nil }, nil
}

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 64 << 20
)

// HTTPFetcher downloads into a temp file with a timeout and size cap.
type HTTPFetcher struct {
	Client   *http.Client
	Timeout  time.Duration
	MaxBytes int64
	TempDir  string
	Retry    retry.Config
	Logger   *logging.Logger
}

// NewHTTPFetcher returns a fetcher with default limits.
func NewHTTPFetcher(logger *logging.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		Client:   http.DefaultClient,
		Timeout:  defaultTimeout,
		MaxBytes: defaultMaxBytes,
		Retry:    retry.DefaultConfig(),
		Logger:   logging.OrNop(logger),
	}
}

// Fetch implements Fetcher. The temp file is removed on every failure path.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) (string, func() error, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	tmp, err := os.CreateTemp(f.TempDir, "hifi-analysis-*")
	if err != nil {
		return "", nil, fmt.Errorf("offline: temp file: %w", err)
	}
	path := tmp.Name()
	release := func() error { return os.Remove(path) }

	err = retry.Do(ctx, f.Retry, func(ctx context.Context) error {
		return f.download(ctx, uri, tmp)
	})
	err = multierr.Append(err, tmp.Close())

	if err != nil {
		return "", nil, multierr.Append(err, release())
	}

	return path, release, nil
}

func (f *HTTPFetcher) download(ctx context.Context, uri string, dst *os.File) error {
	if _, err := dst.Seek(0, io.SeekStart); err != nil {
		return retry.Permanent(err)
	}
	if err := dst.Truncate(0); err != nil {
		return retry.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return retry.Permanent(err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		logging.OrNop(f.Logger).Warn("download attempt failed", zap.String("uri", uri), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("offline: GET %s: status %d", uri, resp.StatusCode)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return err
		}
		return retry.Permanent(err)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}

	n, err := io.Copy(dst, io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return err
	}
	if n > limit {
		return retry.Permanent(fmt.Errorf("%w: > %d bytes", ErrTooLarge, limit))
	}

	return nil
}

// RouteFetcher dispatches http(s) URIs to Remote and everything else to
// Local.
type RouteFetcher struct {
	Remote Fetcher
	Local  Fetcher
}

// Fetch implements Fetcher.
func (r RouteFetcher) Fetch(ctx context.Context, uri string) (string, func() error, error) {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return r.Remote.Fetch(ctx, uri)
	}
	return r.Local.Fetch(ctx, uri)
}
