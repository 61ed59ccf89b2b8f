package update

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/adamancini/devsim/internal/device"
	"github.com/adamancini/devsim/internal/types"
)

// DefaultDownloadTimeout bounds a single artifact download.
const DefaultDownloadTimeout = 30 * time.Second

// HTTPDownloader downloads artifacts over HTTP(S) and verifies them
type HTTPDownloader struct {
	client *http.Client
	logger *slog.Logger
}

// NewHTTPDownloader creates a new HTTP downloader.
//
// The client accepts any server certificate. Simulated devices behave like
// constrained devices without a CA store; this client must never be used
// outside the simulator.
func NewHTTPDownloader(timeout time.Duration) *HTTPDownloader {
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // simulator only

	return &HTTPDownloader{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: slog.Default(),
	}
}

// WithLogger sets the logger used for download diagnostics
func (d *HTTPDownloader) WithLogger(logger *slog.Logger) *HTTPDownloader {
	d.logger = logger
	return d
}

// Download fetches url and checks it against the expected size and SHA-1 hash.
// Every failure, including transport errors, is returned as an error status.
func (d *HTTPDownloader) Download(ctx context.Context, url string, creds Credentials, sha1Hash string, size int64) device.UpdateStatus {
	d.logger.Debug("downloading artifact",
		"url", url,
		"target_token", HideToken(creds.TargetToken),
		"gateway_token", HideToken(creds.GatewayToken),
		"sha1", sha1Hash,
		"size", size,
	)

	status, err := d.readAndCheck(ctx, url, creds, sha1Hash, size)
	if err != nil {
		return errorStatus("Failed to download %s: %v", url, err)
	}
	return status
}

func (d *HTTPDownloader) readAndCheck(ctx context.Context, url string, creds Credentials, sha1Hash string, size int64) (device.UpdateStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return device.UpdateStatus{}, err
	}
	if auth, ok := creds.authorization(); ok {
		req.Header.Set("Authorization", auth)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return device.UpdateStatus{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorStatus("Download %s failed (%d)", url, resp.StatusCode), nil
	}

	// ContentLength is -1 when the server did not declare one
	if resp.ContentLength >= 0 && resp.ContentLength != size {
		return errorStatus("Download %s has wrong content length (Expected: %d but got: %d)", url, size, resp.ContentLength), nil
	}

	hr := NewHashVerifyingReader(resp.Body)
	read, err := hr.Drain()
	if errors.Is(err, io.ErrUnexpectedEOF) {
		// Body ended before the declared Content-Length
		return incomplete(url, size, read), nil
	}
	if err != nil {
		return device.UpdateStatus{}, err
	}

	if read != size {
		return incomplete(url, size, read), nil
	}

	if !hr.Verify(sha1Hash) {
		return errorStatus("Download %s failed with SHA1 hash mismatch (Expected: %s but got: %s) (%d bytes)",
			url, sha1Hash, hr.Sum(), read), nil
	}

	msg := fmt.Sprintf("Downloaded %s (%d bytes)", url, read)
	d.logger.Debug(msg)
	return device.NewUpdateStatus(types.StatusSuccessful, msg), nil
}

func incomplete(url string, size, read int64) device.UpdateStatus {
	return errorStatus("Download %s is incomplete (Expected: %d but got: %d)", url, size, read)
}

func errorStatus(format string, args ...any) device.UpdateStatus {
	return device.NewUpdateStatus(types.StatusError, fmt.Sprintf(format, args...))
}
