package geocoder

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxLoggedBody = 512

type httpTransport struct {
	client *http.Client
	logger *zap.Logger
}

func newHTTPTransport(client *http.Client, timeout time.Duration, logger *zap.Logger) *httpTransport {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &httpTransport{client: client, logger: logger}
}

// getJSON performs a GET and returns the decoded body once it is known to be JSON.
// The status code is not inspected: providers report failures inside the body.
func (t *httpTransport) getJSON(ctx context.Context, rawURL string) ([]byte, error) {
	t.logger.Debug("Geocoder request", zap.String("url", maskURL(rawURL)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Явный заголовок отключает автоматическую распаковку в net/http
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Error("Geocoder request error", zap.String("url", maskURL(rawURL)), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp)
	if err != nil {
		t.logger.Error("Geocoder decompress error", zap.Error(err))
		return nil, err
	}

	if !json.Valid(body) {
		t.logger.Error("Failed to parse geocoder response", zap.String("body", truncate(string(body))))
		return nil, fmt.Errorf("failed to parse response: %s", truncate(string(body)))
	}

	t.logger.Debug("Geocoder response",
		zap.Int("status", resp.StatusCode),
		zap.String("body", truncate(string(body))))
	return body, nil
}

func decodeBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		return readAll(zr, "gzip")
	case "deflate":
		// deflate по RFC это zlib-поток, но часть серверов шлёт сырой deflate
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			defer zr.Close()
			return readAll(zr, "deflate")
		}
		fr := flate.NewReader(bytes.NewReader(raw))
		defer fr.Close()
		return readAll(fr, "deflate")
	default:
		return raw, nil
	}
}

func readAll(r io.Reader, encoding string) ([]byte, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", encoding, err)
	}
	return b, nil
}

func truncate(s string) string {
	if len(s) <= maxLoggedBody {
		return s
	}
	return s[:maxLoggedBody] + "..."
}
