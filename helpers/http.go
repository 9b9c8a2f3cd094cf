package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	mathrand "math/rand"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	errs "litoralnorte/imovelworker/pkg/errors"
)

// HTTP client and header configurations
var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
	}

	referers = []string{
		"https://www.google.com/",
		"https://www.google.com.br/",
		"https://www.bing.com/",
	}
)

// Fetcher fetches portal pages with a spoofed desktop-browser identity.
// Portals reject bare clients with a 403, reported as a distinct
// blocked error so callers can log it as a detected block.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher whose requests time out after the given duration
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// FetchPage sends an HTTP GET request with browser-like headers, converts
// the response body to UTF-8 (if needed), and returns it as an io.Reader.
func (f *Fetcher) FetchPage(ctx context.Context, url string) (io.Reader, error) {
	rnd := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgents[rnd.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Referer", referers[rnd.Intn(len(referers))])
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Sec-Fetch-User", "?1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errs.NewNetwork("", fmt.Sprintf("failed to fetch %s", url), err)
	}

	// A 403 is the portals' anti-bot response, not a generic failure
	if resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		return nil, errs.NewBlocked("", url)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := resp.Header.Get("Retry-After")
		resp.Body.Close()
		return nil, errs.NewNetwork("", fmt.Sprintf("rate limited; retry after %s", retryAfter), nil)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errs.NewNetwork("", fmt.Sprintf("fetch %s unexpected status code: %d", url, resp.StatusCode), nil)
	}

	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Determine the encoding from Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))

	if name == "utf-8" || name == "UTF-8" {
		return bytes.NewReader(bodyBytes), nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, fmt.Errorf("failed to read converted UTF-8 body: %w", err)
	}

	return &buf, nil
}
