package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
	"golang.org/x/net/html/charset"

	"github.com/japaniel/vocabreader/pkg/lang"
)

var (
	// ErrDisallowed is returned when robots.txt forbids fetching a URL.
	ErrDisallowed = errors.New("disallowed by robots.txt")
	// ErrTooLarge is returned when a response exceeds the body limit.
	ErrTooLarge = errors.New("response body too large")
)

// DefaultMaxBodyBytes limits fetched HTML documents.
const DefaultMaxBodyBytes = 10 << 20

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	CheckRobots  bool
}

// Fetcher downloads web pages and extracts their readable article text.
type Fetcher struct {
	client *http.Client
	cfg    FetcherConfig
	log    *logrus.Entry
}

// Page is the readable content of a fetched web page.
type Page struct {
	URL      string
	Title    string
	Author   string
	SiteName string
	Text     string
}

// NewFetcher creates a Fetcher. Zero config values use defaults.
func NewFetcher(cfg FetcherConfig, logger *logrus.Entry) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "vocabreader/" + lang.Version()
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		log:    logger.WithField("component", "fetcher"),
	}
}

// Fetch downloads rawURL and extracts its article.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("fetch %q: invalid url", rawURL)
	}
	if f.cfg.CheckRobots {
		if err := f.checkRobots(ctx, u); err != nil {
			return nil, err
		}
	}

	body, contentType, err := f.get(ctx, u.String(), "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	decoded, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", u, err)
	}
	html, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", u, err)
	}

	// ruby readings would otherwise be duplicated into the text
	html = lang.SanitizeRuby(html)

	article, err := readability.FromReader(bytes.NewReader(html), u)
	if err != nil {
		return nil, fmt.Errorf("extract article from %s: %w", u, err)
	}
	f.log.WithFields(logrus.Fields{"url": u.String(), "title": article.Title, "chars": len(article.TextContent)}).Info("page fetched")
	return &Page{
		URL:      u.String(),
		Title:    strings.TrimSpace(article.Title),
		Author:   strings.TrimSpace(article.Byline),
		SiteName: article.SiteName,
		Text:     strings.TrimSpace(article.TextContent),
	}, nil
}

func (f *Fetcher) checkRobots(ctx context.Context, u *url.URL) error {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		// unreachable robots.txt does not block the fetch
		f.log.WithError(err).WithField("url", robotsURL).Warn("robots.txt fetch failed")
		return nil
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return fmt.Errorf("read robots.txt: %w", err)
	}
	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, raw)
	if err != nil {
		return fmt.Errorf("parse robots.txt: %w", err)
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if !robots.TestAgent(path, f.cfg.UserAgent) {
		return fmt.Errorf("fetch %s: %w", u, ErrDisallowed)
	}
	return nil
}

func (f *Fetcher) get(ctx context.Context, target, accept string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
	}
	if resp.ContentLength > f.cfg.MaxBodyBytes {
		return nil, "", fmt.Errorf("fetch %s: %w", target, ErrTooLarge)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", target, err)
	}
	if int64(len(body)) > f.cfg.MaxBodyBytes {
		return nil, "", fmt.Errorf("fetch %s: %w", target, ErrTooLarge)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
