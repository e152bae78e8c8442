// Package wikipedia fetches and parses the world records page.
package wikipedia

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/temoto/robotstxt"
	"golang.org/x/net/html/charset"

	"github.com/couchcryptid/athletics-records-etl/internal/extract"
)

// tableSelector matches the record tables; men's first, women's second.
const tableSelector = "table.wikitable"

// ErrDisallowed is returned when robots.txt forbids fetching the page.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Client fetches the records page over HTTP.
type Client struct {
	pageURL     string
	userAgent   string
	checkRobots bool
	http        *resty.Client
	logger      *slog.Logger
}

// NewClient creates a page client.
func NewClient(pageURL, userAgent string, timeout time.Duration, checkRobots bool, logger *slog.Logger) *Client {
	return &Client{
		pageURL:     pageURL,
		userAgent:   userAgent,
		checkRobots: checkRobots,
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent),
		logger: logger,
	}
}

// Fetch downloads and parses the records page.
func (c *Client) Fetch(ctx context.Context) (*goquery.Document, error) {
	u, err := url.Parse(c.pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}
	if c.checkRobots {
		if err := c.allowed(ctx, u); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).Get(c.pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode())
	}

	doc, err := parse(resp.Body(), resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	c.logger.Info("page fetched",
		"url", c.pageURL,
		"bytes", len(resp.Body()),
		"duration", time.Since(start),
	)
	return doc, nil
}

// allowed checks the page path against the host's robots.txt. A failed
// request or a 4xx allows the fetch; a 5xx disallows everything.
func (c *Client) allowed(ctx context.Context, u *url.URL) error {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	resp, err := c.http.R().SetContext(ctx).Get(robotsURL)
	if err != nil {
		c.logger.Warn("robots.txt unavailable", "url", robotsURL, "error", err)
		return nil
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode(), resp.Body())
	if err != nil {
		c.logger.Warn("robots.txt unreadable", "url", robotsURL, "error", err)
		return nil
	}
	if !data.TestAgent(u.Path, c.userAgent) {
		return fmt.Errorf("%s: %w", u.Path, ErrDisallowed)
	}
	return nil
}

// LoadFile parses a saved copy of the records page.
func LoadFile(path string) (*goquery.Document, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	return parse(body, "text/html")
}

// File is a saved copy of the records page, read instead of fetching.
type File string

// Fetch parses the saved page.
func (f File) Fetch(_ context.Context) (*goquery.Document, error) {
	return LoadFile(string(f))
}

// RecordTables returns the men's and women's record tables.
func RecordTables(doc *goquery.Document) (men, women *goquery.Selection, err error) {
	tables := doc.Find(tableSelector)
	if tables.Length() < 2 {
		return nil, nil, fmt.Errorf("found %d %s tables: %w", tables.Length(), tableSelector, extract.ErrTableNotFound)
	}
	return tables.Eq(0), tables.Eq(1), nil
}

// parse decodes body to UTF-8 and parses it. A BOM or a Content-Type charset
// wins; otherwise a body that is valid UTF-8 is read as UTF-8.
func parse(body []byte, contentType string) (*goquery.Document, error) {
	var r io.Reader = bytes.NewReader(body)
	_, name, certain := charset.DetermineEncoding(body, contentType)
	if name != "utf-8" && (certain || !utf8.Valid(body)) {
		decoded, err := charset.NewReaderLabel(name, r)
		if err != nil {
			return nil, fmt.Errorf("decode charset: %w", err)
		}
		r = decoded
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}
