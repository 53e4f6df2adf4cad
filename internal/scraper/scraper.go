package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/artsindex/internal/logger"
	"github.com/pfrederiksen/artsindex/internal/record"
)

const (
	DefaultBaseURL = "http://www.artsindexusa.org"
	DefaultMetric  = "Total nonprofit arts revenue per capita"
	UserAgent      = "artsindex-cli/1.0 (github.com/pfrederiksen/artsindex)"
	Timeout        = 30 * time.Second

	countiesPath = "/fetchCounties.php"
	pagePath     = "/where-i-live"
	valuesPath   = "/fetchCounty.php"
)

// ErrUnexpectedStatus is returned for any non-200 response
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Scraper fetches county lists, label pages and value arrays from the Arts Index site
type Scraper struct {
	client    *http.Client
	baseURL   string
	metric    string
	retries   int
	retryWait time.Duration
	log       *logger.Logger
}

// Option configures a Scraper
type Option func(*Scraper)

// WithBaseURL overrides the site root
func WithBaseURL(u string) Option {
	return func(s *Scraper) {
		s.baseURL = strings.TrimRight(u, "/")
	}
}

// WithMetric sets the label substring to look for
func WithMetric(metric string) Option {
	return func(s *Scraper) {
		s.metric = metric
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		s.client.Timeout = d
	}
}

// WithRetries sets how many times a failed request is retried. 0 disables retries.
func WithRetries(n int) Option {
	return func(s *Scraper) {
		s.retries = n
	}
}

// WithRetryInterval sets the initial wait between retries
func WithRetryInterval(d time.Duration) Option {
	return func(s *Scraper) {
		s.retryWait = d
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(l *logger.Logger) Option {
	return func(s *Scraper) {
		s.log = l
	}
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		baseURL:   DefaultBaseURL,
		metric:    DefaultMetric,
		retryWait: backoff.DefaultInitialInterval,
		log:       logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchRegions fetches the counties of a state, in the order the server returns them
func (s *Scraper) FetchRegions(ctx context.Context, state string) ([]record.Region, error) {
	body, err := s.get(ctx, countiesPath, url.Values{"state": {state}})
	if err != nil {
		return nil, fmt.Errorf("fetching counties for %s: %w", state, err)
	}
	return parseRegions(bytes.NewReader(body), state)
}

// FetchCountyPage fetches the label page of a county and indexes the metric labels
func (s *Scraper) FetchCountyPage(ctx context.Context, fips string) (*CountyPage, error) {
	body, err := s.get(ctx, pagePath, url.Values{"c4": {fips}})
	if err != nil {
		return nil, fmt.Errorf("fetching county page %s: %w", fips, err)
	}
	page, err := parseCountyPage(bytes.NewReader(body), s.metric)
	if err != nil {
		return nil, fmt.Errorf("county page %s: %w", fips, err)
	}
	return page, nil
}

// FetchValues fetches the value fragments of a county
func (s *Scraper) FetchValues(ctx context.Context, fips string) ([]string, error) {
	body, err := s.get(ctx, valuesPath, url.Values{"selectedCounty": {fips}})
	if err != nil {
		return nil, fmt.Errorf("fetching county values %s: %w", fips, err)
	}
	values, err := parseValues(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("county values %s: %w", fips, err)
	}
	return values, nil
}

// ScrapeCounty fetches both documents of a county and builds its records
func (s *Scraper) ScrapeCounty(ctx context.Context, region record.Region) (record.County, error) {
	page, err := s.FetchCountyPage(ctx, region.FIPS)
	if err != nil {
		return record.County{}, err
	}

	values, err := s.FetchValues(ctx, region.FIPS)
	if err != nil {
		return record.County{}, err
	}

	if page.LabelCount != len(values) {
		s.log.Warn("label and value counts differ", logger.Fields{
			"fips":   region.FIPS,
			"labels": page.LabelCount,
			"values": len(values),
		})
	}

	return ExtractRecords(region, page, values)
}

// get performs a GET request against the site and returns the body
func (s *Scraper) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s?%s", s.baseURL, path, params.Encode())

	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		data, err := s.fetch(ctx, reqURL)
		if err != nil {
			s.log.Debug("request failed", logger.Fields{
				"url":     reqURL,
				"attempt": attempt,
				"error":   err.Error(),
			})
			return err
		}
		body = data
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.retryWait
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(s.retries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}

// fetch does a single request. Client errors are permanent and never retried.
func (s *Scraper) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return data, nil
}

// parseRegions decodes the county list
func parseRegions(r io.Reader, state string) ([]record.Region, error) {
	var entries []string
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("parsing county list: %w", err)
	}

	regions := make([]record.Region, 0, len(entries))
	for _, entry := range entries {
		region, err := record.ParseRegion(state, entry)
		if err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}
	return regions, nil
}

// parseValues decodes the value fragment array
func parseValues(r io.Reader) ([]string, error) {
	var values []string
	if err := json.NewDecoder(r).Decode(&values); err != nil {
		return nil, fmt.Errorf("parsing values: %w", err)
	}
	return values, nil
}

// fragmentText returns the plain text of an HTML fragment
func fragmentText(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parsing fragment: %w", err)
	}
	return doc.Text(), nil
}
