package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"

	"dealer_sync/config"
	"dealer_sync/httputil"
)

// FetchResult is the outcome of one listings search. A failed fetch has Err set
// and no listings; an empty inventory has neither.
type FetchResult struct {
	Listings  []RawListing
	Shape     Shape
	Container string
	Err       error
}

func (r FetchResult) Failed() bool {
	return r.Err != nil
}

// BlocketClient talks to the listings search API and scrapes item pages for images.
type BlocketClient struct {
	cfg          config.ProviderConfig
	clients      *httputil.Clients
	imagePattern *regexp.Regexp
}

func NewBlocketClient(cfg config.ProviderConfig, clients *httputil.Clients) (*BlocketClient, error) {
	re, err := regexp.Compile(cfg.ImagePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid image pattern: %w", err)
	}

	return &BlocketClient{
		cfg:          cfg,
		clients:      clients,
		imagePattern: re,
	}, nil
}

// ItemURL builds the public item page URL for an ad id.
func (c *BlocketClient) ItemURL(adID string) string {
	return fmt.Sprintf(c.cfg.ItemURLTemplate, adID)
}

// FetchDealerListings never returns an error to the caller; failures are
// reported through FetchResult.Err with an empty listing set.
func (c *BlocketClient) FetchDealerListings(ctx context.Context, dealerID string) FetchResult {
	log.Printf("[%s] fetching listings for dealer %s", c.cfg.Name, dealerID)

	body, err := c.fetchSearch(ctx, dealerID)
	if err != nil {
		log.Printf("[%s] error fetching listings: %v", c.cfg.Name, err)
		return FetchResult{Err: err}
	}

	listings, shape, container, err := DecodeListings(body)
	if err != nil {
		log.Printf("[%s] error fetching listings: %v", c.cfg.Name, err)
		return FetchResult{Err: err}
	}

	log.Printf("[%s] fetched %d listings (shape: %s)", c.cfg.Name, len(listings), shape)
	return FetchResult{
		Listings:  listings,
		Shape:     shape,
		Container: container,
	}
}

func (c *BlocketClient) fetchSearch(ctx context.Context, dealerID string) ([]byte, error) {
	endpoint, err := url.Parse(c.cfg.SearchURL)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	q := endpoint.Query()
	q.Set(c.cfg.DealerParam, dealerID)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.clients.API.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("listings API error %d: %s", resp.StatusCode, string(respBody))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// FetchAllImages returns every CDN image URL on the item page, first-seen order,
// without duplicates. Any failure yields an empty list.
func (c *BlocketClient) FetchAllImages(ctx context.Context, adID, canonicalURL string) []string {
	pageURL := canonicalURL
	if pageURL == "" {
		pageURL = c.ItemURL(adID)
	}

	page, err := c.fetchPage(ctx, pageURL)
	if err != nil {
		log.Printf("[%s] error fetching images for ad %s: %v", c.cfg.Name, adID, err)
		return []string{}
	}

	images := ExtractImages(c.imagePattern, page)
	log.Printf("[%s] found %d images for ad %s", c.cfg.Name, len(images), adID)
	return images
}

func (c *BlocketClient) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.clients.Pages.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// ExtractImages scans raw page text for pattern matches, deduplicated in first-seen order.
func ExtractImages(pattern *regexp.Regexp, page string) []string {
	seen := make(map[string]bool)
	images := []string{}
	for _, img := range pattern.FindAllString(page, -1) {
		if seen[img] {
			continue
		}
		seen[img] = true
		images = append(images, img)
	}
	return images
}
