// Package valuation estimates the collectible market value of a bill from
// listings on eBay. Estimates are best-effort: any failure along the way
// means "no estimate", never an error the caller must handle.
package valuation

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"dollartrack/internal/models"
)

const (
	defaultSearchURL = "https://www.ebay.com/sch/i.html"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// priceClass is the listing-price element class on eBay search pages.
	priceClass = "s-item__price"
)

// Scraper looks up comparable listings and averages their prices.
type Scraper struct {
	// Client is the HTTP client used for lookups.
	Client *http.Client

	// SearchURL is the listing search endpoint. Overridable for tests.
	SearchURL string

	// UserAgent is sent with every request; the search page refuses default
	// Go client strings.
	UserAgent string
}

// New creates a scraper with production defaults.
func New() *Scraper {
	return &Scraper{
		Client:    http.DefaultClient,
		SearchURL: defaultSearchURL,
		UserAgent: defaultUserAgent,
	}
}

// CurrentValue searches current listings for comparable bills and returns
// their average price. ok is false when nothing usable was found.
func (s *Scraper) CurrentValue(ctx context.Context, serialNumber string, faceValue float64, seriesYear *int) (value float64, ok bool) {
	terms := fmt.Sprintf("%g dollar bill %s", faceValue, serialNumber)
	if seriesYear != nil {
		terms += fmt.Sprintf(" %d series", *seriesYear)
	}

	reqURL := s.SearchURL + "?_nkw=" + url.QueryEscape(terms) + "&_sacat=0"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		slog.Warn("Value lookup failed", "serial_number", serialNumber, "error", err)
		return 0, false
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		slog.Warn("Value lookup failed", "serial_number", serialNumber, "error", err)
		return 0, false
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		slog.Warn("Failed to parse listing page", "serial_number", serialNumber, "error", err)
		return 0, false
	}

	prices := collectPrices(doc)
	if len(prices) == 0 {
		return 0, false
	}

	var sum float64
	for _, p := range prices {
		sum += p
	}
	return sum / float64(len(prices)), true
}

// HistoricalAverage estimates a long-run value for the bill.
// TODO: collect real historical data from more sources than current listings.
func (s *Scraper) HistoricalAverage(ctx context.Context, serialNumber string, faceValue float64, seriesYear *int) (float64, bool) {
	return s.CurrentValue(ctx, serialNumber, faceValue, seriesYear)
}

// Estimate combines the current and historical lookups into one figure.
func (s *Scraper) Estimate(ctx context.Context, bill models.Bill) (float64, bool) {
	var values []float64

	if v, ok := s.CurrentValue(ctx, bill.SerialNumber, bill.FaceValue, bill.SeriesYear); ok {
		values = append(values, v)
	}
	if v, ok := s.HistoricalAverage(ctx, bill.SerialNumber, bill.FaceValue, bill.SeriesYear); ok {
		values = append(values, v)
	}

	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// collectPrices walks the parsed page and extracts dollar amounts from
// listing-price elements.
func collectPrices(n *html.Node) []float64 {
	var prices []float64
	if n.Type == html.ElementNode && hasClass(n, priceClass) {
		if v, ok := parsePrice(nodeText(n)); ok {
			prices = append(prices, v)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		prices = append(prices, collectPrices(c)...)
	}
	return prices
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}

// parsePrice reads a "$1,234.56" style listing price.
func parsePrice(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "$") {
		return 0, false
	}
	// Ranges like "$10.00 to $20.00" keep only the leading amount.
	text = strings.Fields(text)[0]
	text = strings.ReplaceAll(strings.TrimPrefix(text, "$"), ",", "")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
