package scraper

import (
	"context"
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"

	"litoralnorte/imovelworker/internal/property"
)

// FetchFunc fetches one listing page. Injected so tests can stub the
// network away.
type FetchFunc func(ctx context.Context, url string) (io.Reader, error)

// ElementHandler customizes extraction for one field of a listing card
type ElementHandler func(*goquery.Selection) string

// IDExtractorFunc derives a portal-local listing id from a listing URL
type IDExtractorFunc func(link string) (string, error)

// Selectors contains CSS selectors for the elements of a listing card.
// They are portal-specific and silently yield zero matches when the
// portal's markup changes; the driver logs that as outdated selectors.
type Selectors struct {
	ListingCard string
	Title       string
	Link        string
	Price       string
	Address     string
	Photo       string

	// Optional overrides for portals whose markup needs more than a
	// selector lookup
	TitleHandler   ElementHandler
	PriceHandler   ElementHandler
	AddressHandler ElementHandler
}

// Portal describes one real-estate portal: how to build a per-city
// listing URL and how to read its listing cards.
type Portal struct {
	Source      property.Source
	BaseURL     string
	BlockKey    string
	Delay       time.Duration
	ListingURL  func(citySlug string) string
	Selectors   Selectors
	IDExtractor IDExtractorFunc
	// TypeLabel is the raw property-type label emitted per card; the
	// portals' cards carry no usable type field, refinement happens in
	// the normalizer
	TypeLabel string
}

// Filters narrows a scrape invocation
type Filters struct {
	Cities []string `json:"cities,omitempty"`
}
