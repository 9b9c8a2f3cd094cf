package scraper

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"litoralnorte/imovelworker/config"
	"litoralnorte/imovelworker/internal/property"
	"litoralnorte/imovelworker/logger"
	errs "litoralnorte/imovelworker/pkg/errors"
	"litoralnorte/imovelworker/services/cache"
)

// Scraper drives one portal: per-city URL building, fetching, parsing
// and normalization. Cities are visited strictly sequentially with an
// inter-request delay; that throttle is rate-limit discipline, not a
// performance concern.
type Scraper struct {
	portal    Portal
	fetch     FetchFunc
	cfg       config.ScrapeConfig
	blocks    cache.CacheService
	blockTime time.Duration
	log       *logger.Logger
}

// New creates a scraper for the given portal. The configuration is a
// value object owned by this scraper; nothing is shared or mutated.
func New(portal Portal, fetch FetchFunc, cfg config.ScrapeConfig, blocks cache.CacheService, blockTime time.Duration) *Scraper {
	if portal.Delay > 0 {
		cfg.Delay = portal.Delay
	}
	return &Scraper{
		portal:    portal,
		fetch:     fetch,
		cfg:       cfg,
		blocks:    blocks,
		blockTime: blockTime,
		log:       logger.ForScraper(string(portal.Source)),
	}
}

// Name returns the portal source name
func (s *Scraper) Name() string {
	return string(s.portal.Source)
}

// Scrape fetches, parses and normalizes listings for every target city.
// A failing city is logged and contributes zero records; the call returns
// the partial results. Only context cancellation aborts the loop.
func (s *Scraper) Scrape(ctx context.Context, filters Filters) ([]property.Property, error) {
	cities := filters.Cities
	if len(cities) == 0 {
		cities = s.cfg.Cities
	}

	var results []property.Property
	for i, city := range cities {
		if i > 0 {
			if err := s.delay(ctx); err != nil {
				return results, err
			}
		}
		results = append(results, s.scrapeCity(ctx, city)...)
	}
	return results, nil
}

// scrapeCity is the per-city error boundary: nothing escapes it
func (s *Scraper) scrapeCity(ctx context.Context, city string) []property.Property {
	log := s.log.WithField("city", city)

	if s.isBlocked() {
		log.Warn().Msg("Portal marked blocked, skipping city")
		return nil
	}

	url := s.portal.ListingURL(property.CitySlug(city))

	reader, err := s.fetch(ctx, url)
	if err != nil {
		if errs.IsBlocked(err) {
			log.Error().Str("url", url).Msg("Request rejected with 403, likely anti-bot block")
			s.markBlocked()
		} else {
			log.Error().Err(err).Str("url", url).Msg("Failed to fetch listing page")
		}
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		perr := errs.NewParsing(s.Name(), "failed to parse listing page", err)
		log.Error().Err(perr).Str("url", url).Msg("Failed to parse listing page")
		return nil
	}

	cards := doc.Find(s.portal.Selectors.ListingCard)
	if cards.Length() == 0 {
		log.Warn().Str("url", url).Msg("No properties found, selectors may be outdated")
		return nil
	}

	var records []property.Property
	cards.Each(func(i int, sel *goquery.Selection) {
		raw, err := s.extractListing(sel, city)
		if err != nil {
			log.Warn().Err(err).Int("card", i).Msg("Skipping malformed listing card")
			return
		}
		if p := property.Normalize(*raw); p != nil {
			records = append(records, *p)
		}
	})

	log.Info().Int("cards", cards.Length()).Int("records", len(records)).Msg("Scraped city")
	return records
}

// extractListing reads one listing card into a raw record
func (s *Scraper) extractListing(sel *goquery.Selection, city string) (*property.RawListing, error) {
	sels := s.portal.Selectors

	link, exists := sel.Find(sels.Link).Attr("href")
	link = strings.TrimSpace(link)
	if !exists || link == "" {
		return nil, errs.NewValidation(s.Name(), "listing link not found")
	}
	link = s.resolveURL(link)

	// A listing without a stable id would defeat upsert deduplication;
	// drop it instead of fabricating a key
	id, err := s.portal.IDExtractor(link)
	if err != nil {
		return nil, errs.NewParsing(s.Name(), fmt.Sprintf("external id not extracted from %s", link), err)
	}
	if id == "" {
		return nil, errs.NewValidation(s.Name(), fmt.Sprintf("external id not extracted from %s", link))
	}

	var title string
	if sels.TitleHandler != nil {
		title = sels.TitleHandler(sel)
	} else {
		title = sel.Find(sels.Title).First().Text()
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errs.NewValidation(s.Name(), "listing title not found")
	}

	var priceText string
	if sels.PriceHandler != nil {
		priceText = sels.PriceHandler(sel)
	} else {
		priceText = sel.Find(sels.Price).First().Text()
	}

	var address string
	if sels.AddressHandler != nil {
		address = sels.AddressHandler(sel)
	} else {
		address = sel.Find(sels.Address).First().Text()
	}
	address = strings.TrimSpace(address)

	var neighborhood string
	if parts := strings.Split(address, ","); len(parts) > 1 {
		neighborhood = strings.TrimSpace(parts[0])
	}

	var photos []string
	if sels.Photo != "" {
		sel.Find(sels.Photo).Each(func(_ int, img *goquery.Selection) {
			src, ok := img.Attr("src")
			if !ok || src == "" {
				src, _ = img.Attr("data-src")
			}
			if src = strings.TrimSpace(src); src != "" {
				photos = append(photos, s.resolveURL(src))
			}
		})
	}

	return &property.RawListing{
		ExternalID:   fmt.Sprintf("%s-%s", s.portal.Source, id),
		Source:       s.portal.Source,
		URL:          link,
		Transaction:  property.TransactionSale,
		PropertyType: s.portal.TypeLabel,
		Title:        title,
		Price:        property.ParsePrice(priceText),
		City:         city,
		Neighborhood: neighborhood,
		Address:      address,
		PhotoURLs:    photos,
		Features:     []string{},
	}, nil
}

// resolveURL makes portal-relative links absolute
func (s *Scraper) resolveURL(link string) string {
	if strings.HasPrefix(link, "//") {
		return "https:" + link
	}
	if strings.HasPrefix(link, "/") {
		return s.portal.BaseURL + link
	}
	return link
}

// delay suspends between cities, honoring cancellation
func (s *Scraper) delay(ctx context.Context) error {
	timer := time.NewTimer(s.cfg.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scraper) isBlocked() bool {
	if s.blocks == nil || s.portal.BlockKey == "" {
		return false
	}
	_, err := s.blocks.Get(s.portal.BlockKey)
	return err == nil
}

func (s *Scraper) markBlocked() {
	if s.blocks == nil || s.portal.BlockKey == "" {
		return
	}
	seconds := strconv.Itoa(int(s.blockTime / time.Second))
	if err := s.blocks.Set(s.portal.BlockKey, []byte(seconds), s.blockTime); err != nil {
		s.log.Warn().Err(err).Msg("Failed to set block cache entry")
	}
}
