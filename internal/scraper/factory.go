package scraper

import (
	"fmt"
	"strings"

	"litoralnorte/imovelworker/config"
	"litoralnorte/imovelworker/helpers"
	"litoralnorte/imovelworker/services/cache"
)

// CreateScrapers creates the scrapers for all supported portals, in the
// fixed order the pipeline runs them.
func CreateScrapers(cfg config.Config, fetch FetchFunc, blocks cache.CacheService) []*Scraper {
	portals := []Portal{
		NewZapPortal(cfg.ZapURL),
		NewVivaRealPortal(cfg.VivaRealURL),
		NewOlxPortal(cfg.OlxURL),
	}

	scrapers := make([]*Scraper, 0, len(portals))
	for _, portal := range portals {
		scrapers = append(scrapers, New(portal, fetch, cfg.Scrape, blocks, cfg.BlockTime))
	}
	return scrapers
}

// trailingNumericID extracts the listing id all three portals encode as
// the last hyphen-separated segment of the listing URL. A link that does
// not end in digits yields an error so the caller can drop the record.
func trailingNumericID(link string) (string, error) {
	base := strings.Split(link, "?")[0]
	base = strings.TrimSuffix(base, "/")

	id, err := helpers.GetSplitPart(base, "-", -1)
	if err != nil {
		return "", err
	}
	if id == "" || !isDigits(id) {
		return "", fmt.Errorf("no numeric id in link %q", link)
	}
	return id, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
