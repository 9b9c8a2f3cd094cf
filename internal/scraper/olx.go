package scraper

import (
	"fmt"
	"time"

	"litoralnorte/imovelworker/internal/property"
)

// NewOlxPortal describes OLX. The only portal of the three that serves
// card images server-side, so photo URLs are extracted here.
func NewOlxPortal(baseURL string) Portal {
	return Portal{
		Source:   property.SourceOlx,
		BaseURL:  baseURL,
		BlockKey: "olx_blocked",
		Delay:    2500 * time.Millisecond,
		ListingURL: func(citySlug string) string {
			return fmt.Sprintf("%s/imoveis/venda/%s", baseURL, citySlug)
		},
		Selectors: Selectors{
			ListingCard: "ul#ad-list > li",
			Title:       "h2.ad__card-title",
			Link:        "a[data-lurker-detail='list_id']",
			Price:       "p.ad__card-price",
			Address:     "p.ad__card-location",
			Photo:       "img",
		},
		IDExtractor: trailingNumericID,
		TypeLabel:   "imóvel",
	}
}
