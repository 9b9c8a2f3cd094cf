package scraper

import (
	"fmt"
	"time"

	"litoralnorte/imovelworker/internal/property"
)

// NewVivaRealPortal describes VivaReal. Same parent company as ZAP but a
// different markup generation, so the selectors are independent.
// Card images load via client-side script and are unreachable here.
func NewVivaRealPortal(baseURL string) Portal {
	return Portal{
		Source:   property.SourceVivaReal,
		BaseURL:  baseURL,
		BlockKey: "vivareal_blocked",
		Delay:    2000 * time.Millisecond,
		ListingURL: func(citySlug string) string {
			return fmt.Sprintf("%s/venda/sp/%s/", baseURL, citySlug)
		},
		Selectors: Selectors{
			ListingCard: "article[data-type='property']",
			Title:       "span.property-card__title",
			Link:        "a.property-card__content-link",
			Price:       "div.property-card__price",
			Address:     "span.property-card__address",
		},
		IDExtractor: trailingNumericID,
		TypeLabel:   "imóvel",
	}
}
