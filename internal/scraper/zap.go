package scraper

import (
	"fmt"
	"time"

	"litoralnorte/imovelworker/internal/property"
)

// NewZapPortal describes ZAP Imóveis. Result pages carry the listing id
// as the last hyphen-separated URL segment ("...-id-2596190329/").
// Card images load via client-side script and are unreachable here.
func NewZapPortal(baseURL string) Portal {
	return Portal{
		Source:   property.SourceZap,
		BaseURL:  baseURL,
		BlockKey: "zap_blocked",
		Delay:    3000 * time.Millisecond,
		ListingURL: func(citySlug string) string {
			return fmt.Sprintf("%s/venda/imoveis/sp+%s/", baseURL, citySlug)
		},
		Selectors: Selectors{
			ListingCard: "div[data-cy='rp-property-cd']",
			Title:       "h2[data-cy='rp-cardProperty-location-txt']",
			Link:        "a[itemprop='url']",
			Price:       "div[data-cy='rp-cardProperty-price-txt'] p",
			Address:     "p[data-cy='rp-cardProperty-street-txt']",
		},
		IDExtractor: trailingNumericID,
		TypeLabel:   "imóvel",
	}
}
