package scraper

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"litoralnorte/imovelworker/config"
	"litoralnorte/imovelworker/internal/property"
)

const zapFixture = `<html><body>
<div data-cy="rp-property-cd">
	<a itemprop="url" href="/imovel/venda-casa-3-quartos-caraguatatuba-id-2596190329/">
		<h2 data-cy="rp-cardProperty-location-txt">Casa para comprar em Caraguatatuba</h2>
		<p data-cy="rp-cardProperty-street-txt">Martim de Sá, Caraguatatuba</p>
		<div data-cy="rp-cardProperty-price-txt"><p>R$ 650.000</p></div>
	</a>
</div>
<div data-cy="rp-property-cd">
	<a itemprop="url" href="/imovel/venda-apartamento-caraguatatuba-id-2596190330/">
		<h2 data-cy="rp-cardProperty-location-txt">Apartamento para comprar em Caraguatatuba</h2>
		<p data-cy="rp-cardProperty-street-txt">Centro, Caraguatatuba</p>
		<div data-cy="rp-cardProperty-price-txt"><p>R$ 380.000</p></div>
	</a>
</div>
</body></html>`

const vivaRealFixture = `<html><body>
<article data-type="property">
	<a class="property-card__content-link" href="/imovel/casa-2-quartos-ubatuba-sp-id-87654321/">
		<span class="property-card__title">Casa com 2 Quartos à venda</span>
		<span class="property-card__address">Itaguá, Ubatuba - SP</span>
		<div class="property-card__price">R$ 420.000</div>
	</a>
</article>
</body></html>`

const olxFixture = `<html><body>
<ul id="ad-list">
	<li>
		<a data-lurker-detail="list_id" href="https://sp.olx.com.br/imoveis/terreno-em-ilhabela-1234567890">
			<img src="https://img.olx.com.br/thumbs/terreno.jpg" />
			<h2 class="ad__card-title">Terreno em Ilhabela 450m²</h2>
			<p class="ad__card-price">R$ 280.000</p>
			<p class="ad__card-location">Perequê, Ilhabela</p>
		</a>
	</li>
</ul>
</body></html>`

func fixtureFetch(html string) FetchFunc {
	return func(ctx context.Context, url string) (io.Reader, error) {
		return strings.NewReader(html), nil
	}
}

func TestZapPortalExtraction(t *testing.T) {
	portal := NewZapPortal("https://www.zapimoveis.com.br")
	assert.Equal(t,
		"https://www.zapimoveis.com.br/venda/imoveis/sp+sao-sebastiao/",
		portal.ListingURL("sao-sebastiao"))

	cfg := testScrapeConfig("Caraguatatuba")
	s := New(portal, fixtureFetch(zapFixture), cfg, nil, 0)

	records, err := s.Scrape(context.Background(), Filters{})
	assert.NoError(t, err)
	assert.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "zap-2596190329", first.ExternalID)
	assert.Equal(t, property.SourceZap, first.Source)
	assert.Equal(t, "https://www.zapimoveis.com.br/imovel/venda-casa-3-quartos-caraguatatuba-id-2596190329/", first.URL)
	assert.Equal(t, "Casa para comprar em Caraguatatuba", first.Title)
	assert.Equal(t, int64(650000), first.Price)
	assert.Equal(t, "Caraguatatuba", first.City)
	assert.Equal(t, "Martim de Sá", first.Neighborhood)
	// ZAP serves card images via client-side script; none reachable here
	assert.Empty(t, first.PhotoURLs)

	assert.Equal(t, "zap-2596190330", records[1].ExternalID)
	assert.Equal(t, int64(380000), records[1].Price)
}

func TestVivaRealPortalExtraction(t *testing.T) {
	portal := NewVivaRealPortal("https://www.vivareal.com.br")
	assert.Equal(t,
		"https://www.vivareal.com.br/venda/sp/ubatuba/",
		portal.ListingURL("ubatuba"))

	cfg := testScrapeConfig("Ubatuba")
	s := New(portal, fixtureFetch(vivaRealFixture), cfg, nil, 0)

	records, err := s.Scrape(context.Background(), Filters{})
	assert.NoError(t, err)
	assert.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "vivareal-87654321", r.ExternalID)
	assert.Equal(t, property.SourceVivaReal, r.Source)
	assert.Equal(t, "Casa com 2 Quartos à venda", r.Title)
	assert.Equal(t, int64(420000), r.Price)
	assert.Equal(t, "Ubatuba", r.City)
	assert.Equal(t, "Itaguá", r.Neighborhood)
	assert.Empty(t, r.PhotoURLs)
}

func TestOlxPortalExtraction(t *testing.T) {
	portal := NewOlxPortal("https://sp.olx.com.br")
	assert.Equal(t,
		"https://sp.olx.com.br/imoveis/venda/ilhabela",
		portal.ListingURL("ilhabela"))

	cfg := testScrapeConfig("Ilhabela")
	s := New(portal, fixtureFetch(olxFixture), cfg, nil, 0)

	records, err := s.Scrape(context.Background(), Filters{})
	assert.NoError(t, err)
	assert.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "olx-1234567890", r.ExternalID)
	assert.Equal(t, property.SourceOlx, r.Source)
	assert.Equal(t, "Terreno em Ilhabela 450m²", r.Title)
	assert.Equal(t, int64(280000), r.Price)
	assert.Equal(t, "Ilhabela", r.City)
	assert.Equal(t, "Perequê", r.Neighborhood)
	// OLX is the one portal serving images server-side
	assert.Equal(t, []string{"https://img.olx.com.br/thumbs/terreno.jpg"}, r.PhotoURLs)
}

func TestTrailingNumericID(t *testing.T) {
	cases := []struct {
		link    string
		id      string
		wantErr bool
	}{
		{"https://example.com/imovel/casa-id-123/", "123", false},
		{"https://example.com/imoveis/terreno-987654", "987654", false},
		{"https://example.com/imovel/casa-id-123/?origem=busca", "123", false},
		{"https://example.com/imovel/casa-sem-id/", "", true},
		{"https://example.com/", "", true},
	}

	for _, tc := range cases {
		id, err := trailingNumericID(tc.link)
		if tc.wantErr {
			assert.Error(t, err, tc.link)
		} else {
			assert.NoError(t, err, tc.link)
			assert.Equal(t, tc.id, id, tc.link)
		}
	}
}

func TestCreateScrapersOrder(t *testing.T) {
	cfg := config.Config{
		ZapURL:      "https://www.zapimoveis.com.br",
		VivaRealURL: "https://www.vivareal.com.br",
		OlxURL:      "https://sp.olx.com.br",
		Scrape:      testScrapeConfig("Ubatuba"),
	}
	scrapers := CreateScrapers(cfg, fixtureFetch(""), nil)

	names := make([]string, 0, len(scrapers))
	for _, s := range scrapers {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"zap", "vivareal", "olx"}, names)
}
