package property

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRaw() RawListing {
	return RawListing{
		ExternalID:   "zap-12345",
		Source:       SourceZap,
		URL:          "https://www.zapimoveis.com.br/imovel/casa-12345/",
		Transaction:  TransactionSale,
		PropertyType: "Casa",
		Title:        "Casa com 3 quartos",
		Price:        350000,
		City:         "Ubatuba",
	}
}

func TestNormalizeRejectsMissingRequiredFields(t *testing.T) {
	cases := map[string]func(*RawListing){
		"no external id": func(r *RawListing) { r.ExternalID = "" },
		"no title":       func(r *RawListing) { r.Title = "" },
		"no price":       func(r *RawListing) { r.Price = 0 },
		"no city":        func(r *RawListing) { r.City = "" },
	}

	for name, mutate := range cases {
		raw := validRaw()
		mutate(&raw)
		assert.Nil(t, Normalize(raw), name)
	}

	assert.NotNil(t, Normalize(validRaw()))
}

func TestNormalizePriceFloor(t *testing.T) {
	raw := validRaw()
	raw.Price = -50.7
	p := Normalize(raw)
	assert.NotNil(t, p)
	assert.Equal(t, int64(0), p.Price)

	raw.Price = 199999.9
	p = Normalize(raw)
	assert.NotNil(t, p)
	assert.Equal(t, int64(199999), p.Price)
}

func TestNormalizeTitleCappedAndTrimmed(t *testing.T) {
	raw := validRaw()
	raw.Title = "  " + strings.Repeat("a", 200) + "  "
	raw.Neighborhood = "  Centro  "
	raw.Description = " Vista para o mar "

	p := Normalize(raw)
	assert.NotNil(t, p)
	assert.Len(t, []rune(p.Title), TitleMaxLen)
	assert.Equal(t, "Centro", p.Neighborhood)
	assert.Equal(t, "Vista para o mar", p.Description)
}

func TestClassifyTypeIsDeterministicAndTotal(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"APTO térreo", TypeApartamento},
		{"Apartamento 2 dorms", TypeApartamento},
		{"Casa em condomínio", TypeCasa},
		{"Lote 500m²", TypeTerreno},
		{"Terreno plano", TypeTerreno},
		{"Sala comercial", TypeComercial},
		{"Loja no centro", TypeComercial},
		{"Chácara com pomar", TypeRural},
		{"Sítio 2 alqueires", TypeRural},
		{"chalé", TypeOutro},
		{"", TypeOutro},
		{"imóvel", TypeOutro},
	}

	valid := map[string]bool{
		TypeApartamento: true, TypeCasa: true, TypeTerreno: true,
		TypeComercial: true, TypeRural: true, TypeOutro: true,
	}

	for _, tc := range cases {
		got := ClassifyType(tc.input)
		assert.Equal(t, tc.expected, got, tc.input)
		assert.True(t, valid[got], "classification must stay inside the enum: "+tc.input)
	}
}

func TestCanonicalCityIdempotent(t *testing.T) {
	variants := []string{
		"SÃO SEBASTIÃO", "sao sebastiao", "São Sebastião",
		"CARAGUATATUBA", "caraguatatuba",
		"Ubatuba", "UBATUBA",
		"ilhabela", "Ilhabela",
	}

	for _, v := range variants {
		once := CanonicalCity(v)
		twice := CanonicalCity(once)
		assert.Equal(t, once, twice, v)
	}

	assert.Equal(t, "Sao Sebastiao", CanonicalCity("SÃO SEBASTIÃO"))
	assert.Equal(t, "Sao Sebastiao", CanonicalCity("sao sebastiao"))
	assert.Equal(t, "Caraguatatuba", CanonicalCity("Caraguátatuba"))

	// Unmatched cities pass through unchanged
	assert.Equal(t, "Santos", CanonicalCity("Santos"))
}

func TestCitySlug(t *testing.T) {
	assert.Equal(t, "sao-sebastiao", CitySlug("São Sebastião"))
	assert.Equal(t, "ubatuba", CitySlug(" Ubatuba "))
	assert.Equal(t, "caraguatatuba", CitySlug("CARAGUATATUBA"))
	assert.Equal(t, "ilhabela", CitySlug("Ilhabela"))
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		input    string
		expected float64
	}{
		{"R$ 350.000", 350000},
		{"R$ 1.250.000", 1250000},
		{"R$ 1.250,50", 1250.5},
		{"350000", 350000},
		{"Sob consulta", 0},
		{"", 0},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, ParsePrice(tc.input), tc.input)
	}
}
