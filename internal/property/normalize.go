package property

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TitleMaxLen caps normalized titles
const TitleMaxLen = 150

// typeKeywords maps raw property-type labels to the canonical enum.
// Checks run in this order; first match wins.
var typeKeywords = []struct {
	keywords []string
	label    string
}{
	{[]string{"apartamento", "apto"}, TypeApartamento},
	{[]string{"casa"}, TypeCasa},
	{[]string{"terreno", "lote"}, TypeTerreno},
	{[]string{"comercial", "loja", "sala"}, TypeComercial},
	{[]string{"rural", "chacara", "sitio"}, TypeRural},
}

// targetCities is the single canonicalization table shared by the
// normalizer and the URL slug builder. Keys are accent-stripped lowercase.
var targetCities = []struct {
	key       string
	canonical string
}{
	{"caraguatatuba", "Caraguatatuba"},
	{"ubatuba", "Ubatuba"},
	{"sao sebastiao", "Sao Sebastiao"},
	{"ilhabela", "Ilhabela"},
}

var priceDigits = regexp.MustCompile(`[\d.,]+`)

// Normalize validates and cleans one raw scraped record. It returns nil
// when any of the four required fields (external id, title, price, city)
// is missing — the rest of the system depends only on those.
func Normalize(raw RawListing) *Property {
	if raw.ExternalID == "" || raw.Title == "" || raw.Price == 0 || raw.City == "" {
		return nil
	}

	price := int64(math.Floor(raw.Price))
	if price < 0 {
		price = 0
	}

	title := strings.TrimSpace(raw.Title)
	if r := []rune(title); len(r) > TitleMaxLen {
		title = string(r[:TitleMaxLen])
	}

	p := &Property{
		ExternalID:   raw.ExternalID,
		Source:       raw.Source,
		URL:          raw.URL,
		Transaction:  raw.Transaction,
		PropertyType: ClassifyType(raw.PropertyType),
		Title:        title,
		Price:        price,
		City:         CanonicalCity(raw.City),
		Neighborhood: strings.TrimSpace(raw.Neighborhood),
		Address:      strings.TrimSpace(raw.Address),
		Description:  strings.TrimSpace(raw.Description),
		PhotoURLs:    raw.PhotoURLs,
		Features:     raw.Features,
	}
	return p
}

// ClassifyType maps a raw property-type label to one of the six canonical
// labels. Total: unmatched input falls to "outro".
func ClassifyType(raw string) string {
	label := stripAccents(strings.ToLower(raw))
	for _, entry := range typeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(label, kw) {
				return entry.label
			}
		}
	}
	return TypeOutro
}

// CanonicalCity maps a city name to its canonical spelling via
// accent-insensitive substring match. Unmatched cities pass through
// unchanged. Idempotent.
func CanonicalCity(city string) string {
	key := stripAccents(strings.ToLower(city))
	for _, entry := range targetCities {
		if strings.Contains(key, entry.key) {
			return entry.canonical
		}
	}
	return city
}

// CitySlug builds the URL slug the portals use for a city: lowercase,
// accents stripped, spaces collapsed to hyphens.
func CitySlug(city string) string {
	slug := stripAccents(strings.ToLower(strings.TrimSpace(city)))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}

// ParsePrice extracts a numeric value from Brazilian currency text such
// as "R$ 350.000" or "R$ 1.250,50". Returns 0 when no number is present.
func ParsePrice(raw string) float64 {
	match := priceDigits.FindString(raw)
	if match == "" {
		return 0
	}
	// Brazilian format: dots group thousands, comma is the decimal mark
	match = strings.ReplaceAll(match, ".", "")
	match = strings.ReplaceAll(match, ",", ".")
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}
