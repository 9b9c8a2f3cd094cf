package property

// Source identifies the portal a listing was scraped from
type Source string

const (
	SourceZap      Source = "zap"
	SourceVivaReal Source = "vivareal"
	SourceOlx      Source = "olx"
)

// Transaction kinds. Only sale listing pages are scraped today.
const (
	TransactionSale = "venda"
	TransactionRent = "aluguel"
)

// Property types produced by the normalizer
const (
	TypeApartamento = "apartamento"
	TypeCasa        = "casa"
	TypeTerreno     = "terreno"
	TypeComercial   = "comercial"
	TypeRural       = "rural"
	TypeOutro       = "outro"
)

// RawListing is the pre-normalization record produced per listing card.
// It lives only inside one scrape invocation and is never persisted.
type RawListing struct {
	ExternalID   string
	Source       Source
	URL          string
	Transaction  string
	PropertyType string
	Title        string
	Price        float64
	City         string
	Neighborhood string
	Address      string
	Description  string
	PhotoURLs    []string
	Features     []string
}

// Property is the canonical, storage-ready record
type Property struct {
	ExternalID   string   `json:"external_id"`
	Source       Source   `json:"source"`
	URL          string   `json:"url"`
	Transaction  string   `json:"transaction"`
	PropertyType string   `json:"property_type"`
	Title        string   `json:"title"`
	Price        int64    `json:"price"`
	City         string   `json:"city"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	Address      string   `json:"address,omitempty"`
	Description  string   `json:"description,omitempty"`
	PhotoURLs    []string `json:"photo_urls,omitempty"`
	Features     []string `json:"features,omitempty"`
}
