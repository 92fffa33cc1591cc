package models

type Price struct {
	Current         *float64 `json:"current,omitempty"`
	Original        *float64 `json:"original,omitempty"`
	Currency        string   `json:"currency"`
	DiscountPercent *int     `json:"discount_percent,omitempty"`
}

type Rating struct {
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty"`
	RatingText  string   `json:"rating_text,omitempty"`
}

type Image struct {
	URL       string `json:"url"`
	AltText   string `json:"alt_text,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}

// Product is one extracted catalog record. ASIN is the only mandatory
// field; everything else may be absent.
type Product struct {
	ASIN           string            `json:"asin"`
	Title          string            `json:"title"`
	Price          *Price            `json:"price,omitempty"`
	Rating         *Rating           `json:"rating,omitempty"`
	Availability   string            `json:"availability,omitempty"`
	Images         []Image           `json:"images"`
	Features       []string          `json:"features,omitempty"`
	Description    string            `json:"description,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	URL            string            `json:"url"`
	Category       string            `json:"category,omitempty"`
	Brand          string            `json:"brand,omitempty"`
	Seller         string            `json:"seller,omitempty"`
	PrimeEligible  bool              `json:"prime_eligible"`
	FreeShipping   bool              `json:"free_shipping"`
}

func NewProduct(asin string) *Product {
	return &Product{
		ASIN:   asin,
		Images: make([]Image, 0),
	}
}

// StopReason records why a paginated search stopped before maxPages.
type StopReason string

const (
	StopMaxPages     StopReason = "max_pages"
	StopNoContainers StopReason = "no_containers"
	StopAllDropped   StopReason = "all_items_dropped"
)

type Pagination struct {
	PagesFetched int        `json:"pages_fetched"`
	MaxPages     int        `json:"max_pages"`
	StopReason   StopReason `json:"stop_reason"`
}

type SearchResult struct {
	Query        string      `json:"query"`
	TotalResults *int        `json:"total_results,omitempty"`
	Products     []*Product  `json:"products"`
	Pagination   *Pagination `json:"pagination,omitempty"`
	SearchURL    string      `json:"search_url"`
}

// ExtractionResult is the outward envelope for both the search and the
// detail path. Data is set by searches, Product by detail lookups;
// either is present iff Success. CostUSD stays zero on this path but
// the envelope shape is shared with an LLM-backed extractor.
type ExtractionResult struct {
	Success        bool          `json:"success"`
	Data           *SearchResult `json:"data,omitempty"`
	Product        *Product      `json:"product,omitempty"`
	CostUSD        float64       `json:"cost_usd"`
	ProcessingTime float64       `json:"processing_time"`
	Error          string        `json:"error,omitempty"`
}
