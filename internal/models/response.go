package models

// SearchResponse is the unified result of one search, either from a single
// provider (as produced by its adapter) or combined across providers. This is
// also the value the two-tier cache stores.
type SearchResponse struct {
	Currency string  `json:"currency"`
	Total    int     `json:"total"`
	Offers   []Offer `json:"offers"`
}

func EmptySearchResponse() *SearchResponse {
	return &SearchResponse{Currency: "USD", Offers: []Offer{}}
}

type SearchCriteria struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date,omitempty"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
	Infants       int    `json:"infants"`
	CabinClass    string `json:"cabin_class"`
}

type SearchMetadata struct {
	TotalResults       int      `json:"total_results"`
	ProvidersQueried   int      `json:"providers_queried"`
	ProvidersSucceeded int      `json:"providers_succeeded"`
	ProvidersFailed    int      `json:"providers_failed"`
	FailedProviders    []string `json:"failed_providers,omitempty"`
	Outcome            string   `json:"outcome"`
	SearchTimeMs       int64    `json:"search_time_ms"`
}

type SearchResult struct {
	SearchCriteria SearchCriteria `json:"search_criteria"`
	Metadata       SearchMetadata `json:"metadata"`
	Currency       string         `json:"currency"`
	Offers         []Offer        `json:"offers"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}
