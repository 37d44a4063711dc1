package domain

// Suggestion is an address candidate returned by the search provider.
type Suggestion struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}
