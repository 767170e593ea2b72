package retrieval

// Wire shapes of the retrieval plugin API.

type upsertMetadata struct {
	CreatedAt string `json:"created_at"`
	SourceID  string `json:"source_id"`
	Source    string `json:"source"`
	Author    string `json:"author"`
}

type upsertDocument struct {
	ID       *string         `json:"id"`
	Metadata *upsertMetadata `json:"metadata"`
	Text     string          `json:"text"`
}

type upsertRequest struct {
	Documents []upsertDocument `json:"documents"`
}

type upsertResponse struct {
	IDs []string `json:"ids"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

type queryFilter struct {
	SourceID  *string `json:"source_id"`
	Source    string  `json:"source"`
	Author    *string `json:"author"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type query struct {
	Query  string       `json:"query"`
	Filter *queryFilter `json:"filter"`
	TopK   int          `json:"top_k"`
}

type queryRequest struct {
	Queries []query `json:"queries"`
}

type documentMetadata struct {
	Source     *string `json:"source"`
	SourceID   *string `json:"source_id"`
	URL        *string `json:"url"`
	CreatedAt  *string `json:"created_at"`
	Author     *string `json:"author"`
	DocumentID *string `json:"document_id"`
}

type documentResult struct {
	ID       string           `json:"id"`
	Text     string           `json:"text"`
	Metadata documentMetadata `json:"metadata"`
	Score    float64          `json:"score"`
}

type searchResult struct {
	Query   string           `json:"query"`
	Results []documentResult `json:"results"`
}

type queryResponse struct {
	Results []searchResult `json:"results"`
}
