package models

// RowResult is the outcome of extracting one unit row: either a listing or
// an *ExtractionError, never both.
type RowResult struct {
	Listing *RawListing
	Err     error
}

// PageResult records what happened to a single index page.
type PageResult struct {
	Page    int
	URL     string
	Rows    int // successfully extracted rows
	Skipped int // rows that failed extraction
	Err     error
}

// ScrapeResult is what the pagination driver hands back. Err is set when the
// run stopped on a page error rather than on an empty page; Listings still
// holds everything gathered up to that point.
type ScrapeResult struct {
	Listings []*RawListing
	Pages    []PageResult
	Skipped  int
	Err      error
}
