package domain

import "time"

// FetchOptions are passed to the accounting source for one entity page.
type FetchOptions struct {
	// ModifiedSince requests only records changed after this time.
	// Nil requests everything.
	ModifiedSince *time.Time

	// PageSize is the maximum number of records to return.
	PageSize int

	// Page is the 1-based page to read. Zero reads the first page.
	Page int

	// IncludeArchived also returns archived/deleted records.
	IncludeArchived bool
}

// FetchResult is one page of records from the accounting source.
type FetchResult struct {
	Records []Record

	// LastModified is the latest modification time among Records.
	// Nil if the source did not report one.
	LastModified *time.Time

	// HasMoreRecords is true when further pages exist.
	HasMoreRecords bool

	// NextPage is set above 1 when every record on the page shares the
	// source's cursor granularity, so asking again from LastModified would
	// return the same page. The next read keeps ModifiedSince and asks for
	// NextPage instead.
	NextPage int

	// APICalls counts HTTP requests made, including retries.
	APICalls int

	// RateLimitHits counts throttled responses seen while fetching.
	RateLimitHits int
}

// WriteResult is the per-record outcome of one staging upsert.
type WriteResult struct {
	Inserted int
	Updated  int
	Skipped  int
	Failed   int
	Errors   []string
}

// Processed returns the number of records the writer looked at.
func (r *WriteResult) Processed() int {
	return r.Inserted + r.Updated + r.Skipped + r.Failed
}

// Add accumulates another batch result.
func (r *WriteResult) Add(other WriteResult) {
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Failed += other.Failed
	r.Errors = append(r.Errors, other.Errors...)
}
