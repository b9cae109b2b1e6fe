package spacetraveling

// HasMore reports whether another page can be loaded.
func (p PostPagination) HasMore() bool {
	return p.NextPage != ""
}

// Append returns the concatenation of p's results and next's results,
// continuing from next's cursor. p is not modified.
func (p PostPagination) Append(next PostPagination) PostPagination {
	results := make([]PostSummary, 0, len(p.Results)+len(next.Results))
	results = append(results, p.Results...)
	results = append(results, next.Results...)
	return PostPagination{NextPage: next.NextPage, Results: results}
}
