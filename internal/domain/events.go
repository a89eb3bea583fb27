package domain

// Progress reports incremental advancement through a long-running ADD batch
// so the caller can surface "resolving 3 of 12: Wat Arun" to the user.
// Index is 1-based and reaches Total at the last processed item.
type Progress struct {
	Index int    `json:"index"`
	Total int    `json:"total"`
	Name  string `json:"name"`
}

// Failure reports a single destination that could not be resolved or added.
// Failures are advisory: the rest of the batch continues.
type Failure struct {
	Name   string `json:"name"`
	Reason string `json:"reason,omitempty"`
}

// ApplySummary is the outcome of one assistant action batch.
type ApplySummary struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Moved   int `json:"moved"`
	Failed  int `json:"failed"`

	FailedNames []string `json:"failed_names,omitempty"`

	// Advisory payloads passed through untouched for display.
	Recommendations []DestinationDraft `json:"recommendations,omitempty"`
	Questions       []string           `json:"questions,omitempty"`
}
