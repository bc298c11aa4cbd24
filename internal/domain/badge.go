package domain

// Badge is a single normalized badge as served to clients.
// The JSON shape matches what the upstream badge services emit,
// so cached entries round-trip without translation.
type Badge struct {
	Tooltip  string `json:"tooltip"`
	ImageURL string `json:"badge"`
}

// BadgeResult holds the outcome of one aggregation call.
// Exactly one of Merged or Separated is populated, selected by the
// Separated option: Merged is the flat concatenation in registry order,
// Separated maps source name to its badges. A source that yielded zero
// badges is entirely absent from Separated, never an empty placeholder.
type BadgeResult struct {
	Merged    []Badge
	Separated map[string][]Badge
}

// Empty reports whether the result carries no badges at all.
func (r BadgeResult) Empty() bool {
	if r.Separated != nil {
		return len(r.Separated) == 0
	}
	return len(r.Merged) == 0
}
