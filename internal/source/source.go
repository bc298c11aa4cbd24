package source

import "strings"

// Category classifies how a source's data is obtained.
type Category int

const (
	// Bulk sources publish their whole dataset as one document, shared by
	// all users. The refresher keeps them warm on a fixed interval.
	Bulk Category = iota
	// Live sources must be queried per user at request time. Results may
	// be cached briefly per user.
	Live
)

func (c Category) String() string {
	switch c {
	case Bulk:
		return "bulk"
	case Live:
		return "live"
	default:
		return "unknown"
	}
}

// URLSpec describes how to build the URL(s) for a source. Exactly three
// variants exist: Direct, Templated and TwoStep. The variant is fixed at
// registry-load time, never inspected ad hoc per request.
type URLSpec interface {
	isURLSpec()
}

// Direct is a single fixed URL (whole-dataset sources).
type Direct string

// Templated builds a per-user URL.
type Templated func(userID string) string

// TwoStep builds a per-user list URL plus a per-item detail URL.
type TwoStep struct {
	List func(userID string) string
	Item func(itemID string) string
}

func (Direct) isURLSpec()    {}
func (Templated) isURLSpec() {}
func (TwoStep) isURLSpec()   {}

// Source is one registered badge data source. Static configuration,
// never mutated after registry load.
type Source struct {
	Name        string // canonical name, ex: "Vencord"
	Description string
	Category    Category
	URL         URLSpec
}

// Key returns the lowercase lookup key for the source.
func (s Source) Key() string {
	return strings.ToLower(s.Name)
}
