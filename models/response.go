package models

import (
	"encoding/json"
	"sort"
)

// ListingItem is one movie entry on a catalog page.
type ListingItem struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Img   string `json:"img"`
}

// FieldValue is the value of one labelled entry on a detail page: either
// a single text (span) or a list of texts (anchors).
type FieldValue struct {
	Text  string
	Items []string
	List  bool
}

// TextValue builds a single-text FieldValue.
func TextValue(s string) FieldValue { return FieldValue{Text: s} }

// ListValue builds a list FieldValue. A nil slice encodes as [].
func ListValue(items []string) FieldValue {
	if items == nil {
		items = []string{}
	}
	return FieldValue{Items: items, List: true}
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.List {
		return json.Marshal(v.Items)
	}
	return json.Marshal(v.Text)
}

// MovieInfo is everything scraped from a movie detail page plus the
// resolved streaming URL. It encodes to a single flat JSON object.
type MovieInfo struct {
	WatchURL       string
	Description    string
	LargeThumbnail string
	StreamingURL   string

	// Fields holds the info-list entries keyed by canonical field name.
	Fields map[string]FieldValue
}

// Set stores a labelled value.
func (m *MovieInfo) Set(name string, v FieldValue) {
	if m.Fields == nil {
		m.Fields = make(map[string]FieldValue)
	}
	m.Fields[name] = v
}

// Field returns a labelled value by canonical name.
func (m *MovieInfo) Field(name string) (FieldValue, bool) {
	v, ok := m.Fields[name]
	return v, ok
}

// FieldNames returns the labelled field names in sorted order.
func (m *MovieInfo) FieldNames() []string {
	names := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON flattens the fixed fields and the labelled fields into one
// object. Empty fixed fields are omitted; a non-empty fixed field wins
// over a labelled field of the same name.
func (m MovieInfo) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Fields)+4)
	for k, v := range m.Fields {
		out[k] = v
	}
	put := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	put("watchUrl", m.WatchURL)
	put("description", m.Description)
	put("largeThumbnail", m.LargeThumbnail)
	put("streamingUrl", m.StreamingURL)
	return json.Marshal(out)
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser tab pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	OpenPages   int `json:"open_pages"`
	ActivePages int `json:"active_pages"`
}
