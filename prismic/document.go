package prismic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the format the CMS uses for publication dates.
const TimestampLayout = "2006-01-02T15:04:05-0700"

// Timestamp is a publication date that may be null in the API response.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts null, the CMS layout and RFC 3339.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{TimestampLayout, time.RFC3339} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("prismic: invalid timestamp %q", s)
}

// MarshalJSON writes the CMS layout, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(TimestampLayout))
}

// Document is a single CMS document. Data holds the custom type's fields
// and is decoded by the caller.
type Document struct {
	ID                   string          `json:"id"`
	UID                  string          `json:"uid"`
	Type                 string          `json:"type"`
	Href                 string          `json:"href"`
	Tags                 []string        `json:"tags"`
	Lang                 string          `json:"lang"`
	FirstPublicationDate Timestamp       `json:"first_publication_date"`
	LastPublicationDate  Timestamp       `json:"last_publication_date"`
	Data                 json.RawMessage `json:"data"`
}

// Decode unmarshals the document data into v.
func (d Document) Decode(v any) error {
	if len(d.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("prismic: decode %s/%s: %w", d.Type, d.ID, err)
	}
	return nil
}

// Response is the paginated envelope returned by the search endpoint.
// NextPage is empty once the last page has been reached.
type Response struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         string     `json:"next_page"`
	PrevPage         string     `json:"prev_page"`
	Results          []Document `json:"results"`
}

// Ref is a content version. The master ref points at published content.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

// API is the repository entry document.
type API struct {
	Refs      []Ref             `json:"refs"`
	Types     map[string]string `json:"types"`
	Languages []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"languages"`
}

// MasterRef returns the master ref, or an error when the repository
// does not advertise one.
func (a API) MasterRef() (string, error) {
	for _, r := range a.Refs {
		if r.IsMasterRef {
			return r.Ref, nil
		}
	}
	return "", ErrNoMasterRef
}
