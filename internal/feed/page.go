package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ErrMalformedLink is returned when a continuation link cannot be parsed into a cursor.
var ErrMalformedLink = errors.New("malformed continuation link")

// Entry is a single notification. Raw keeps the full JSON object so fields
// this package does not model are forwarded untouched.
type Entry struct {
	ID               string `json:"id"`
	Type             string `json:"type,omitempty"`
	APIURL           string `json:"apiUrl,omitempty"`
	PublishReference string `json:"publishReference,omitempty"`
	LastModified     string `json:"lastModified,omitempty"`

	Raw json.RawMessage `json:"-"`
}

type entryFields Entry

// UnmarshalJSON decodes the known fields and retains the raw object.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var f entryFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*e = Entry(f)
	e.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON emits the raw object when present, the known fields otherwise.
func (e Entry) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(e.Raw)) > 0 {
		return e.Raw, nil
	}
	return json.Marshal(entryFields(e))
}

// Link is a continuation link returned with a page.
type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel,omitempty"`
}

// Page is one response of the notifications feed.
type Page struct {
	RequestURL    string  `json:"requestUrl,omitempty"`
	Notifications []Entry `json:"notifications"`
	Links         []Link  `json:"links"`
}

// DecodePage parses a page body.
func DecodePage(data []byte) (*Page, error) {
	var p Page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding page: %w", err)
	}
	return &p, nil
}

// NextCursor derives the continuation cursor from the first link of the page.
// It returns false when the page carries no link.
func (p *Page) NextCursor() (Cursor, bool, error) {
	if len(p.Links) == 0 {
		return Cursor{}, false, nil
	}
	href := p.Links[0].Href
	u, err := url.Parse(href)
	if err != nil {
		return Cursor{}, false, fmt.Errorf("%w: %q: %v", ErrMalformedLink, href, err)
	}
	c, err := ParseCursor(u.RawQuery)
	if err != nil {
		return Cursor{}, false, fmt.Errorf("%w: %q: %v", ErrMalformedLink, href, err)
	}
	return c, true, nil
}

// DatedEntry is an entry stamped with the local time it was handed to sinks.
type DatedEntry struct {
	Entry      Entry     `json:"entry"`
	ReceivedAt time.Time `json:"receivedAt"`
}
