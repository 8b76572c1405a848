package sharepoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"strconv"
	"strings"
	"time"

	"spshare/odata"
)

// Int64 accepts both JSON numbers and the quoted form SharePoint uses for
// Edm.Int64 values.
type Int64 int64

func (i *Int64) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*i = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("sharepoint: invalid integer %q", s)
		}
		n = int64(f)
	}
	*i = Int64(n)
	return nil
}

// Time parses the date formats SharePoint emits: ISO-8601 with or without
// a zone, and the legacy /Date(ms)/ form.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses a SharePoint date string; an empty string yields the
// zero time.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if strings.HasPrefix(s, "/Date(") && strings.HasSuffix(s, ")/") {
		body := strings.TrimSuffix(strings.TrimPrefix(s, "/Date("), ")/")
		if i := strings.IndexAny(body[min(1, len(body)):], "+-"); i >= 0 {
			body = body[:i+1]
		}
		ms, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("sharepoint: invalid date %q", s)
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("sharepoint: invalid date %q", s)
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// Metadata is the verbose-JSON type annotation required on write bodies.
type Metadata struct {
	Type string `json:"type"`
}

// IsXML reports whether a response should be read as Atom/XML, judged by
// the content type and, failing that, by the first byte of the body.
func IsXML(contentType string, body []byte) bool {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			if strings.Contains(mt, "xml") {
				return true
			}
			if strings.Contains(mt, "json") {
				return false
			}
		}
	}
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '<'
}

// Normalized converts a SharePoint response body into plain JSON.
func Normalized(body []byte, contentType string) ([]byte, error) {
	if IsXML(contentType, body) {
		return odata.DecodeAtom(bytes.NewReader(body))
	}
	return odata.Normalize(body)
}

// Decode parses a single entity out of a SharePoint response body.
func Decode[T any](body []byte, contentType string) (*T, error) {
	data, err := Normalized(body, contentType)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("sharepoint: decode %T: %w", *new(T), err)
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("sharepoint: decode %T: empty collection", *new(T))
		}
		return &items[0], nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("sharepoint: decode %T: %w", v, err)
	}
	return &v, nil
}

// DecodeCollection parses a feed or collection response. A single entity
// body yields a one-element slice.
func DecodeCollection[T any](body []byte, contentType string) ([]T, error) {
	data, err := Normalized(body, contentType)
	if err != nil {
		return nil, err
	}
	return collectionOf[T](data)
}

func collectionOf[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if !bytes.HasPrefix(trimmed, []byte("[")) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("sharepoint: decode %T: %w", v, err)
		}
		return []T{v}, nil
	}
	items := []T{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("sharepoint: decode []%T: %w", *new(T), err)
	}
	return items, nil
}

// DecodeResult parses the result of a function or property request, such
// as contextinfo or ItemCount, where the value may be wrapped in an object
// keyed by the function name.
func DecodeResult[T any](body []byte, contentType, name string) (T, error) {
	var v T
	data, err := Normalized(body, contentType)
	if err != nil {
		return v, err
	}
	var wrapped map[string]json.RawMessage
	if json.Unmarshal(data, &wrapped) == nil && len(wrapped) == 1 {
		if inner, ok := wrapped[name]; ok {
			data = inner
		}
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("sharepoint: decode %s: %w", name, err)
	}
	return v, nil
}

// DecodePage parses one page of a feed and returns the server supplied
// link to the next page, if any.
func DecodePage[T any](body []byte, contentType string) ([]T, string, error) {
	var (
		data []byte
		next string
		err  error
	)
	if IsXML(contentType, body) {
		data, next, err = odata.DecodeAtomPage(bytes.NewReader(body))
	} else {
		next = odata.NextLink(body)
		data, err = odata.Normalize(body)
	}
	if err != nil {
		return nil, "", err
	}
	items, err := collectionOf[T](data)
	if err != nil {
		return nil, "", err
	}
	return items, next, nil
}

func readAll(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("sharepoint: read body: %w", err)
	}
	return body, nil
}
