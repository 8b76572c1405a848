package odata

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	nsAtom     = "http://www.w3.org/2005/Atom"
	nsData     = "http://schemas.microsoft.com/ado/2007/08/dataservices"
	nsMetadata = "http://schemas.microsoft.com/ado/2007/08/dataservices/metadata"
)

// DecodeAtom converts an Atom feed or entry into normalized JSON.
func DecodeAtom(r io.Reader) ([]byte, error) {
	data, _, err := DecodeAtomPage(r)
	return data, err
}

// DecodeAtomPage converts an Atom document into normalized JSON and also
// returns the feed's rel="next" link when present.
//
// A feed becomes an array of objects and an entry becomes an object. A
// bare data-service element (as returned by function imports such as
// contextinfo) becomes its own value; scalar roots are wrapped as
// {"<name>": value}.
func DecodeAtomPage(r io.Reader) ([]byte, string, error) {
	p := &atomParser{dec: xml.NewDecoder(r)}
	v, next, err := p.document()
	if err != nil {
		return nil, "", err
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("odata: encode atom: %w", err)
	}
	return out, next, nil
}

// atomParser is a forward-only reader over the token stream; every
// method consumes tokens up to and including the end tag of the element
// whose start tag was just read.
type atomParser struct {
	dec *xml.Decoder
}

func (p *atomParser) token() (xml.Token, error) {
	tok, err := p.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("odata: decode atom: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("odata: decode atom: %w", err)
	}
	return tok, nil
}

func (p *atomParser) document() (any, string, error) {
	for {
		tok, err := p.dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, "", ErrEmptyPayload
		}
		if err != nil {
			return nil, "", fmt.Errorf("odata: decode atom: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch {
		case is(start, nsAtom, "feed"):
			return p.feed()
		case is(start, nsAtom, "entry"):
			e, err := p.entry()
			return e, "", err
		case start.Name.Space == nsData:
			v, err := p.property(start)
			if err != nil {
				return nil, "", err
			}
			if _, complex := v.(map[string]any); complex {
				return v, "", nil
			}
			return map[string]any{start.Name.Local: v}, "", nil
		default:
			return nil, "", fmt.Errorf("odata: unexpected root element %q", start.Name.Local)
		}
	}
}

func (p *atomParser) feed() ([]any, string, error) {
	entries := []any{}
	next := ""
	for {
		tok, err := p.token()
		if err != nil {
			return nil, "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case is(t, nsAtom, "entry"):
				e, err := p.entry()
				if err != nil {
					return nil, "", err
				}
				entries = append(entries, e)
			case is(t, nsAtom, "link") && attr(t, "", "rel") == "next":
				next = attr(t, "", "href")
				if err := p.dec.Skip(); err != nil {
					return nil, "", err
				}
			default:
				if err := p.dec.Skip(); err != nil {
					return nil, "", err
				}
			}
		case xml.EndElement:
			return entries, next, nil
		}
	}
}

func (p *atomParser) entry() (map[string]any, error) {
	out := map[string]any{}
	for {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var err error
			switch {
			case is(t, nsAtom, "category"):
				if term := attr(t, "", "term"); term != "" {
					out[TypeKey] = term
				}
				err = p.dec.Skip()
			case is(t, nsAtom, "link"):
				err = p.link(t, out)
			case is(t, nsAtom, "content"):
				err = p.content(out)
			case is(t, nsMetadata, "properties"):
				err = p.properties(out)
			default:
				err = p.dec.Skip()
			}
			if err != nil {
				return nil, err
			}
		case xml.EndElement:
			return out, nil
		}
	}
}

// content handles <content type="application/xml"><m:properties/></content>.
// Media entries carry m:properties beside content instead.
func (p *atomParser) content(out map[string]any) error {
	for {
		tok, err := p.token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if is(t, nsMetadata, "properties") {
				if err := p.properties(out); err != nil {
					return err
				}
				continue
			}
			if err := p.dec.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *atomParser) link(start xml.StartElement, out map[string]any) error {
	title := attr(start, "", "title")
	for {
		tok, err := p.token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if is(t, nsMetadata, "inline") && title != "" {
				v, err := p.inline()
				if err != nil {
					return err
				}
				out[title] = v
				continue
			}
			if err := p.dec.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *atomParser) inline() (any, error) {
	var v any
	for {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case is(t, nsAtom, "feed"):
				entries, _, err := p.feed()
				if err != nil {
					return nil, err
				}
				v = entries
			case is(t, nsAtom, "entry"):
				e, err := p.entry()
				if err != nil {
					return nil, err
				}
				v = e
			default:
				if err := p.dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return v, nil
		}
	}
}

func (p *atomParser) properties(out map[string]any) error {
	for {
		tok, err := p.token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != nsData {
				if err := p.dec.Skip(); err != nil {
					return err
				}
				continue
			}
			v, err := p.property(t)
			if err != nil {
				return err
			}
			out[t.Name.Local] = v
		case xml.EndElement:
			return nil
		}
	}
}

func (p *atomParser) property(start xml.StartElement) (any, error) {
	typ := attr(start, nsMetadata, "type")
	isNull := attr(start, nsMetadata, "null") == "true"

	var (
		text     strings.Builder
		children map[string]any
		elements []any
	)
	for done := false; !done; {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != nsData {
				if err := p.dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			v, err := p.property(t)
			if err != nil {
				return nil, err
			}
			if t.Name.Local == "element" {
				elements = append(elements, v)
				continue
			}
			if children == nil {
				children = map[string]any{}
			}
			children[t.Name.Local] = v
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			done = true
		}
	}

	switch {
	case isNull:
		return nil, nil
	case strings.HasPrefix(typ, "Collection(") || elements != nil:
		if elements == nil {
			elements = []any{}
		}
		return elements, nil
	case children != nil:
		if typ != "" {
			children[TypeKey] = typ
		}
		return children, nil
	case typ != "" && !strings.HasPrefix(typ, "Edm.") && strings.TrimSpace(text.String()) == "":
		return map[string]any{TypeKey: typ}, nil
	}
	return scalar(text.String(), typ), nil
}

func scalar(s, typ string) any {
	switch typ {
	case "Edm.Int16", "Edm.Int32", "Edm.Byte", "Edm.SByte", "Edm.Double", "Edm.Single", "Edm.Decimal":
		trimmed := strings.TrimSpace(s)
		if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return json.Number(trimmed)
		}
		return s
	case "Edm.Boolean":
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return s
		}
		return b
	default:
		return s
	}
}

func is(se xml.StartElement, space, local string) bool {
	return se.Name.Space == space && se.Name.Local == local
}

func attr(se xml.StartElement, space, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local && a.Name.Space == space {
			return a.Value
		}
	}
	return ""
}
