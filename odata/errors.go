package odata

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
)

// ErrorResponse is the error payload SharePoint returns with a failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type jsonErrorMessage struct {
	Value string
}

func (m *jsonErrorMessage) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &m.Value)
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	m.Value = obj.Value
	return nil
}

type jsonErrorBody struct {
	Code    string           `json:"code"`
	Message jsonErrorMessage `json:"message"`
}

type xmlErrorBody struct {
	XMLName xml.Name `xml:"http://schemas.microsoft.com/ado/2007/08/dataservices/metadata error"`
	Code    string   `xml:"http://schemas.microsoft.com/ado/2007/08/dataservices/metadata code"`
	Message string   `xml:"http://schemas.microsoft.com/ado/2007/08/dataservices/metadata message"`
}

// DecodeError extracts an OData error from a response body. It understands
// verbose JSON ("error"), minimal JSON ("odata.error") and Atom/XML
// (m:error). The boolean is false when the body carries no error payload.
func DecodeError(body []byte) (*ErrorResponse, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false
	}

	switch trimmed[0] {
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, false
		}
		for _, key := range []string{"error", "odata.error"} {
			raw, ok := envelope[key]
			if !ok {
				continue
			}
			var eb jsonErrorBody
			if err := json.Unmarshal(raw, &eb); err != nil {
				return nil, false
			}
			return complete(eb.Code, eb.Message.Value)
		}
	case '<':
		var xb xmlErrorBody
		if err := xml.Unmarshal(trimmed, &xb); err != nil {
			return nil, false
		}
		return complete(xb.Code, xb.Message)
	}
	return nil, false
}

func complete(code, message string) (*ErrorResponse, bool) {
	code, message = strings.TrimSpace(code), strings.TrimSpace(message)
	if code == "" && message == "" {
		return nil, false
	}
	return &ErrorResponse{Code: code, Message: message}, true
}
