package expertapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Envelope is the decoded top-level response. Data stays raw until the
// action-specific fetcher decodes it.
type Envelope struct {
	Code    *int            `json:"code"`
	Message string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// flexInt accepts a JSON number, a numeric string, or null.
type flexInt int64

func (v *flexInt) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		*v = 0
		return nil
	}
	text := strings.Trim(string(raw), `"`)
	text = strings.TrimSpace(text)
	if text == "" {
		*v = 0
		return nil
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return err
	}
	*v = flexInt(n)
	return nil
}
