package drawfeed

import (
	"bytes"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

// resultList accepts a JSON array of numbers or strings, or a single
// comma-separated string.
type resultList []string

func (l *resultList) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		*l = nil
		return nil
	}
	if raw[0] == '"' {
		var text string
		if err := sonic.Unmarshal(raw, &text); err != nil {
			return err
		}
		*l = strings.Split(text, ",")
		return nil
	}

	var items []any
	if err := sonic.Unmarshal(raw, &items); err != nil {
		return err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	*l = out
	return nil
}

// flexInt accepts a number or a numeric string; anything else reads as 1.
type flexInt int

func (v *flexInt) UnmarshalJSON(raw []byte) error {
	text := strings.TrimSpace(strings.Trim(string(bytes.TrimSpace(raw)), `"`))
	n, err := strconv.Atoi(text)
	if err != nil {
		*v = 1
		return nil
	}
	*v = flexInt(n)
	return nil
}

// flexString accepts a string and keeps any other JSON value as its raw text.
type flexString string

func (s *flexString) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if string(raw) == "null" {
		*s = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := sonic.Unmarshal(raw, &text); err != nil {
			return err
		}
		*s = flexString(text)
		return nil
	}
	*s = flexString(raw)
	return nil
}
