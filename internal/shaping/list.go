// Package shaping turns raw backend records into the canonical shapes the
// pages render, and filters and paginates listings.
package shaping

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// maxStringNesting bounds how many times a list may be JSON-encoded inside
// a string before we give up on it.
const maxStringNesting = 2

// FlexList is a string list that also accepts a JSON string holding the
// list. Anything unreadable decodes to an empty list; it never fails.
type FlexList []string

func (l *FlexList) UnmarshalJSON(data []byte) error {
	*l = DecodeList(data)
	return nil
}

// DecodeList reads a list field that may arrive either as a JSON array or
// as a string containing a JSON array. Missing, null or malformed input
// yields an empty, non-nil list.
func DecodeList(raw json.RawMessage) []string {
	return decodeList(raw, 0)
}

func decodeList(raw []byte, depth int) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []string{}
	}

	switch raw[0] {
	case '[':
		var items []any
		if err := json.Unmarshal(raw, &items); err != nil {
			return []string{}
		}
		return stringify(items)
	case '"':
		if depth >= maxStringNesting {
			return []string{}
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return []string{}
		}
		return decodeList([]byte(s), depth+1)
	}

	return []string{}
}

func stringify(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case nil:
			continue
		case string:
			out = append(out, v)
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}
