package importer

import (
	"encoding/json"
	"strings"
)

type AttributeFormat int

const (
	AttributesInvalid AttributeFormat = iota
	AttributesStructured
	AttributesDelimited
)

type AttributePair struct {
	Name  string
	Value string
}

// AttributeSpec is the parsed content of a variant's attributes cell.
type AttributeSpec struct {
	Format AttributeFormat
	Pairs  []AttributePair
}

type structuredAttribute struct {
	AttributeName string `json:"attributeName"`
	ValueName     string `json:"valueName"`
}

// ParseAttributes accepts either a JSON list of {attributeName, valueName}
// objects or a delimited "Color:Red, Size:M" string. Pairs with an empty name
// or value are dropped and the first occurrence of a name wins.
func ParseAttributes(raw string) AttributeSpec {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AttributeSpec{Format: AttributesDelimited}
	}

	if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
		var items []structuredAttribute
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			var single structuredAttribute
			if err := json.Unmarshal([]byte(raw), &single); err != nil {
				return AttributeSpec{Format: AttributesInvalid}
			}
			items = []structuredAttribute{single}
		}
		var pairs []AttributePair
		for _, item := range items {
			pairs = appendPair(pairs, item.AttributeName, item.ValueName)
		}
		return AttributeSpec{Format: AttributesStructured, Pairs: pairs}
	}

	var pairs []AttributePair
	sawSeparator := false
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' }) {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		sawSeparator = true
		pairs = appendPair(pairs, name, value)
	}
	if !sawSeparator {
		return AttributeSpec{Format: AttributesInvalid}
	}
	return AttributeSpec{Format: AttributesDelimited, Pairs: pairs}
}

func appendPair(pairs []AttributePair, name, value string) []AttributePair {
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return pairs
	}
	for _, p := range pairs {
		if strings.EqualFold(p.Name, name) {
			return pairs
		}
	}
	return append(pairs, AttributePair{Name: name, Value: value})
}
