package domain

import (
	"strconv"
	"strings"
)

// Price carries the raw dataset value together with a best-effort numeric
// parse, computed once at load time so the fragile cleanup logic lives in one
// place.
type Price struct {
	Raw   string
	Value float64
	Known bool
}

// ParsePrice recovers a number from a free-form price string by stripping
// everything except digits and dots. Currency symbols, commas and missing
// values are tolerated; an unrecoverable value parses as zero with Known=false.
func ParsePrice(raw string) Price {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return Price{Raw: raw}
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return Price{Raw: raw}
	}
	return Price{Raw: raw, Value: v, Known: true}
}
