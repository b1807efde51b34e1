package domain

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw   string
		value float64
		known bool
	}{
		{"$1,250.00", 1250.0, true},
		{"1299", 1299, true},
		{"1,299", 1299, true},
		{"€45.50", 45.5, true},
		{"499.99 USD", 499.99, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"Not specified", 0, false},
		{"1.2.3", 0, false}, // two dots survive stripping, ParseFloat rejects
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p := ParsePrice(tt.raw)
			if p.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", p.Raw, tt.raw)
			}
			if p.Known != tt.known {
				t.Errorf("Known = %v, want %v", p.Known, tt.known)
			}
			if p.Value != tt.value {
				t.Errorf("Value = %v, want %v", p.Value, tt.value)
			}
		})
	}
}
