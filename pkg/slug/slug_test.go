package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"", ""},
		{"Colchones Dobles", "colchones-dobles"},
		{"Colchón TapiSuave Classic-queen", "colchon-tapisuave-classic-queen"},
		{"  Espuma   Viscoelástica  ", "espuma-viscoelastica"},
		{"Ñandú 140x190", "nandu-140x190"},
		{"extra_firme", "extra_firme"},
		{"--Royal--King--", "royal-king"},
		{"¡Oferta!", "oferta"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Make(tt.in); got != tt.expected {
				t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}
