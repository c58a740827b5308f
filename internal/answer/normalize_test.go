package answer

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "accent and punctuation", input: "Café!", want: "cafe"},
		{name: "padding and tilde", input: "  Niño   ", want: "nino"},
		{name: "inner whitespace collapsed", input: "buenos \t  días", want: "buenos dias"},
		{name: "apostrophe becomes space", input: "l'école", want: "l ecole"},
		{name: "digits kept", input: "Route 66", want: "route 66"},
		{name: "empty", input: "", want: ""},
		{name: "only punctuation", input: "¿¡?!", want: ""},
		{name: "uppercase accents", input: "ÉTÉ", want: "ete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Café!", "  Niño   ", "Ça va?", "argentino/a", "Straße", "東京", "", "  a  b  "}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestVariants(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   []string
	}{
		{name: "plain word", answer: "chat", want: []string{"chat"}},
		{name: "gender alternation", answer: "argentino/a", want: []string{"argentina", "argentino", "argentino a"}},
		{name: "uppercase alternation", answer: "Cansado/A", want: []string{"cansada", "cansado", "cansado a"}},
		{name: "no match for other suffix", answer: "él/ella", want: []string{"el ella"}},
		{name: "empty", answer: "   ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Variants(tt.answer)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Variants(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		want     bool
	}{
		{"Chat", "chat", true},
		{"CHAT ", "chat", true},
		{"chât", "chat", true},
		{"chatte", "chat", false},
		{"", "chat", false},
		{"argentina", "argentino/a", true},
		{"Argentino", "argentino/a", true},
		{"argentinos", "argentino/a", false},
		{"el niño", "El nino", true},
	}

	for _, tt := range tests {
		t.Run(tt.input+"->"+tt.expected, func(t *testing.T) {
			if got := Matches(tt.input, tt.expected); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.input, tt.expected, got, tt.want)
			}
		})
	}
}

func TestMatchesOrdered(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []string
		expected string
		fallback string
		want     bool
	}{
		{name: "exact order", tokens: []string{"Je", "suis", "étudiant"}, expected: "Je suis étudiant", want: true},
		{name: "wrong order", tokens: []string{"suis", "Je", "étudiant"}, expected: "Je suis étudiant", want: false},
		{name: "missing token", tokens: []string{"Je", "suis"}, expected: "Je suis étudiant", want: false},
		{name: "punctuation ignored", tokens: []string{"Hola", "amigo"}, expected: "¡Hola, amigo!", want: true},
		{name: "fallback sentence", tokens: []string{"yo", "como"}, expected: "", fallback: "Yo como.", want: true},
		{name: "no selection", tokens: nil, expected: "yo como", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesOrdered(tt.tokens, tt.expected, tt.fallback); got != tt.want {
				t.Errorf("MatchesOrdered(%v) = %v, want %v", tt.tokens, got, tt.want)
			}
		})
	}
}
