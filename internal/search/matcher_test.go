// ABOUTME: Tests for the similarity and phonetic matchers
// ABOUTME: Checks symmetry, bounds, metric selection, and Soundex coding
package search

import (
	"testing"
)

func TestNewMatcher(t *testing.T) {
	tests := []struct {
		metric  string
		want    Matcher
		wantErr bool
	}{
		{"", JaroWinkler{}, false},
		{"jarowinkler", JaroWinkler{}, false},
		{"Levenshtein", Levenshtein{}, false},
		{"cosine", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			got, err := NewMatcher(tt.metric)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewMatcher(%q) error = %v, wantErr %v", tt.metric, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("NewMatcher(%q) = %T, want %T", tt.metric, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	matchers := map[string]Matcher{"jarowinkler": JaroWinkler{}, "levenshtein": Levenshtein{}}
	pairs := [][2]string{
		{"micrsoft", "microsoft corporation"},
		{"acme", "acme"},
		{"oracle", "salesforce"},
		{"globex", ""},
	}

	for name, m := range matchers {
		t.Run(name, func(t *testing.T) {
			for _, p := range pairs {
				ab := m.Similarity(p[0], p[1])
				ba := m.Similarity(p[1], p[0])
				if ab != ba {
					t.Errorf("Similarity(%q, %q) = %v but reversed = %v", p[0], p[1], ab, ba)
				}
				if ab < 0 || ab > 1 {
					t.Errorf("Similarity(%q, %q) = %v, want within [0, 1]", p[0], p[1], ab)
				}
			}

			if got := m.Similarity("Acme", "acme"); got != 1 {
				t.Errorf("Similarity of equal strings = %v, want 1", got)
			}
			if got := m.Similarity("", "acme"); got != 0 {
				t.Errorf("Similarity with empty string = %v, want 0", got)
			}
			if close, far := m.Similarity("micrsoft", "microsoft"), m.Similarity("micrsoft", "zebra"); close <= far {
				t.Errorf("Similarity(micrsoft, microsoft) = %v, not above zebra = %v", close, far)
			}
		})
	}
}

func TestPhoneticCode(t *testing.T) {
	m := JaroWinkler{}

	if m.PhoneticCode("Robert") != m.PhoneticCode("Rupert") {
		t.Errorf("Robert and Rupert should share a code: %q vs %q", m.PhoneticCode("Robert"), m.PhoneticCode("Rupert"))
	}
	if got := m.PhoneticCode("Robert"); got != "R163" {
		t.Errorf("PhoneticCode(Robert) = %q, want R163", got)
	}
	if m.PhoneticCode("Acme") == m.PhoneticCode("Globex") {
		t.Error("Acme and Globex should not share a code")
	}
	if got := m.PhoneticCode(""); got != "" {
		t.Errorf("PhoneticCode(\"\") = %q, want empty", got)
	}
	if got := m.PhoneticCode("123 --"); got != "" {
		t.Errorf("PhoneticCode without letters = %q, want empty", got)
	}
	if (Levenshtein{}).PhoneticCode("Robert") != m.PhoneticCode("Robert") {
		t.Error("phonetic codes should not depend on the similarity metric")
	}
}
