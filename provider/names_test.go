package provider

import "testing"

func TestLowerCamel(t *testing.T) {
	tests := map[string]string{
		"Actor":     "actor",
		"ID":        "id",
		"URLPath":   "urlPath",
		"inReplyTo": "inReplyTo",
		"":          "",
	}
	for in, want := range tests {
		if got := lowerCamel(in); got != want {
			t.Errorf("lowerCamel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPropertyName(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"getActor", "actor", true},
		{"isPublic", "public", true},
		{"getURL", "url", true},
		{"get", "get", false},
		{"getter", "getter", false},
		{"actor", "actor", false},
	}
	for _, tt := range tests {
		got, ok := propertyName(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("propertyName(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
