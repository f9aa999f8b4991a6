package recognize

import "testing"

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain", "TV 05", "TV 05", true},
		{"no space", "TV12", "TV 12", true},
		{"hyphen", "TV-3", "TV 03", true},
		{"lowercase", "tv 7", "TV 07", true},
		{"leading zeros", "TV 007", "TV 07", true},
		{"hash form", "#14", "TV 14", true},
		{"hash with space", "# 2", "TV 02", true},
		{"bare number", "23", "TV 23", true},
		{"model chatter", "The label in this image reads TV 09.", "TV 09", true},
		{"multiline chatter", "Sure!\nThe marker is labeled:\nTV 16", "TV 16", true},
		{"no label", "a blank wall", "", false},
		{"empty", "", "", false},
		{"whitespace only", "   \n  ", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseLabel(tc.input)
			if ok != tc.ok {
				t.Fatalf("ParseLabel(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if got != tc.want {
				t.Errorf("ParseLabel(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
