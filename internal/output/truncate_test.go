package output

import "testing"

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{name: "shorter than max", input: "hello", maxLen: 10, expected: "hello"},
		{name: "equal to max", input: "hello", maxLen: 5, expected: "hello"},
		{name: "longer than max", input: "hello world", maxLen: 8, expected: "hello..."},
		{name: "empty string", input: "", maxLen: 10, expected: ""},
		{name: "tiny max", input: "hello", maxLen: 3, expected: "..."},
		{name: "unicode counts runes", input: "héllo wörld", maxLen: 8, expected: "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.expected {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
			}
		})
	}
}

func TestTruncateANSI(t *testing.T) {
	styled := "\x1b[32mgreen session name\x1b[0m"

	if got := TruncateANSI(styled, 40); got != styled {
		t.Errorf("expected unmodified string when within width, got %q", got)
	}

	got := TruncateANSI(styled, 10)
	if got == styled {
		t.Error("expected truncation for narrow width")
	}
}
