package numeral

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

// fullWidth renders n with full-width digits.
func fullWidth(n int) string {
	var b strings.Builder
	for _, r := range strconv.Itoa(n) {
		b.WriteRune(r - '0' + '０')
	}
	return b.String()
}

func TestNormalizeWidth(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"０１２３４５６７８９", "0123456789"},
		{"東京都は１２３人", "東京都は123人"},
		{"123", "123"},
		{"ＡＢＣ１", "ＡＢＣ1"}, // full-width letters are left alone
		{"アイウ", "アイウ"},
		{"１万２０００", "1万2000"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeWidth(tt.input); got != tt.expected {
				t.Errorf("NormalizeWidth(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"123", 123, false},
		{"１２３", 123, false},
		{"1,234", 1234, false},
		{"１，２３４", 1234, false},
		{"1万2345", 12345, false},
		{"１万２３４５", 12345, false},
		{"3万", 30000, false},
		{"12万56", 120056, false},
		{"0", 0, false},
		{"45人", 45, false},
		{" 7 ", 7, false},
		{"", 0, true},
		{"人", 0, true},
		{"万", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCount(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoDigits) {
					t.Errorf("ParseCount(%q) error = %v, want ErrNoDigits", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCount(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseCount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCount_TenThousandRoundTrip(t *testing.T) {
	for _, a := range []int{0, 1, 9, 12, 305} {
		for _, b := range []int{0, 1, 99, 1234, 9999} {
			input := fullWidth(a) + "万" + fullWidth(b)
			got, err := ParseCount(input)
			if err != nil {
				t.Fatalf("ParseCount(%q) unexpected error: %v", input, err)
			}
			if want := a*10000 + b; got != want {
				t.Errorf("ParseCount(%q) = %d, want %d", input, got, want)
			}
		}
	}
}

func TestParseCount_FullWidthRoundTrip(t *testing.T) {
	for _, n := range []int{0, 5, 42, 1000, 987654} {
		input := fullWidth(n)
		got, err := ParseCount(input)
		if err != nil {
			t.Fatalf("ParseCount(%q) unexpected error: %v", input, err)
		}
		if got != n {
			t.Errorf("ParseCount(%q) = %d, want %d", input, got, n)
		}
	}
}
