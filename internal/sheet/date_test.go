package sheet

import "testing"

func TestSerialDate(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"1900-03-01", 61},
		{"1970-01-01", 25569},
		{"2020-01-16", 43846},
		{"2020-12-19", 44184},
		{"2021-01-01", 44197},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := SerialDate(tt.date)
			if err != nil {
				t.Fatalf("SerialDate(%q) error = %v", tt.date, err)
			}
			if got != tt.want {
				t.Errorf("SerialDate(%q) = %d, want %d", tt.date, got, tt.want)
			}
			if back := DateFromSerial(got); back != tt.date {
				t.Errorf("DateFromSerial(%d) = %q, want %q", got, back, tt.date)
			}
		})
	}

	if _, err := SerialDate("2020/12/19"); err == nil {
		t.Error("expected error for malformed date")
	}
}
