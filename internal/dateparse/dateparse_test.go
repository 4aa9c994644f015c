package dateparse

import (
	"errors"
	"testing"
	"time"
)

func TestParseCanonicalizesAcrossLocales(t *testing.T) {
	want := time.Date(2021, time.July, 21, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		text string
	}{
		{"iso", "2021-07-21"},
		{"day first slashes", "21/07/2021"},
		{"french long month", "21 juillet 2021"},
		{"english long month", "July 21, 2021"},
		{"spanish long month", "21 julio 2021"},
		{"german dots", "21.07.2021"},
		{"dashes", "21-07-2021"},
		{"year first dots", "2021.07.21"},
		{"year first slashes", "2021/07/21"},
		{"surrounding whitespace", "  2021-07-21  "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.text)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.text, err)
			}
			if !got.Equal(want) {
				t.Errorf("Parse(%q) = %v, want %v", tc.text, got, want)
			}
		})
	}
}

func TestParseLayoutOrderIsTheTieBreak(t *testing.T) {
	// 03/04/2021 is valid as both dd/MM and MM/dd; the day-first layout
	// comes first in the priority list and must win.
	got, err := Parse("03/04/2021")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := time.Date(2021, time.April, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Parse(\"03/04/2021\") = %v, want day-first %v", got, want)
	}
}

func TestParseRejectsUnknownFormats(t *testing.T) {
	cases := []string{
		"not a date",
		"",
		"   ",
		"32/13/2021",
		"yesterday",
	}

	for _, text := range cases {
		if _, err := Parse(text); !errors.Is(err, ErrNotParseable) {
			t.Errorf("Parse(%q) error = %v, want ErrNotParseable", text, err)
		}
	}
}
