package dkai

import (
	"context"
	"testing"
	"time"
)

func TestStripCodeFence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", "Date,Total\n2024-01-01,5", "Date,Total\n2024-01-01,5"},
		{"bare fence", "```\nData\n```", "Data"},
		{"csv tag", "```csv\nDate,Total\n1,2\n```", "Date,Total\n1,2"},
		{"json tag", "```json\n[{\"id\":1}]\n```", "[{\"id\":1}]"},
		{"surrounding whitespace", "  \n```csv\na,b\n```\n  ", "a,b"},
		{"empty", "", ""},
		{"fence only", "``````", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFence(tc.in); got != tc.want {
				t.Fatalf("StripCodeFence(%q)=%q want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDataURI(t *testing.T) {
	t.Parallel()

	got := DataURI("image/png", []byte{0x89, 0x50})
	want := "data:image/png;base64,iVA="
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRealSleeper_Cancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (realSleeper{}).Sleep(ctx, time.Hour); err == nil {
		t.Fatalf("expected context error")
	}
}
