package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestProgressBarRendersCompletion(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(4, "extract").SetWidth(10).SetWriter(&buf).DisableColor()

	bar.Add(2)
	if out := buf.String(); !strings.Contains(out, "█████░░░░░") {
		t.Errorf("expected half-filled bar, got %q", out)
	}
	if out := buf.String(); !strings.Contains(out, "50.0%") {
		t.Errorf("expected 50.0%% in output, got %q", out)
	}

	bar.Set(3)
	bar.Increment()
	bar.Finish()

	out := buf.String()
	if !strings.Contains(out, "100.0%") {
		t.Errorf("expected 100.0%% after Finish, got %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish should terminate the line")
	}
}

func TestProgressBarClampsOverflow(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(2, "extract").SetWidth(4).SetWriter(&buf).DisableColor()

	bar.Add(5)
	if out := buf.String(); !strings.Contains(out, "100.0%") {
		t.Errorf("overflow should clamp to 100%%, got %q", out)
	}
}

func TestProgressBarEmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(0, "extract").SetWriter(&buf).DisableColor()

	bar.Finish()
	if out := buf.String(); strings.Contains(out, "%!") {
		t.Errorf("zero-total bar should not render garbage, got %q", out)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "< 1s"},
		{45 * time.Second, "45s"},
		{2*time.Minute + 5*time.Second, "2m5s"},
		{3*time.Hour + 7*time.Minute, "3h7m"},
	}

	for _, tc := range cases {
		if got := formatDuration(tc.d); got != tc.want {
			t.Errorf("formatDuration(%s) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
