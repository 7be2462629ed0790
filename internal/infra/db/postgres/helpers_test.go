package postgres

import "testing"

func TestDetailsRoundTrip(t *testing.T) {
	t.Parallel()

	if got := encodeDetails(nil); got != "[]" {
		t.Fatalf("nil details should encode as [], got %s", got)
	}
	got := decodeDetails(encodeDetails([]string{"Missing X-Frame-Options header", `quote "x"`}))
	if len(got) != 2 || got[1] != `quote "x"` {
		t.Fatalf("unexpected decode %v", got)
	}
}

func TestDecodeDetailsTolerant(t *testing.T) {
	t.Parallel()

	if got := decodeDetails(""); got == nil || len(got) != 0 {
		t.Fatalf("blank should decode to empty slice, got %v", got)
	}
	if got := decodeDetails("not json"); len(got) != 1 || got[0] != "not json" {
		t.Fatalf("invalid json should be kept raw, got %v", got)
	}
}

func TestStringOrDash(t *testing.T) {
	t.Parallel()

	if stringOrDash("  ") != "-" || stringOrDash("x") != "x" {
		t.Fatalf("unexpected stringOrDash behaviour")
	}
}
