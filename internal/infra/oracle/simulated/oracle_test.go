package simulated

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

type instantClock struct{ slept time.Duration }

func (c *instantClock) Now() time.Time { return time.Unix(0, 0) }

func (c *instantClock) Sleep(ctx context.Context, d time.Duration) error {
	c.slept += d
	return ctx.Err()
}

func TestProbeSameSeedSameVerdicts(t *testing.T) {
	t.Parallel()

	a := New(&instantClock{}, 0, 42)
	b := New(&instantClock{}, 0, 42)
	for _, def := range domain.DefaultCatalog() {
		for i := 0; i < 5; i++ {
			va, err := a.Probe(context.Background(), def.ID)
			if err != nil {
				t.Fatalf("probe: %v", err)
			}
			vb, _ := b.Probe(context.Background(), def.ID)
			if va.Success != vb.Success || va.Message != vb.Message {
				t.Fatalf("%s: same seed diverged: %+v vs %+v", def.ID, va, vb)
			}
		}
	}
}

func TestProbeMessageMatchesOutcome(t *testing.T) {
	t.Parallel()

	o := New(&instantClock{}, 0, 7)
	for i := 0; i < 50; i++ {
		v, err := o.Probe(context.Background(), "csrf")
		if err != nil {
			t.Fatalf("probe: %v", err)
		}
		want := outcomes["csrf"].failMessage
		if v.Success {
			want = outcomes["csrf"].passMessage
		}
		if v.Message != want {
			t.Fatalf("message %q does not match success=%v", v.Message, v.Success)
		}
		if len(v.Details) != 2 {
			t.Fatalf("expected two detail lines, got %v", v.Details)
		}
	}
}

func TestProbeUnknownCheck(t *testing.T) {
	t.Parallel()

	v, err := New(&instantClock{}, 0, 1).Probe(context.Background(), "custom")
	if err != nil || !v.Success || v.Message != "Test completed" {
		t.Fatalf("unexpected verdict %+v err=%v", v, err)
	}
}

func TestProbeWaitsForDelay(t *testing.T) {
	t.Parallel()

	clock := &instantClock{}
	if _, err := New(clock, DefaultDelay, 1).Probe(context.Background(), "xss"); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if clock.slept != DefaultDelay {
		t.Fatalf("expected %s of latency, got %s", DefaultDelay, clock.slept)
	}
}

func TestProbeCancelledDuringDelay(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(&instantClock{}, DefaultDelay, 1).Probe(ctx, "xss"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
