package notify

import (
	"testing"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

func TestMultiKeepsOrder(t *testing.T) {
	t.Parallel()

	var got []string
	sink := func(tag string) domain.Notifier {
		return domain.NotifierFunc(func(kind domain.NotificationKind, msg string) {
			got = append(got, tag+":"+string(kind)+":"+msg)
		})
	}
	m := Multi{sink("a"), nil, sink("b")}
	m.Notify(domain.NotifyInfo, "start")
	m.Notify(domain.NotifyError, "bad")

	want := []string{"a:info:start", "b:info:start", "a:error:bad", "b:error:bad"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}
