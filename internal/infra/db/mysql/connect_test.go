package mysql

import (
	"context"
	"testing"
)

func TestConnectRejectsBadDSN(t *testing.T) {
	t.Parallel()

	if _, err := Connect(context.Background(), "not a dsn"); err == nil {
		t.Fatalf("expected dsn parse error")
	}
}
