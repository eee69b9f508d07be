// internal/transport/probe_unix_test.go
//go:build unix

package transport

import (
	"context"
	"testing"
	"time"

	"github.com/tamzrod/luxtronik-replicator/internal/luxtest"
)

func TestProbe_PeerHangupRedialsTransparently(t *testing.T) {
	srv := luxtest.New(t)
	tr := newTransport(t, srv, Config{})

	if _, err := tr.ReadAll(context.Background()); err != nil {
		t.Fatalf("ReadAll err=%v", err)
	}

	srv.DropConnections()
	time.Sleep(50 * time.Millisecond)

	if _, err := tr.ReadAll(context.Background()); err != nil {
		t.Fatalf("probe should have replaced the dead socket, err=%v", err)
	}
	if tr.Dials() != 2 {
		t.Fatalf("expected redial, dials=%d", tr.Dials())
	}
}
