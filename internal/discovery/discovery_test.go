// internal/discovery/discovery_test.go
package discovery

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestParseReply(t *testing.T) {
	cases := []struct {
		payload string
		port    int
		ok      bool
	}{
		{"2500;111;8889;ignored\x00", 8889, true},
		{"2500;111;8888\x00", 8888, true},
		{"2500;111;abc;\x00", 0, true},
		{"2500;111;70000;", 0, true},
		{"2500;111;0;", 0, true},
		{"2500;111;", 0, true},
		{"2000;111;1;\x00", 0, false},
		{"hello", 0, false},
	}

	for _, tc := range cases {
		port, ok := ParseReply([]byte(tc.payload))
		if port != tc.port || ok != tc.ok {
			t.Fatalf("%q: got (%d, %v) want (%d, %v)", tc.payload, port, ok, tc.port, tc.ok)
		}
	}
}

func TestCollect_TwoResponders(t *testing.T) {
	replies := []Reply{
		{Addr: &net.UDPAddr{IP: net.ParseIP("10.0.0.5"), Port: 4444}, Payload: []byte("2500;111;8888;x\x00")},
		{Addr: &net.UDPAddr{IP: net.ParseIP("10.0.0.9"), Port: 4444}, Payload: []byte("something else")},
		{Addr: &net.UDPAddr{IP: net.ParseIP("10.0.0.6"), Port: 4444}, Payload: []byte("2500;111;notaport;\x00")},
	}

	got := Collect(replies)
	want := []Result{{Host: "10.0.0.5", Port: 8888}, {Host: "10.0.0.6", Port: 0}}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result %d: got %v want %v", i, got[i], want[i])
		}
	}
}

// responder answers every datagram on a loopback UDP port with reply.
func responder(t *testing.T, reply string) int {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		buf := make([]byte, 64)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			if string(buf[:n]) != MagicRequest {
				continue
			}
			_, _ = conn.WriteToUDP([]byte(reply), addr)
		}
	}()

	return conn.LocalAddr().(*net.UDPAddr).Port
}

func TestDiscover_Loopback(t *testing.T) {
	p1 := responder(t, "2500;111;8888;ok\x00")
	p2 := responder(t, "2500;111;bad;\x00")

	results, err := Discover(context.Background(), Options{
		Timeout:       200 * time.Millisecond,
		Ports:         []int{p1, p2},
		BroadcastAddr: "127.0.0.1",
	})
	if err != nil {
		t.Fatalf("Discover err=%v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %v", results)
	}
	// both answers share one socket, so arrival order is not fixed
	want := map[Result]bool{
		{Host: "127.0.0.1", Port: 8888}: true,
		{Host: "127.0.0.1", Port: 0}:    true,
	}
	for _, r := range results {
		if !want[r] {
			t.Fatalf("unexpected result %v in %v", r, results)
		}
		delete(want, r)
	}
}

func TestDiscover_OneWindowForAllPorts(t *testing.T) {
	var ports []int
	for i := 0; i < 3; i++ {
		conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		defer conn.Close()
		ports = append(ports, conn.LocalAddr().(*net.UDPAddr).Port)
	}

	start := time.Now()
	if _, err := Discover(context.Background(), Options{
		Timeout:       200 * time.Millisecond,
		Ports:         ports,
		BroadcastAddr: "127.0.0.1",
	}); err != nil {
		t.Fatalf("Discover err=%v", err)
	}
	if took := time.Since(start); took > 500*time.Millisecond {
		t.Fatalf("three ports took %s, expected one 200ms window", took)
	}
}

func TestDiscover_NoRepliesIsEmpty(t *testing.T) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer conn.Close()
	silent := conn.LocalAddr().(*net.UDPAddr).Port

	results, err := Discover(context.Background(), Options{
		Timeout:       100 * time.Millisecond,
		Ports:         []int{silent},
		BroadcastAddr: "127.0.0.1",
	})
	if err != nil {
		t.Fatalf("timeout is not an error, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %v", results)
	}
}
