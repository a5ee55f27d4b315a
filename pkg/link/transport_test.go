package link

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
)

// Loopback pair: two sockets on high ports aimed at each other instead of
// the broadcast address.
func loopbackPair(t *testing.T, portA, portB int) (*UDPTransport, *UDPTransport) {
	t.Helper()
	a, err := newUDP(portA, &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: portB}, zap.NewNop())
	if err != nil {
		t.Fatalf("bind A: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	b, err := newUDP(portB, &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: portA}, zap.NewNop())
	if err != nil {
		t.Fatalf("bind B: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return a, b
}

func TestUDPSendReceive(t *testing.T) {
	a, b := loopbackPair(t, 30545, 30546)

	if err := a.SendHeartbeat(0, 12); err != nil {
		t.Fatalf("SendHeartbeat: %v", err)
	}
	m, ok := b.Receive(time.Second)
	if !ok {
		t.Fatal("no heartbeat within 1s")
	}
	if m.Kind != KindHeartbeat || m.Role != 0 || m.Step != 12 {
		t.Fatalf("got %+v, want HB role=0 step=12", m)
	}
	if m.TS == 0 {
		t.Fatal("heartbeat carried no timestamp")
	}

	if err := a.SendAdvance(0, 13); err != nil {
		t.Fatalf("SendAdvance: %v", err)
	}
	m, ok = b.Receive(time.Second)
	if !ok {
		t.Fatal("no advance within 1s")
	}
	if m.Kind != KindAdvance || m.Step != 13 {
		t.Fatalf("got %+v, want ADV step=13", m)
	}
}

func TestUDPReceiveTimeout(t *testing.T) {
	_, b := loopbackPair(t, 30645, 30646)

	start := time.Now()
	if _, ok := b.Receive(100 * time.Millisecond); ok {
		t.Fatal("received a message on a silent socket")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Receive blocked %v past its timeout", elapsed)
	}
}

func TestUDPSkipsMalformedFrames(t *testing.T) {
	a, b := loopbackPair(t, 30745, 30746)

	// Raw junk straight at b's port, then a valid frame. Receive must skip
	// the junk inside one timeout window.
	junk, err := net.Dial("udp4", "127.0.0.1:30746")
	if err != nil {
		t.Fatal(err)
	}
	defer junk.Close()
	junk.Write([]byte("PLAY:5"))
	junk.Write([]byte{0x00, 0xff, 0x13})

	if err := a.SendAdvance(0, 7); err != nil {
		t.Fatal(err)
	}

	m, ok := b.Receive(2 * time.Second)
	if !ok {
		t.Fatal("valid frame lost behind malformed ones")
	}
	if m.Kind != KindAdvance || m.Step != 7 {
		t.Fatalf("got %+v, want ADV step=7", m)
	}
}
