package link

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultPort is the UDP broadcast port the fleet talks on.
const DefaultPort = 54545

// Transport sends and receives sync frames. Receive never blocks past its
// timeout; ok is false when nothing valid arrived in the window. Engines can
// run against the UDP implementation or an in-process fake.
type Transport interface {
	SendHeartbeat(role, step int) error
	SendAdvance(role, step int) error
	Receive(timeout time.Duration) (msg Message, ok bool)
	Close() error
}

// UDPTransport broadcasts frames on the local network segment. One socket is
// used for both directions. Receive is intended to be called from a single
// goroutine.
type UDPTransport struct {
	conn *net.UDPConn
	dest *net.UDPAddr
	log  *zap.Logger
	buf  []byte
}

// NewUDP binds the broadcast socket on port and aims sends at the limited
// broadcast address on the same port.
func NewUDP(port int, log *zap.Logger) (*UDPTransport, error) {
	return newUDP(port, &net.UDPAddr{IP: net.IPv4bcast, Port: port}, log)
}

func newUDP(port int, dest *net.UDPAddr, log *zap.Logger) (*UDPTransport, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("link: bind %d: %w", port, err)
	}
	if err := setBroadcast(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("link: enable broadcast: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &UDPTransport{
		conn: conn,
		dest: dest,
		log:  log,
		buf:  make([]byte, 1024),
	}, nil
}

func setBroadcast(conn *net.UDPConn) error {
	rc, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var serr error
	cerr := rc.Control(func(fd uintptr) {
		serr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1)
	})
	if cerr != nil {
		return cerr
	}
	return serr
}

func (t *UDPTransport) SendHeartbeat(role, step int) error {
	return t.send(Message{Kind: KindHeartbeat, Role: role, Step: step, TS: time.Now().Unix()})
}

func (t *UDPTransport) SendAdvance(role, step int) error {
	return t.send(Message{Kind: KindAdvance, Role: role, Step: step, TS: time.Now().Unix()})
}

func (t *UDPTransport) send(m Message) error {
	if _, err := t.conn.WriteToUDP(m.Marshal(), t.dest); err != nil {
		return fmt.Errorf("link: send %s: %w", m.Kind, err)
	}
	return nil
}

// Receive waits up to timeout for the next parseable frame. Malformed or
// foreign frames are dropped and the wait continues until the deadline.
func (t *UDPTransport) Receive(timeout time.Duration) (Message, bool) {
	deadline := time.Now().Add(timeout)
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		t.log.Debug("set read deadline", zap.Error(err))
		return Message{}, false
	}
	for {
		n, _, err := t.conn.ReadFromUDP(t.buf)
		if err != nil {
			if !errors.Is(err, os.ErrDeadlineExceeded) {
				t.log.Debug("udp read", zap.Error(err))
			}
			return Message{}, false
		}
		m, err := ParseMessage(t.buf[:n])
		if err != nil {
			t.log.Debug("drop frame", zap.Error(err))
			continue
		}
		return m, true
	}
}

func (t *UDPTransport) Close() error {
	return t.conn.Close()
}
