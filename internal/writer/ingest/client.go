// internal/writer/ingest/client.go
package ingest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// Raw Ingest v1 packet:
//
//	0-1  magic "RI"
//	2    version (0x01)
//	3    area
//	4-5  unit id
//	6-7  address
//	8-9  count
//	10+  payload, registers big-endian
//
// The endpoint answers with one status byte.
const (
	HeaderSize = 10

	magic     = "RI"
	versionV1 = 0x01

	respOK       byte = 0x00
	respRejected byte = 0x01
)

var ErrRejected = errors.New("writer ingest: rejected")

// EndpointClient is stateless: one packet per connection.
type EndpointClient struct {
	endpoint string
	timeout  time.Duration
	dial     func(network, addr string, timeout time.Duration) (net.Conn, error)
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &EndpointClient{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		dial:     net.DialTimeout,
	}, nil
}

func (c *EndpointClient) Close() error { return nil }

// WriteRegisters implements writer.endpointClient.
func (c *EndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	if len(regs) == 0 {
		return nil
	}

	conn, err := c.dial("tcp", c.endpoint, c.timeout)
	if err != nil {
		return fmt.Errorf("writer ingest: dial: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("writer ingest: deadline: %w", err)
	}

	// net.Conn.Write returns an error on short writes
	if _, err := conn.Write(BuildPacket(area, unitID, addr, regs)); err != nil {
		return fmt.Errorf("writer ingest: write: %w", err)
	}

	var resp [1]byte
	if _, err := io.ReadFull(conn, resp[:]); err != nil {
		return fmt.Errorf("writer ingest: read status: %w", err)
	}

	switch resp[0] {
	case respOK:
		return nil
	case respRejected:
		return ErrRejected
	default:
		return fmt.Errorf("writer ingest: unknown status 0x%02x", resp[0])
	}
}

// BuildPacket frames one register write.
func BuildPacket(area byte, unitID uint8, addr uint16, regs []uint16) []byte {
	pkt := make([]byte, 0, HeaderSize+2*len(regs))

	pkt = append(pkt, magic[0], magic[1], versionV1, area)
	pkt = binary.BigEndian.AppendUint16(pkt, uint16(unitID))
	pkt = binary.BigEndian.AppendUint16(pkt, addr)
	pkt = binary.BigEndian.AppendUint16(pkt, uint16(len(regs)))

	for _, r := range regs {
		pkt = binary.BigEndian.AppendUint16(pkt, r)
	}
	return pkt
}
