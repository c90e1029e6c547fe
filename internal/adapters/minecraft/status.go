package minecraft

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sund3RRR/crafty-observer/internal/observer"
)

const (
	// protocolVersion sent in the handshake; servers answer status requests for any version.
	protocolVersion = 47

	packetHandshake = 0x00
	packetStatus    = 0x00
	packetPing      = 0x01

	nextStateStatus = 1
)

// Server is a resolved Minecraft server.
type Server struct {
	host      string
	port      int
	queryPort int
	timeout   time.Duration
}

// Address returns the resolved "host:port" of the game port.
func (s *Server) Address() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// statusResponse is the JSON document answered to a status request.
type statusResponse struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
		Sample []struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		} `json:"sample"`
	} `json:"players"`
	Description json.RawMessage `json:"description"`
}

// chatComponent is the subset of the chat format used by descriptions.
type chatComponent struct {
	Text  string          `json:"text"`
	Extra []chatComponent `json:"extra"`
}

func (c chatComponent) flatten(b *strings.Builder) {
	b.WriteString(c.Text)
	for _, extra := range c.Extra {
		extra.flatten(b)
	}
}

// Status performs a Server List Ping: handshake, status request, then a ping
// whose round trip becomes the reported latency.
func (s *Server) Status(ctx context.Context) (observer.Status, error) {
	address := s.Address()
	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return observer.Status{}, classifyDial(address, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(s.deadline(ctx)); err != nil {
		return observer.Status{}, classifyExchange("set deadline", err)
	}

	handshake := newPacket(packetHandshake).
		varInt(protocolVersion).
		string(s.host).
		uint16(uint16(s.port)).
		varInt(nextStateStatus)
	request := newPacket(packetStatus)

	if _, err := conn.Write(append(handshake.frame(), request.frame()...)); err != nil {
		return observer.Status{}, classifyExchange("handshake", err)
	}

	reader := bufio.NewReader(conn)
	id, payload, err := readPacket(reader)
	if err != nil {
		return observer.Status{}, classifyExchange("status response", err)
	}
	if id != packetStatus {
		return observer.Status{}, classifyExchange("status response", fmt.Errorf("unexpected packet id %#x", id))
	}

	document, err := readString(payload)
	if err != nil {
		return observer.Status{}, classifyExchange("status response", err)
	}

	status, err := parseStatus(document)
	if err != nil {
		return observer.Status{}, classifyExchange("status document", err)
	}

	latency, err := ping(conn, reader)
	if err != nil {
		return observer.Status{}, classifyExchange("ping", err)
	}
	status.Latency = latency

	return status, nil
}

func ping(conn net.Conn, reader *bufio.Reader) (time.Duration, error) {
	token := time.Now().UnixMilli()
	start := time.Now()
	if _, err := conn.Write(newPacket(packetPing).int64(token).frame()); err != nil {
		return 0, err
	}

	id, payload, err := readPacket(reader)
	if err != nil {
		return 0, err
	}
	latency := time.Since(start)

	if id != packetPing {
		return 0, fmt.Errorf("unexpected packet id %#x", id)
	}
	var echoed int64
	if err := binary.Read(payload, binary.BigEndian, &echoed); err != nil {
		return 0, err
	}
	if echoed != token {
		return 0, fmt.Errorf("pong token mismatch")
	}

	return latency, nil
}

func parseStatus(document string) (observer.Status, error) {
	var response statusResponse
	if err := json.Unmarshal([]byte(document), &response); err != nil {
		return observer.Status{}, err
	}

	sample := make([]string, 0, len(response.Players.Sample))
	for _, player := range response.Players.Sample {
		sample = append(sample, player.Name)
	}

	return observer.Status{
		Online:  response.Players.Online,
		Max:     response.Players.Max,
		Sample:  sample,
		Version: response.Version.Name,
		MOTD:    description(response.Description),
	}, nil
}

// description accepts both the legacy plain string and the chat component form.
func description(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var component chatComponent
	if err := json.Unmarshal(raw, &component); err != nil {
		return ""
	}
	var b strings.Builder
	component.flatten(&b)
	return b.String()
}

// deadline returns the earlier of the context deadline and now+timeout.
func (s *Server) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(s.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}
	return deadline
}
