package minecraft

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
)

const (
	queryTypeHandshake = 0x09
	queryTypeStat      = 0x00

	// sessionMask keeps the session id valid for servers that only honor the low nibbles.
	sessionMask = 0x0F0F0F0F

	// the full stat response pads its key/value section and its player section
	statPaddingLength    = 11
	playerPaddingLength  = 10
	queryHeaderLength    = 5
	maxQueryDatagramSize = 1 << 16
)

var queryMagic = []byte{0xFE, 0xFD}

var lastSessionID atomic.Uint32

// Players asks the query port for the full player list. The server must have
// enable-query=true and its UDP query port reachable, otherwise the request
// times out.
func (s *Server) Players(ctx context.Context) ([]string, error) {
	address := net.JoinHostPort(s.host, strconv.Itoa(s.queryPort))
	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "udp", address)
	if err != nil {
		return nil, classifyQuery("dial", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(s.deadline(ctx)); err != nil {
		return nil, classifyQuery("set deadline", err)
	}

	sessionID := int32(lastSessionID.Add(1) & sessionMask)
	buf := make([]byte, maxQueryDatagramSize)

	if _, err := conn.Write(queryRequest(queryTypeHandshake, sessionID, nil)); err != nil {
		return nil, classifyQuery("handshake", err)
	}
	n, err := conn.Read(buf)
	if err != nil {
		return nil, classifyQuery("handshake", err)
	}
	token, err := parseChallenge(buf[:n], sessionID)
	if err != nil {
		return nil, classifyQuery("handshake", err)
	}

	payload := binary.BigEndian.AppendUint32(nil, uint32(token))
	payload = append(payload, 0, 0, 0, 0) // padding turns a basic stat into a full stat
	if _, err := conn.Write(queryRequest(queryTypeStat, sessionID, payload)); err != nil {
		return nil, classifyQuery("full stat", err)
	}
	n, err = conn.Read(buf)
	if err != nil {
		return nil, classifyQuery("full stat", err)
	}

	names, err := parseFullStat(buf[:n], sessionID)
	if err != nil {
		return nil, classifyQuery("full stat", err)
	}
	return names, nil
}

func queryRequest(kind byte, sessionID int32, payload []byte) []byte {
	request := append([]byte{}, queryMagic...)
	request = append(request, kind)
	request = binary.BigEndian.AppendUint32(request, uint32(sessionID))
	return append(request, payload...)
}

func parseHeader(datagram []byte, kind byte, sessionID int32) ([]byte, error) {
	if len(datagram) < queryHeaderLength {
		return nil, fmt.Errorf("short response (%d bytes)", len(datagram))
	}
	if datagram[0] != kind {
		return nil, fmt.Errorf("unexpected response type %#x", datagram[0])
	}
	if got := int32(binary.BigEndian.Uint32(datagram[1:5])); got != sessionID {
		return nil, fmt.Errorf("session id mismatch")
	}
	return datagram[queryHeaderLength:], nil
}

func parseChallenge(datagram []byte, sessionID int32) (int32, error) {
	body, err := parseHeader(datagram, queryTypeHandshake, sessionID)
	if err != nil {
		return 0, err
	}

	token, err := strconv.ParseInt(string(bytes.TrimRight(body, "\x00")), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid challenge token: %w", err)
	}
	return int32(token), nil
}

// parseFullStat skips the key/value section and returns the player names.
func parseFullStat(datagram []byte, sessionID int32) ([]string, error) {
	body, err := parseHeader(datagram, queryTypeStat, sessionID)
	if err != nil {
		return nil, err
	}
	if len(body) < statPaddingLength {
		return nil, fmt.Errorf("truncated full stat")
	}
	body = body[statPaddingLength:]

	// key/value pairs end with an empty key
	for {
		key, rest, ok := cutString(body)
		if !ok {
			return nil, fmt.Errorf("truncated key/value section")
		}
		body = rest
		if key == "" {
			break
		}
		if _, rest, ok = cutString(body); !ok {
			return nil, fmt.Errorf("truncated value for %q", key)
		}
		body = rest
	}

	if len(body) < playerPaddingLength {
		return nil, fmt.Errorf("truncated player section")
	}
	body = body[playerPaddingLength:]

	names := []string{}
	for len(body) > 0 {
		name, rest, ok := cutString(body)
		if !ok || name == "" {
			break
		}
		names = append(names, name)
		body = rest
	}
	return names, nil
}

// cutString splits a null-terminated string off the front of data.
func cutString(data []byte) (string, []byte, bool) {
	before, after, found := bytes.Cut(data, []byte{0})
	if !found {
		return "", nil, false
	}
	return string(before), after, true
}
