package minecraft

import (
	"context"
	"encoding/binary"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sund3RRR/crafty-observer/internal/observer"
)

const challengeToken = 9513307

func fullStat(sessionID uint32, players ...string) []byte {
	out := []byte{queryTypeStat}
	out = binary.BigEndian.AppendUint32(out, sessionID)
	out = append(out, "splitnum\x00\x80\x00"...)
	for _, kv := range [][2]string{{"hostname", "A Minecraft Server"}, {"gametype", "SMP"}, {"numplayers", "2"}} {
		out = append(out, kv[0]...)
		out = append(out, 0)
		out = append(out, kv[1]...)
		out = append(out, 0)
	}
	out = append(out, 0)
	out = append(out, "\x01player_\x00\x00"...)
	for _, player := range players {
		out = append(out, player...)
		out = append(out, 0)
	}
	return append(out, 0)
}

// serveQuery answers the handshake and full stat requests of the query protocol.
func serveQuery(t *testing.T, players ...string) int {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 1500)
		for {
			n, addr, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			if n < 7 {
				continue
			}
			sessionID := binary.BigEndian.Uint32(buf[3:7])
			switch buf[2] {
			case queryTypeHandshake:
				reply := []byte{queryTypeHandshake}
				reply = binary.BigEndian.AppendUint32(reply, sessionID)
				reply = append(reply, strconv.Itoa(challengeToken)+"\x00"...)
				_, _ = conn.WriteTo(reply, addr)
			case queryTypeStat:
				if n < 15 || binary.BigEndian.Uint32(buf[7:11]) != challengeToken {
					continue
				}
				_, _ = conn.WriteTo(fullStat(sessionID, players...), addr)
			}
		}
	}()

	return conn.LocalAddr().(*net.UDPAddr).Port
}

func TestPlayers_FullQuery(t *testing.T) {
	port := serveQuery(t, "alex", "steve")
	server := &Server{host: "127.0.0.1", port: 25565, queryPort: port, timeout: 2 * time.Second}

	names, err := server.Players(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alex", "steve"}, names)
}

func TestPlayers_EmptyServer(t *testing.T) {
	port := serveQuery(t)
	server := &Server{host: "127.0.0.1", port: 25565, queryPort: port, timeout: 2 * time.Second}

	names, err := server.Players(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestPlayers_NoAnswerTimesOut(t *testing.T) {
	// a socket that never replies, like a server with enable-query=false behind a firewall
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	server := &Server{
		host:      "127.0.0.1",
		port:      25565,
		queryPort: conn.LocalAddr().(*net.UDPAddr).Port,
		timeout:   100 * time.Millisecond,
	}

	_, err = server.Players(context.Background())
	assert.ErrorIs(t, err, observer.ErrTimeout)
}

func TestParseFullStat_Errors(t *testing.T) {
	_, err := parseFullStat([]byte{queryTypeStat, 0, 0}, 1)
	assert.Error(t, err)

	_, err = parseFullStat(fullStat(2, "alex"), 1)
	assert.Error(t, err, "session id mismatch")

	truncated := fullStat(1, "alex")
	_, err = parseFullStat(truncated[:20], 1)
	assert.Error(t, err)
}

func TestParseChallenge(t *testing.T) {
	reply := binary.BigEndian.AppendUint32([]byte{queryTypeHandshake}, 7)
	reply = append(reply, "-123\x00"...)

	token, err := parseChallenge(reply, 7)
	require.NoError(t, err)
	assert.Equal(t, int32(-123), token)

	_, err = parseChallenge(append(reply[:5], "abc\x00"...), 7)
	assert.Error(t, err)
}
