package observer

import (
	"fmt"
	"strings"
	"time"

	opt "github.com/repeale/fp-go/option"
)

// notOnlineText is what Players renders to when the server cannot be asked.
const notOnlineText = "unknown, server not online"

// approximateMarker is appended to player lists built from the status sample.
const approximateMarker = "..?"

// Status is the result of a successful status handshake. It is never mutated
// after the collaborator returns it.
type Status struct {
	Online  int           `json:"online"`
	Max     int           `json:"max"`
	Latency time.Duration `json:"latency"`
	Sample  []string      `json:"sample,omitempty"` // server-chosen subset of player names, may be truncated
	Version string        `json:"version,omitempty"`
	MOTD    string        `json:"motd,omitempty"`
}

// String formats the status as "online with 3/20 players (43ms)".
func (s Status) String() string {
	latency := s.Latency.Round(time.Millisecond).Milliseconds()
	return fmt.Sprintf("online with %d/%d players (%dms)", s.Online, s.Max, latency)
}

// Observation is the outcome of one GetState call. Status holds a value only
// when State is StateOnline.
type Observation struct {
	State      State
	Status     opt.Option[Status]
	Err        error // set only for StateUnknown caused by an unclassified failure
	ObservedAt time.Time
}

// String returns the status line for an online server and the state
// description otherwise.
func (o Observation) String() string {
	if o.State == StateOnline && opt.IsSome(o.Status) {
		return o.Status.Value.String()
	}
	return o.State.String()
}

// Players is the outcome of GetPlayers. When Online is false the server could
// not be asked and Names is empty.
type Players struct {
	Online      bool
	Names       []string
	Approximate bool // names come from the status sample and may be incomplete
}

func (p Players) String() string {
	if !p.Online {
		return notOnlineText
	}
	if !p.Approximate {
		return strings.Join(p.Names, ", ")
	}
	if len(p.Names) == 0 {
		return approximateMarker
	}
	return strings.Join(p.Names, ", ") + ", " + approximateMarker
}
