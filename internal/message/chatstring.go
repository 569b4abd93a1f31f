package message

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PlayerID identifies a player by name and optional home world.
type PlayerID struct {
	Name  string `json:"name"`
	World string `json:"world,omitempty"`
}

// Render returns the display form of the player, appending @world when
// withWorld is set and a home world is known.
func (p PlayerID) Render(withWorld bool) string {
	if withWorld && p.World != "" {
		return p.Name + "@" + p.World
	}
	return p.Name
}

// Segment is one piece of a chat string: plain text or a player reference.
type Segment interface {
	Render(withWorld bool) string
}

// TextSegment is a literal run of text.
type TextSegment struct {
	Text string
}

func (s TextSegment) Render(bool) string { return s.Text }

// PlayerSegment is an inline player reference.
type PlayerSegment struct {
	Player PlayerID
}

func (s PlayerSegment) Render(withWorld bool) string { return s.Player.Render(withWorld) }

// ChatString is the ordered segment sequence the host delivers for sender
// and body text. Concatenating the rendered segments yields the full
// displayable string. Only a leading player segment carries meaning beyond
// its rendering (the sender echoed inline, see InitialPlayer); player
// references at later positions are ordinary inline links and are accepted
// anywhere.
type ChatString []Segment

// Render concatenates all segments.
func (cs ChatString) Render(withWorld bool) string {
	var b strings.Builder
	for _, seg := range cs {
		b.WriteString(seg.Render(withWorld))
	}
	return b.String()
}

// InitialPlayer returns the leading player segment's identity, if any.
func (cs ChatString) InitialPlayer() (PlayerID, bool) {
	if len(cs) == 0 {
		return PlayerID{}, false
	}
	if seg, ok := cs[0].(PlayerSegment); ok {
		return seg.Player, true
	}
	return PlayerID{}, false
}

// wireSegment is the bridge's JSON shape: exactly one of the fields is set.
type wireSegment struct {
	Text   *string   `json:"text,omitempty"`
	Player *PlayerID `json:"player,omitempty"`
}

// UnmarshalJSON decodes the bridge's segment array.
func (cs *ChatString) UnmarshalJSON(data []byte) error {
	var wire []wireSegment
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode chat string: %w", err)
	}
	segments := make(ChatString, 0, len(wire))
	for i, seg := range wire {
		switch {
		case seg.Text != nil && seg.Player != nil:
			return fmt.Errorf("chat string segment %d has both text and player", i)
		case seg.Text != nil:
			segments = append(segments, TextSegment{Text: *seg.Text})
		case seg.Player != nil:
			segments = append(segments, PlayerSegment{Player: *seg.Player})
		default:
			return fmt.Errorf("chat string segment %d has neither text nor player", i)
		}
	}
	*cs = segments
	return nil
}

// MarshalJSON emits the same wire shape, mainly for test fixtures.
func (cs ChatString) MarshalJSON() ([]byte, error) {
	wire := make([]wireSegment, 0, len(cs))
	for _, seg := range cs {
		switch s := seg.(type) {
		case TextSegment:
			text := s.Text
			wire = append(wire, wireSegment{Text: &text})
		case PlayerSegment:
			player := s.Player
			wire = append(wire, wireSegment{Player: &player})
		default:
			return nil, fmt.Errorf("unknown segment type %T", seg)
		}
	}
	return json.Marshal(wire)
}
