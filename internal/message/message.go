package message

import "time"

// ChatMessage is one normalized chat event. It is created once per host
// event and never mutated afterwards.
type ChatMessage struct {
	Type     ChatType   // channel the message arrived on
	Label    string     // display label for the channel; empty means "never log"
	SenderID uint64     // host-assigned id of the sender
	Sender   PlayerID   // sender identity
	Body     ChatString // message text as delivered by the host
	When     time.Time  // receipt time in the configured zone
}
