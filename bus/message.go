// Package bus carries events from the API process to the events process
// over an authenticated TCP connection, one newline-delimited JSON frame
// per event.
package bus

import (
	"github.com/google/uuid"
)

// Event is the client-facing payload written to each recipient.
type Event struct {
	Name string `json:"name"`
	Data any    `json:"data"`
}

// Message pairs an event with the users it should reach. The "recipents"
// spelling is the wire contract.
type Message struct {
	Recipents []uuid.UUID `json:"recipents"`
	Event     Event       `json:"event"`
}

// Envelope is one bus frame: the message plus the shared-secret digest the
// events process authenticates against.
type Envelope struct {
	Token   string  `json:"token"`
	Message Message `json:"message"`
}
