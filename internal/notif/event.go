// Package notif carries task progress events from producers to
// per-user consumers through a pluggable relay.
package notif

import "encoding/json"

// State describes where a task is in its lifecycle.
type State string

const (
	StateStarted  State = "started"
	StateProgress State = "progress"
	StateSuccess  State = "success"
	StateFailure  State = "failure"
)

// ValidStates are the allowed task states.
var ValidStates = map[State]bool{
	StateStarted:  true,
	StateProgress: true,
	StateSuccess:  true,
	StateFailure:  true,
}

// Payload carries a task's correlation fields. All fields are plain
// values so events compare with ==.
type Payload struct {
	DocumentID string `json:"document_id"`
	UserID     string `json:"user_id"`
	PageNum    int    `json:"page_num,omitempty"`
	Lang       string `json:"lang"`
	Version    int    `json:"version,omitempty"`
	Namespace  string `json:"namespace,omitempty"`
}

// Event is one notification. Events survive Encode and Decode without
// loss.
type Event struct {
	Name   string  `json:"name"`
	State  State   `json:"state"`
	Kwargs Payload `json:"kwargs"`
}

// Encode serializes an event to its wire form.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses an event from its wire form.
func Decode(b []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(b, &e)
	return e, err
}

// UserGroup names the delivery group carrying a user's notifications.
func UserGroup(userID string) string {
	return "user-" + userID
}
