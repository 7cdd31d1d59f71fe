package schema

import (
	"encoding/json"
	"fmt"
)

// Emergency contact statuses. The console only moves new -> resolved.
const (
	EmergencyNew      = "new"
	EmergencyResolved = "resolved"
)

// Conversation statuses.
const (
	ConversationOpen   = "open"
	ConversationClosed = "closed"
)

// Penalty is a disciplinary record issued to a ministrant.
type Penalty struct {
	ID          int64  `json:"id"`
	Ministrant  string `json:"ministrant"`
	Type        string `json:"typ_kary"`
	Description string `json:"opis"`
	Issued      string `json:"data"`
	IssuedBy    string `json:"wydana_przez"`
	Status      string `json:"status,omitempty"`
}

// PenaltyDraft carries the fields of the add-penalty form.
type PenaltyDraft struct {
	Ministrant  string `form:"ministrant" validate:"required"`
	Type        string `form:"typ_kary" validate:"required"`
	Description string `form:"opis"`
}

// BlockedUser is an entry of the block list.
type BlockedUser struct {
	ID       int64  `json:"id"`
	Username string `json:"blokowany"`
	Since    string `json:"data"`
}

// EmergencyContact is a help request submitted by an end user.
type EmergencyContact struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Messenger   string `json:"messenger"`
	Problem     string `json:"problem"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
	Actions     string `json:"actions"`
	Device      string `json:"device"`
	Cache       bool   `json:"cache"`
	Reload      bool   `json:"reload"`
	Incognito   bool   `json:"incognito"`
	Other       bool   `json:"other"`
	LastLogin   string `json:"last_login"`
	ContactDate string `json:"contact_date"`
	Status      string `json:"status"`
}

// IsNew reports whether the request still awaits handling.
func (c EmergencyContact) IsNew() bool { return c.Status == EmergencyNew }

// Conversation is a chat thread summary.
type Conversation struct {
	ID        int64  `json:"id"`
	Sender    string `json:"ministrant"`
	Recipient string `json:"odbiorca"`
	Status    string `json:"status"`
	Date      string `json:"created_at"`
}

// UnmarshalJSON accepts both the backend's field names and the legacy
// nadawca/odbiorcy/data spelling.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         int64  `json:"id"`
		Ministrant string `json:"ministrant"`
		Nadawca    string `json:"nadawca"`
		Odbiorca   string `json:"odbiorca"`
		Odbiorcy   string `json:"odbiorcy"`
		Status     string `json:"status"`
		CreatedAt  string `json:"created_at"`
		Data       string `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Conversation{
		ID:        raw.ID,
		Sender:    firstNonEmpty(raw.Ministrant, raw.Nadawca),
		Recipient: firstNonEmpty(raw.Odbiorca, raw.Odbiorcy),
		Status:    raw.Status,
		Date:      firstNonEmpty(raw.CreatedAt, raw.Data),
	}
	return nil
}

// IsClosed reports whether the conversation no longer accepts messages.
func (c Conversation) IsClosed() bool { return c.Status == ConversationClosed }

// Message is a single entry of a conversation thread.
type Message struct {
	ID     int64  `json:"id"`
	Sender string `json:"nadawca"`
	Body   string `json:"tresc"`
	Sent   string `json:"data"`
}

// Device is a registered notification receiver.
type Device struct {
	ID         int64  `json:"id"`
	DeviceID   string `json:"device_id"`
	Name       string `json:"name"`
	Registered string `json:"reg_date"`
	LastPing   string `json:"last_ping"`
	Active     Flag   `json:"active"`
}

// Notification is a broadcast sent to every active device.
type Notification struct {
	EventType string `json:"event_type"`
	Title     string `json:"title" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// Flag is a boolean that the backend may encode as 0/1.
type Flag bool

// UnmarshalJSON accepts true/false, numbers and null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true":
		*f = true
		return nil
	case "false", "null":
		*f = false
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flag: unexpected value %s", data)
	}
	*f = n != 0
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
