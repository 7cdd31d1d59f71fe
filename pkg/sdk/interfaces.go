package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/celerix-dev/ministranci-console/pkg/schema"
)

var (
	// ErrRejected is wrapped by every RejectedError.
	ErrRejected = errors.New("rejected by backend")
	// ErrLoginFailed is returned when the backend does not accept the credentials.
	ErrLoginFailed = errors.New("login failed")
)

// RejectedError is returned when the backend answers {"success": false}.
// Message holds the backend's error string and may be empty.
type RejectedError struct {
	Op      string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Op, ErrRejected)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrRejected, e.Message)
}

func (e *RejectedError) Unwrap() error { return ErrRejected }

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

// --- Functional Interfaces (Interface Segregation) ---

// PenaltyAPI manages penalties.
type PenaltyAPI interface {
	ListPenalties(ctx context.Context) ([]schema.Penalty, error)
	UserPenalties(ctx context.Context, username string) ([]schema.Penalty, error)
	AddPenalty(ctx context.Context, draft schema.PenaltyDraft) error
	DeletePenalty(ctx context.Context, id int64) error
}

// BlockAPI manages the block list.
type BlockAPI interface {
	ListBlocked(ctx context.Context) ([]schema.BlockedUser, error)
	Unblock(ctx context.Context, username string) error
}

// EmergencyAPI manages emergency contact requests.
type EmergencyAPI interface {
	ListEmergencyContacts(ctx context.Context) ([]schema.EmergencyContact, error)
	UpdateEmergencyStatus(ctx context.Context, id int64, status string) error
	DeleteEmergencyContact(ctx context.Context, id int64) error
}

// ConversationAPI manages chat threads.
type ConversationAPI interface {
	ListConversations(ctx context.Context) ([]schema.Conversation, error)
	ConversationThread(ctx context.Context, id int64) ([]schema.Message, error)
	CloseConversation(ctx context.Context, id int64) error
	DeleteConversation(ctx context.Context, id int64) error
}

// DeviceAPI manages notification devices.
type DeviceAPI interface {
	ListDevices(ctx context.Context) ([]schema.Device, error)
	SendNotification(ctx context.Context, n schema.Notification) (int, error)
}

// AccountAPI reads and edits user accounts.
type AccountAPI interface {
	UserInfo(ctx context.Context, username string) (schema.UserInfo, error)
	UserRows(ctx context.Context) ([]schema.UserRow, error)
	ChangePassword(ctx context.Context, username, password string) error
}

// DataAPI covers whole-dataset operations.
type DataAPI interface {
	ExportAll(ctx context.Context) (json.RawMessage, error)
	ImportAll(ctx context.Context, doc json.RawMessage) (int, error)
	DeleteAllSchedules(ctx context.Context) (int, error)
}

// FormAPI relays an HTML form to the backend as-is.
type FormAPI interface {
	SubmitForm(ctx context.Context, action string, values url.Values) error
}

// --- Composite Interfaces ---

// Backend is everything the console consumes from the ministranci API.
// The remote Client implements it; tests use fakes.
type Backend interface {
	PenaltyAPI
	BlockAPI
	EmergencyAPI
	ConversationAPI
	DeviceAPI
	AccountAPI
	DataAPI
	FormAPI
}
