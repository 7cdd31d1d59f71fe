package console_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/celerix-dev/ministranci-console/internal/console"
	"github.com/celerix-dev/ministranci-console/pkg/schema"
	"github.com/celerix-dev/ministranci-console/pkg/sdk"
)

var errOffline = errors.New("dial tcp: connection refused")

// fakeBackend is an in-memory sdk.Backend that records every call.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	penalties     []schema.Penalty
	userPenalties map[string][]schema.Penalty
	blocked       []schema.BlockedUser
	emergency     []schema.EmergencyContact
	conversations []schema.Conversation
	threads       map[int64][]schema.Message
	devices       []schema.Device
	users         []schema.UserRow
	info          map[string]schema.UserInfo
	export        json.RawMessage

	sentTo   int
	imported int
	deleted  int

	// failures maps a method name to the error it returns.
	failures map[string]error

	lastDraft        schema.PenaltyDraft
	lastPassword     string
	lastNotification schema.Notification
	lastImport       json.RawMessage
	lastForm         string
	lastValues       url.Values
}

func (f *fakeBackend) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.failures[name]
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeBackend) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) ListPenalties(ctx context.Context) ([]schema.Penalty, error) {
	return f.penalties, f.record("ListPenalties")
}

func (f *fakeBackend) UserPenalties(ctx context.Context, username string) ([]schema.Penalty, error) {
	return f.userPenalties[username], f.record("UserPenalties")
}

func (f *fakeBackend) AddPenalty(ctx context.Context, draft schema.PenaltyDraft) error {
	f.lastDraft = draft
	return f.record("AddPenalty")
}

func (f *fakeBackend) DeletePenalty(ctx context.Context, id int64) error {
	return f.record("DeletePenalty")
}

func (f *fakeBackend) ListBlocked(ctx context.Context) ([]schema.BlockedUser, error) {
	return f.blocked, f.record("ListBlocked")
}

func (f *fakeBackend) Unblock(ctx context.Context, username string) error {
	return f.record("Unblock")
}

func (f *fakeBackend) ListEmergencyContacts(ctx context.Context) ([]schema.EmergencyContact, error) {
	return f.emergency, f.record("ListEmergencyContacts")
}

func (f *fakeBackend) UpdateEmergencyStatus(ctx context.Context, id int64, status string) error {
	return f.record("UpdateEmergencyStatus")
}

func (f *fakeBackend) DeleteEmergencyContact(ctx context.Context, id int64) error {
	return f.record("DeleteEmergencyContact")
}

func (f *fakeBackend) ListConversations(ctx context.Context) ([]schema.Conversation, error) {
	return f.conversations, f.record("ListConversations")
}

func (f *fakeBackend) ConversationThread(ctx context.Context, id int64) ([]schema.Message, error) {
	return f.threads[id], f.record("ConversationThread")
}

func (f *fakeBackend) CloseConversation(ctx context.Context, id int64) error {
	return f.record("CloseConversation")
}

func (f *fakeBackend) DeleteConversation(ctx context.Context, id int64) error {
	return f.record("DeleteConversation")
}

func (f *fakeBackend) ListDevices(ctx context.Context) ([]schema.Device, error) {
	return f.devices, f.record("ListDevices")
}

func (f *fakeBackend) SendNotification(ctx context.Context, n schema.Notification) (int, error) {
	f.lastNotification = n
	return f.sentTo, f.record("SendNotification")
}

func (f *fakeBackend) UserInfo(ctx context.Context, username string) (schema.UserInfo, error) {
	return f.info[username], f.record("UserInfo")
}

func (f *fakeBackend) UserRows(ctx context.Context) ([]schema.UserRow, error) {
	return f.users, f.record("UserRows")
}

func (f *fakeBackend) ChangePassword(ctx context.Context, username, password string) error {
	f.lastPassword = password
	return f.record("ChangePassword")
}

func (f *fakeBackend) ExportAll(ctx context.Context) (json.RawMessage, error) {
	return f.export, f.record("ExportAll")
}

func (f *fakeBackend) ImportAll(ctx context.Context, doc json.RawMessage) (int, error) {
	f.lastImport = doc
	return f.imported, f.record("ImportAll")
}

func (f *fakeBackend) DeleteAllSchedules(ctx context.Context) (int, error) {
	return f.deleted, f.record("DeleteAllSchedules")
}

func (f *fakeBackend) SubmitForm(ctx context.Context, action string, values url.Values) error {
	f.lastForm = action
	f.lastValues = values
	return f.record("SubmitForm")
}

var _ sdk.Backend = (*fakeBackend)(nil)

type download struct {
	name        string
	contentType string
	body        []byte
}

// fakeUI answers confirmations and prompts from preset values.
type fakeUI struct {
	mu sync.Mutex

	confirmAnswer bool
	promptAnswer  string
	promptOK      bool

	confirms  []string
	alerts    []string
	prompts   []string
	reloads   int
	opened    []string
	downloads []download
	clipboard string
}

func (u *fakeUI) Confirm(message string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.confirms = append(u.confirms, message)
	return u.confirmAnswer
}

func (u *fakeUI) Alert(message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.alerts = append(u.alerts, message)
}

func (u *fakeUI) Prompt(message, fallback string) (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.prompts = append(u.prompts, message)
	return u.promptAnswer, u.promptOK
}

func (u *fakeUI) Reload() { u.reloads++ }

func (u *fakeUI) Open(url string) { u.opened = append(u.opened, url) }

func (u *fakeUI) Download(name, contentType string, body []byte) error {
	u.downloads = append(u.downloads, download{name, contentType, body})
	return nil
}

func (u *fakeUI) Copy(text string) error {
	u.clipboard = text
	return nil
}

// fixedNow is already the 30th in Warsaw but still the 29th in UTC.
var fixedNow = time.Date(2025, 11, 30, 0, 30, 0, 0, time.FixedZone("CET", 3600))

func adminViewer() console.Viewer {
	return console.Viewer{Username: "admin", Role: schema.RoleAdmin}
}

// setup builds an admin dashboard console around fb and a UI that confirms.
func setup(t *testing.T, fb *fakeBackend) (*console.Console, *fakeUI) {
	t.Helper()
	ui := &fakeUI{confirmAnswer: true, promptOK: true}
	doc := console.NewDashboard(adminViewer())
	c := console.New(fb, ui, doc, console.NewSession("test"), console.WithClock(func() time.Time { return fixedNow }))
	return c, ui
}
