package console_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/ministranci-console/internal/console"
	"github.com/celerix-dev/ministranci-console/pkg/schema"
	"github.com/celerix-dev/ministranci-console/pkg/sdk"
)

func TestBootstrap_WiresGuards(t *testing.T) {
	c, _ := setup(t, &fakeBackend{})
	c.Bootstrap(context.Background())

	doc := c.Document()
	assert.False(t, doc.Form(console.FormPenalty).Guarded, "no-confirm")
	assert.False(t, doc.Form(console.FormUserFilter).Guarded, "inline-form")
	assert.False(t, doc.Form(console.FormMassType).Guarded, "mass type")
	assert.True(t, doc.Form(console.FormMassType).Async)
	assert.True(t, doc.Form(console.FormUnblock).Guarded)
	assert.True(t, doc.Form(console.FormSchedule).Guarded)
	assert.False(t, doc.Form(console.FormSchedule).Async)
}

func TestBootstrap_PrefillsDatesInUTC(t *testing.T) {
	c, _ := setup(t, &fakeBackend{})
	c.Bootstrap(context.Background())
	assert.Equal(t, "2025-11-29", c.Document().DateInput("data").Value)

	c, _ = setup(t, &fakeBackend{})
	c.Document().DateInput("data").Value = "2024-01-01"
	c.Bootstrap(context.Background())
	assert.Equal(t, "2024-01-01", c.Document().DateInput("data").Value, "filled inputs are kept")
}

func TestBootstrap_AttendanceDateIsNotFilled(t *testing.T) {
	fb := &fakeBackend{}
	doc := console.NewDashboard(console.Viewer{Username: "ks_adam", Role: schema.RolePriest})
	c := console.New(fb, &fakeUI{confirmAnswer: true}, doc, console.NewSession("s"),
		console.WithClock(func() time.Time { return fixedNow }))
	c.Bootstrap(context.Background())

	assert.Empty(t, doc.DateInput("date").Value, "inputs named date are never filled")
	f := doc.Form(console.FormAttendance)
	require.NotNil(t, f)
	assert.True(t, f.Generic)
	assert.True(t, f.Guarded)
	assert.Zero(t, fb.total(), "priests have no panels to load")
}

func TestNewDashboard_OnlyScheduleIsGeneric(t *testing.T) {
	doc := console.NewDashboard(adminViewer())
	for _, f := range doc.Forms {
		assert.Equal(t, f.Name == console.FormSchedule, f.Generic, f.Name)
	}
}

func TestBootstrap_LoadsEveryPresentPanel(t *testing.T) {
	fb := &fakeBackend{}
	c, _ := setup(t, fb)
	c.Bootstrap(context.Background())

	for _, call := range []string{"ListPenalties", "ListBlocked", "ListEmergencyContacts", "ListConversations", "ListDevices", "UserRows"} {
		assert.Equal(t, 1, fb.count(call), call)
	}
	assert.Zero(t, fb.count("UserPenalties"), "admins have no own penalties panel")
}

func TestBootstrap_MinistrantSeesOwnPenalties(t *testing.T) {
	fb := &fakeBackend{userPenalties: map[string][]schema.Penalty{
		"jan": {{ID: 1, Type: "Upomnienie", Description: "spóźnienie", Issued: "2025-11-20", IssuedBy: "admin"}},
	}}
	doc := console.NewDashboard(console.Viewer{Username: "jan", Role: schema.RoleMinistrant})
	c := console.New(fb, &fakeUI{}, doc, console.NewSession("s"))
	c.Bootstrap(context.Background())

	assert.Equal(t, 1, fb.count("UserPenalties"))
	assert.Zero(t, fb.count("ListPenalties"))
	assert.Contains(t, string(doc.Container(console.MyPenalties).HTML()), "Upomnienie")
}

func TestBootstrap_FailedLoadKeepsContainer(t *testing.T) {
	fb := &fakeBackend{failures: map[string]error{"ListBlocked": errOffline}}
	c, ui := setup(t, fb)
	c.Document().Container(console.BlockedList).Set("<tr><td>old</td></tr>")

	c.Bootstrap(context.Background())

	assert.Equal(t, "<tr><td>old</td></tr>", string(c.Document().Container(console.BlockedList).HTML()))
	assert.Empty(t, ui.alerts, "load failures are not alerted")
	assert.Contains(t, string(c.Document().Container(console.PenaltiesList).HTML()), "Brak kar")
}

func TestPanels_Placeholders(t *testing.T) {
	c, _ := setup(t, &fakeBackend{})
	c.Bootstrap(context.Background())

	doc := c.Document()
	for id, placeholder := range map[string]string{
		console.PenaltiesList: "Brak kar",
		console.BlockedList:   "Brak zablokowanych użytkowników",
		console.EmergencyList: "Brak nowych próśb o pomoc",
		console.ConvList:      "Brak rozmów",
		console.DevicesList:   "Brak zarejestrowanych urządzeń",
	} {
		assert.Contains(t, string(doc.Container(id).HTML()), placeholder, id)
	}
}

func TestPanels_EscapeServerStrings(t *testing.T) {
	evil := `<script>alert(1)</script>`
	fb := &fakeBackend{
		penalties:     []schema.Penalty{{ID: 1, Ministrant: evil, Type: "x"}},
		blocked:       []schema.BlockedUser{{ID: 1, Username: evil}},
		emergency:     []schema.EmergencyContact{{ID: 1, Name: evil, Status: schema.EmergencyNew}},
		conversations: []schema.Conversation{{ID: 1, Sender: evil, Recipient: "admin"}},
		devices:       []schema.Device{{ID: 1, Name: evil, DeviceID: "abc"}},
	}
	c, _ := setup(t, fb)
	c.Bootstrap(context.Background())

	for _, id := range []string{console.PenaltiesList, console.BlockedList, console.EmergencyList, console.ConvList, console.DevicesList} {
		h := string(c.Document().Container(id).HTML())
		assert.NotContains(t, h, "<script>", id)
		assert.Contains(t, h, "&lt;script&gt;", id)
	}
}

func TestPanels_Devices(t *testing.T) {
	fb := &fakeBackend{devices: []schema.Device{
		{ID: 1, DeviceID: "abcdef1234567890", Name: "Telefon", Registered: "2025-11-01", Active: true},
		{ID: 2, DeviceID: "short", Name: "Tablet", LastPing: "2025-11-28 10:00"},
	}}
	c, _ := setup(t, fb)
	require.NoError(t, c.LoadDevices(context.Background()))

	h := string(c.Document().Container(console.DevicesList).HTML())
	assert.Contains(t, h, "abcdef123456...")
	assert.NotContains(t, h, "abcdef1234567890")
	assert.Contains(t, h, "Nigdy")
	assert.Contains(t, h, "✓ Aktywne")
	assert.Contains(t, h, "✗ Nieaktywne")
}

func TestPanels_EmergencyResolvedHasNoResolveAction(t *testing.T) {
	fb := &fakeBackend{emergency: []schema.EmergencyContact{
		{ID: 4, Name: "Ola", Status: schema.EmergencyResolved},
	}}
	c, _ := setup(t, fb)
	require.NoError(t, c.LoadEmergencyContacts(context.Background()))

	h := string(c.Document().Container(console.EmergencyList).HTML())
	assert.Contains(t, h, "ROZWIĄZANY")
	assert.NotContains(t, h, "/emergency/4/resolve")
	assert.Contains(t, h, "Normalny")
	assert.Contains(t, h, "Nieznane")
}

func TestSubmit_DeclineMakesNoRequest(t *testing.T) {
	fb := &fakeBackend{}
	c, ui := setup(t, fb)
	ui.confirmAnswer = false

	err := c.Submit(context.Background(), console.FormSchedule, url.Values{"data": {"2025-12-01"}})
	assert.ErrorIs(t, err, console.ErrCancelled)
	assert.Equal(t, []string{"Czy na pewno chcesz zatwierdzić?"}, ui.confirms)
	assert.Zero(t, fb.total())

	err = c.Unblock(context.Background(), "jan")
	assert.ErrorIs(t, err, console.ErrCancelled)
	assert.Zero(t, fb.total())
}

func TestSubmit_UnguardedFormSkipsConfirm(t *testing.T) {
	fb := &fakeBackend{}
	c, ui := setup(t, fb)

	require.NoError(t, c.Submit(context.Background(), console.FormPenalty, url.Values{}))
	assert.Empty(t, ui.confirms)
	assert.Equal(t, "/add_penalty", fb.lastForm)
	assert.Equal(t, 1, ui.reloads)
}

func TestUnblock(t *testing.T) {
	fb := &fakeBackend{}
	c, ui := setup(t, fb)

	require.NoError(t, c.Unblock(context.Background(), "jan"))
	assert.Equal(t, 1, fb.count("Unblock"))
	assert.Equal(t, 1, ui.reloads)
}

func TestUpdateMassType(t *testing.T) {
	fb := &fakeBackend{}
	c, ui := setup(t, fb)

	require.NoError(t, c.UpdateMassType(context.Background(), 3, url.Values{"points": {"2"}}))
	assert.Empty(t, ui.confirms)
	assert.Equal(t, "/admin/update_mass_type/3", fb.lastForm)
	assert.Equal(t, 1, ui.reloads)

	fb.failures = map[string]error{"SubmitForm": errOffline}
	assert.Error(t, c.UpdateMassType(context.Background(), 3, url.Values{}))
	assert.Equal(t, []string{"Błąd!"}, ui.alerts)
	assert.Equal(t, 1, ui.reloads)
}

func TestAddPenalty(t *testing.T) {
	fb := &fakeBackend{penalties: []schema.Penalty{{ID: 9, Ministrant: "jan", Type: "Upomnienie"}}}
	c, ui := setup(t, fb)

	err := c.AddPenalty(context.Background(), schema.PenaltyDraft{Ministrant: "jan"})
	assert.Error(t, err)
	assert.Zero(t, fb.count("AddPenalty"))

	ui.alerts = nil
	require.NoError(t, c.AddPenalty(context.Background(), schema.PenaltyDraft{Ministrant: "jan", Type: "Upomnienie", Description: "spóźnienie"}))
	assert.Equal(t, "spóźnienie", fb.lastDraft.Description)
	assert.Equal(t, []string{"Kara dodana!"}, ui.alerts)
	assert.Equal(t, 1, fb.count("ListPenalties"))
	assert.Contains(t, string(c.Document().Container(console.PenaltiesList).HTML()), "jan")
}

func TestDeletePenalty(t *testing.T) {
	fb := &fakeBackend{}
	c, ui := setup(t, fb)
	ui.confirmAnswer = false

	assert.ErrorIs(t, c.DeletePenalty(context.Background(), 7), console.ErrCancelled)
	assert.Equal(t, []string{"Usuń tę karę?"}, ui.confirms)
	assert.Zero(t, fb.total())

	ui.confirmAnswer = true
	require.NoError(t, c.DeletePenalty(context.Background(), 7))
	assert.Equal(t, 1, fb.count("DeletePenalty"))
	assert.Equal(t, 1, fb.count("ListPenalties"))
}

func TestFailureAlerts(t *testing.T) {
	fb := &fakeBackend{failures: map[string]error{
		"DeletePenalty": &sdk.RejectedError{Op: "delete penalty"},
	}}
	c, ui := setup(t, fb)

	assert.Error(t, c.DeletePenalty(context.Background(), 7))
	assert.Equal(t, []string{"❌ Błąd: Spróbuj ponownie"}, ui.alerts)
	assert.Zero(t, fb.count("ListPenalties"), "no reload after a failure")

	ui.alerts = nil
	fb.failures["DeletePenalty"] = errOffline
	assert.Error(t, c.DeletePenalty(context.Background(), 7))
	require.Len(t, ui.alerts, 1)
	assert.True(t, strings.HasPrefix(ui.alerts[0], "❌ Błąd połączenia: "))
}

func TestEmergency_ResolveAndDelete(t *testing.T) {
	fb := &fakeBackend{}
	c, ui := setup(t, fb)

	require.NoError(t, c.ResolveEmergency(context.Background(), 4))
	assert.Equal(t, []string{"✓ Oznaczono jako rozwiązane!"}, ui.alerts)
	assert.Equal(t, 1, fb.count("ListEmergencyContacts"))

	ui.alerts = nil
	ui.confirmAnswer = false
	assert.ErrorIs(t, c.DeleteEmergency(context.Background(), 4), console.ErrCancelled)
	assert.Equal(t, []string{"Na pewno usunąć ten kontakt awaryjny?"}, ui.confirms)
	assert.Zero(t, fb.count("DeleteEmergencyContact"))

	ui.confirmAnswer = true
	require.NoError(t, c.DeleteEmergency(context.Background(), 4))
	assert.Equal(t, []string{"✓ Usunięto!"}, ui.alerts)
	assert.Equal(t, 2, fb.count("ListEmergencyContacts"))
}

func TestEmergency_CopyAndNotes(t *testing.T) {
	c, ui := setup(t, &fakeBackend{})
	ec := schema.EmergencyContact{ID: 1, Name: "Ola", Email: "ola@example.com", Messenger: "ola.m"}

	require.NoError(t, c.CopyContactInfo(ec))
	assert.Equal(t, "Imię: Ola\nEmail: ola@example.com\nMessenger: ola.m", ui.clipboard)

	ui.promptAnswer = "zadzwonić"
	require.NoError(t, c.MarkPriority(1))
	require.NoError(t, c.NoteEmergency(1))
	assert.Equal(t, []string{
		"✓ Skopiowano dane kontaktu!",
		"⚡ Oznaczono jako priorytet!\nNotatka: zadzwonić",
		"✓ Notatka dodana: zadzwonić",
	}, ui.alerts)

	ui.promptOK = false
	assert.ErrorIs(t, c.NoteEmergency(1), console.ErrCancelled)
	assert.Len(t, ui.alerts, 3)
}

func TestEmergency_ContactBack(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		contact schema.EmergencyContact
		opened  string
		alert   string
	}{
		{"email", "1", schema.EmergencyContact{Name: "Ola", Email: "ola@example.com"}, "mailto:ola@example.com", ""},
		{"messenger", "2", schema.EmergencyContact{Name: "Ola", Messenger: "ola.m"}, "", "💬 Messenger: ola.m"},
		{"both", "3", schema.EmergencyContact{Name: "Ola", Email: "ola@example.com"}, "", "Email: ola@example.com\n💬 Messenger: "},
		{"email missing", "1", schema.EmergencyContact{Name: "Ola", Messenger: "ola.m"}, "", "Brak danych kontaktu!"},
		{"unknown", "7", schema.EmergencyContact{Name: "Ola", Email: "ola@example.com"}, "", "Brak danych kontaktu!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ui := setup(t, &fakeBackend{})
			ui.promptAnswer = tt.answer

			require.NoError(t, c.ContactBack(tt.contact))
			require.Len(t, ui.prompts, 1)
			assert.True(t, strings.HasPrefix(ui.prompts[0], "Jak skontaktować się z Ola?"))
			if tt.opened != "" {
				assert.Equal(t, []string{tt.opened}, ui.opened)
				assert.Empty(t, ui.alerts)
			} else {
				assert.Empty(t, ui.opened)
				assert.Equal(t, []string{tt.alert}, ui.alerts)
			}
		})
	}
}

func TestConversations_DeleteNeedsSelection(t *testing.T) {
	fb := &fakeBackend{}
	c, ui := setup(t, fb)

	assert.ErrorIs(t, c.DeleteConversation(context.Background()), console.ErrNoConversation)
	assert.Empty(t, ui.confirms)
	assert.Zero(t, fb.total())
}

func TestConversations_SelectAndDelete(t *testing.T) {
	fb := &fakeBackend{
		conversations: []schema.Conversation{{ID: 5, Sender: "jan", Recipient: "admin", Status: schema.ConversationOpen}},
		threads:       map[int64][]schema.Message{5: {{ID: 1, Sender: "jan", Body: "Dzień dobry"}}},
	}
	c, ui := setup(t, fb)
	box := c.Document().Container(console.ChatBox)
	require.True(t, box.Hidden())

	require.NoError(t, c.SelectConversationByID(context.Background(), 5))
	assert.False(t, box.Hidden())
	assert.Contains(t, string(box.HTML()), "Dzień dobry")
	require.NotNil(t, c.Session().Conversation)

	require.NoError(t, c.DeleteConversation(context.Background()))
	assert.Equal(t, []string{"Czy na pewno usunąć całą rozmowę?"}, ui.confirms)
	assert.Equal(t, []string{"Rozmowa usunięta!"}, ui.alerts)
	assert.Nil(t, c.Session().Conversation)
	assert.True(t, box.Hidden())
	assert.Equal(t, 2, fb.count("ListConversations"))
}

func TestConversations_Close(t *testing.T) {
	fb := &fakeBackend{}
	c, ui := setup(t, fb)
	require.NoError(t, c.SelectConversation(context.Background(), schema.Conversation{ID: 5, Status: schema.ConversationOpen}))

	require.NoError(t, c.CloseConversation(context.Background()))
	assert.Equal(t, 1, fb.count("CloseConversation"))
	assert.Equal(t, []string{"✓ Rozmowa zamknięta!"}, ui.alerts)
	assert.True(t, c.Session().Conversation.IsClosed())
}

func TestSendNotification(t *testing.T) {
	fb := &fakeBackend{sentTo: 3}
	c, ui := setup(t, fb)

	assert.Error(t, c.SendNotification(context.Background(), "Msza", ""))
	assert.Equal(t, []string{"Wypełnij tytuł i wiadomość!"}, ui.alerts)
	assert.Zero(t, fb.count("SendNotification"))

	ui.alerts = nil
	require.NoError(t, c.SendNotification(context.Background(), "Msza", "Jutro 8:00"))
	assert.Equal(t, schema.Notification{EventType: "admin", Title: "Msza", Message: "Jutro 8:00"}, fb.lastNotification)
	assert.Equal(t, []string{"✓ Wysłano do 3 urządzeń!"}, ui.alerts)
	assert.Equal(t, 1, fb.count("ListDevices"))
}

func TestCancelledIsNotAnAlert(t *testing.T) {
	c, ui := setup(t, &fakeBackend{})
	ui.confirmAnswer = false

	err := c.DeleteAllSchedules(context.Background())
	assert.True(t, errors.Is(err, console.ErrCancelled))
	assert.Empty(t, ui.alerts)
}
