package sdk_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/ministranci-console/pkg/schema"
	"github.com/celerix-dev/ministranci-console/pkg/sdk"
)

// fakeBackend records requests and answers with canned bodies per path.
type fakeBackend struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	answers  map[string]string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.bodies = append(f.bodies, string(body))
	answer, ok := f.answers[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/":
		form, _ := url.ParseQuery(string(body))
		if form.Get("password") == "secret" {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		w.Write([]byte("<html>Błędne dane logowania</html>"))
		return
	case r.Method == http.MethodPost && r.URL.Path == "/unblock_user/jan":
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	if len(answer) > 0 && answer[0] == '<' {
		w.Header().Set("Content-Type", "text/html")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Write([]byte(answer))
}

func (f *fakeBackend) last() (*http.Request, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1], f.bodies[len(f.bodies)-1]
}

func setupClient(t *testing.T, answers map[string]string) (*sdk.Client, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{answers: answers}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	client, err := sdk.Connect(context.Background(), sdk.Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	return client, fb
}

func TestConnect_Login(t *testing.T) {
	fb := &fakeBackend{answers: map[string]string{"GET /dashboard": "<html></html>"}}
	srv := httptest.NewServer(fb)
	defer srv.Close()

	_, err := sdk.Connect(context.Background(), sdk.Config{BaseURL: srv.URL, Username: "admin", Password: "secret"}, nil)
	require.NoError(t, err)

	_, err = sdk.Connect(context.Background(), sdk.Config{BaseURL: srv.URL, Username: "admin", Password: "wrong"}, nil)
	assert.ErrorIs(t, err, sdk.ErrLoginFailed)

	_, err = sdk.Connect(context.Background(), sdk.Config{}, nil)
	assert.Error(t, err)
}

func TestClient_ListPenalties(t *testing.T) {
	client, _ := setupClient(t, map[string]string{
		"GET /get_all_penalties": `[{"id":7,"ministrant":"jan","typ_kary":"Upomnienie","opis":"spóźnienie","data":"2025-11-29","wydana_przez":"admin","status":"active"}]`,
	})

	list, err := client.ListPenalties(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, schema.Penalty{
		ID: 7, Ministrant: "jan", Type: "Upomnienie", Description: "spóźnienie",
		Issued: "2025-11-29", IssuedBy: "admin", Status: "active",
	}, list[0])
}

func TestClient_AddPenaltySendsForm(t *testing.T) {
	client, fb := setupClient(t, map[string]string{"POST /add_penalty": `{"success":true}`})

	err := client.AddPenalty(context.Background(), schema.PenaltyDraft{Ministrant: "jan", Type: "Upomnienie", Description: "opis"})
	require.NoError(t, err)

	_, body := fb.last()
	form, err := url.ParseQuery(body)
	require.NoError(t, err)
	assert.Equal(t, "jan", form.Get("ministrant"))
	assert.Equal(t, "Upomnienie", form.Get("typ_kary"))
	assert.Equal(t, "opis", form.Get("opis"))
}

func TestClient_RejectedCarriesMessage(t *testing.T) {
	client, _ := setupClient(t, map[string]string{
		"POST /admin/change_password/jan": `{"success":false,"error":"Brak dostępu"}`,
		"POST /delete_penalty/3":          `{"success":false}`,
	})

	err := client.ChangePassword(context.Background(), "jan", "abcdef")
	require.Error(t, err)
	assert.ErrorIs(t, err, sdk.ErrRejected)
	var rejected *sdk.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "Brak dostępu", rejected.Message)

	err = client.DeletePenalty(context.Background(), 3)
	require.True(t, errors.As(err, &rejected))
	assert.Empty(t, rejected.Message)
}

func TestClient_StatusError(t *testing.T) {
	client, _ := setupClient(t, nil)

	_, err := client.ListBlocked(context.Background())
	var status *sdk.StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusNotFound, status.Code)
}

func TestClient_EmergencyStatusIsJSON(t *testing.T) {
	client, fb := setupClient(t, map[string]string{"POST /update_emergency_contact/4": `{"success":true}`})

	require.NoError(t, client.UpdateEmergencyStatus(context.Background(), 4, schema.EmergencyResolved))

	req, body := fb.last()
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"status":"resolved"}`, body)
}

func TestClient_ListDevices(t *testing.T) {
	client, _ := setupClient(t, map[string]string{
		"GET /get_registered_devices": `{"success":true,"devices":[{"id":1,"device_id":"abcdef1234567890","name":"Telefon","reg_date":"2025-11-01","last_ping":null,"active":1}]}`,
	})

	devices, err := client.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.True(t, bool(devices[0].Active))
	assert.Empty(t, devices[0].LastPing)
}

func TestClient_ListDevicesDenied(t *testing.T) {
	client, _ := setupClient(t, map[string]string{
		"GET /get_registered_devices": `{"success":false,"error":"Brak dostępu"}`,
	})

	_, err := client.ListDevices(context.Background())
	assert.ErrorIs(t, err, sdk.ErrRejected)
}

func TestClient_SendNotification(t *testing.T) {
	client, fb := setupClient(t, map[string]string{"POST /send_notification": `{"success":true,"sent_to":3}`})

	sent, err := client.SendNotification(context.Background(), schema.Notification{EventType: "admin", Title: "Msza", Message: "Jutro 8:00"})
	require.NoError(t, err)
	assert.Equal(t, 3, sent)

	_, body := fb.last()
	assert.JSONEq(t, `{"event_type":"admin","title":"Msza","message":"Jutro 8:00"}`, body)
}

func TestClient_UserInfo(t *testing.T) {
	client, _ := setupClient(t, map[string]string{
		"GET /get_user_info/jan":   `{"success":true,"username":"jan","role":"ministrant","status":"✓ Aktywny","created_date":"2025-11-29","last_login_date":"Nigdy","attendance_count":18,"monthly_points":127,"penalty_count":1}`,
		"GET /get_user_info/ghost": `{"success":false,"error":"Użytkownik nie znaleziony"}`,
	})

	info, err := client.UserInfo(context.Background(), "jan")
	require.NoError(t, err)
	assert.Equal(t, 127, info.MonthlyPoints)
	assert.Equal(t, "ministrant", info.Role)

	_, err = client.UserInfo(context.Background(), "ghost")
	var rejected *sdk.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "Użytkownik nie znaleziony", rejected.Message)
}

func TestClient_ExportAndImport(t *testing.T) {
	client, fb := setupClient(t, map[string]string{
		"GET /export_all_data":  `{"success":true,"data":{"users":[{"username":"jan"}]}}`,
		"POST /import_all_data": `{"success":true,"imported":1}`,
	})

	doc, err := client.ExportAll(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"users":[{"username":"jan"}]}}`, string(doc))

	n, err := client.ImportAll(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, body := fb.last()
	assert.JSONEq(t, string(doc), body)
}

func TestClient_ExportRejected(t *testing.T) {
	client, _ := setupClient(t, map[string]string{
		"GET /export_all_data": `{"success":false,"error":"Brak dostępu"}`,
	})

	_, err := client.ExportAll(context.Background())
	assert.ErrorIs(t, err, sdk.ErrRejected)
}

func TestClient_DeleteAllSchedules(t *testing.T) {
	client, _ := setupClient(t, map[string]string{"POST /delete_all_schedules": `{"success":true,"deleted":12}`})

	n, err := client.DeleteAllSchedules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestClient_UnblockFollowsRedirect(t *testing.T) {
	client, _ := setupClient(t, map[string]string{"GET /dashboard": "<html></html>"})

	assert.NoError(t, client.Unblock(context.Background(), "jan"))
}

func TestClient_SubmitForm(t *testing.T) {
	client, fb := setupClient(t, map[string]string{"POST /admin/update_mass_type/3": `<html></html>`})

	values := url.Values{"points": {"2"}, "description": {"Niedziela"}}
	require.NoError(t, client.SubmitForm(context.Background(), "http://example.invalid/admin/update_mass_type/3", values))

	req, body := fb.last()
	assert.Equal(t, "/admin/update_mass_type/3", req.URL.Path)
	form, _ := url.ParseQuery(body)
	assert.Equal(t, "2", form.Get("points"))
}

func TestClient_UserRows(t *testing.T) {
	page := `<html><body><table class="users-table"><tbody>
<tr class="user-row" data-username="alice" data-role="admin" data-active="1">
  <td><input type="checkbox" class="user-checkbox"></td><td>alice</td><td>admin</td><td>✓</td><td> 2025-11-29 </td>
</tr>
<tr class="user-row" data-username="bob" data-role="ministrant" data-active="0">
  <td></td><td>bob</td><td>ministrant</td><td>✗</td><td><span>2025-12-01</span></td>
</tr>
<tr class="other"><td>x</td></tr>
</tbody></table></body></html>`
	client, _ := setupClient(t, map[string]string{"GET /dashboard": page})

	rows, err := client.UserRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []schema.UserRow{
		{Username: "alice", Role: "admin", Active: true, Joined: "2025-11-29"},
		{Username: "bob", Role: "ministrant", Active: false, Joined: "2025-12-01"},
	}, rows)
}

func TestRejectedError_Format(t *testing.T) {
	err := &sdk.RejectedError{Op: "import data", Message: "zły plik"}
	assert.Equal(t, "import data: rejected by backend: zły plik", err.Error())

	assert.Equal(t, "import data: rejected by backend", (&sdk.RejectedError{Op: "import data"}).Error())
}
