// Package sdk provides the client-side library for the ministranci backend API.
// Every call is a single request: the backend's actions are not idempotent,
// so nothing is retried.
package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/celerix-dev/ministranci-console/pkg/schema"
)

// Client is a remote client for the ministranci backend.
// It implements the Backend interface.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// envelope is the {success, error} wrapper most write endpoints answer with.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e envelope) check(op string) error {
	if e.Success {
		return nil
	}
	return &RejectedError{Op: op, Message: e.Error}
}

// Connect builds a client for cfg.BaseURL and, when credentials are
// configured, logs in so the session cookie is kept in the client's jar.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend url is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetRetryCount(0).
		SetLogger(logger.Sugar()).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}

	c := &Client{http: httpClient, logger: logger}
	if cfg.Username != "" {
		if err := c.Login(ctx, cfg.Username, cfg.Password); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Login posts the login form. The backend redirects to /dashboard on success
// and re-renders the login page otherwise.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"username": username, "password": password}).
		Post("/")
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if resp.IsError() {
		return &StatusError{Method: http.MethodPost, Path: "/", Code: resp.StatusCode()}
	}
	if resp.RawResponse == nil || resp.RawResponse.Request == nil ||
		!strings.HasSuffix(resp.RawResponse.Request.URL.Path, "/dashboard") {
		return fmt.Errorf("login %s: %w", username, ErrLoginFailed)
	}
	c.logger.Info("Logged in to backend", zap.String("username", username))
	return nil
}

// Internal helper: executes the request and decodes a JSON body into out.
func (c *Client) do(req *resty.Request, method, path string, out any) error {
	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error("Backend call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	c.logger.Debug("Backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.IsError() {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode()}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(c.http.R().SetContext(ctx), http.MethodGet, path, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req := c.http.R().SetContext(ctx)
	if form != nil {
		req.SetFormDataFromValues(form)
	}
	return c.do(req, http.MethodPost, path, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	return c.do(req, http.MethodPost, path, out)
}

// --- Penalties ---

func (c *Client) ListPenalties(ctx context.Context) ([]schema.Penalty, error) {
	var list []schema.Penalty
	err := c.get(ctx, "/get_all_penalties", &list)
	return list, err
}

func (c *Client) UserPenalties(ctx context.Context, username string) ([]schema.Penalty, error) {
	var list []schema.Penalty
	err := c.get(ctx, "/get_user_penalties/"+url.PathEscape(username), &list)
	return list, err
}

func (c *Client) AddPenalty(ctx context.Context, draft schema.PenaltyDraft) error {
	form := url.Values{}
	form.Set("ministrant", draft.Ministrant)
	form.Set("typ_kary", draft.Type)
	form.Set("opis", draft.Description)

	var out envelope
	if err := c.postForm(ctx, "/add_penalty", form, &out); err != nil {
		return err
	}
	return out.check("add penalty")
}

func (c *Client) DeletePenalty(ctx context.Context, id int64) error {
	var out envelope
	if err := c.postForm(ctx, "/delete_penalty/"+itoa(id), nil, &out); err != nil {
		return err
	}
	return out.check("delete penalty")
}

// --- Block list ---

func (c *Client) ListBlocked(ctx context.Context) ([]schema.BlockedUser, error) {
	var list []schema.BlockedUser
	err := c.get(ctx, "/get_blocked_users", &list)
	return list, err
}

// Unblock submits the unblock form; the backend answers with a redirect.
func (c *Client) Unblock(ctx context.Context, username string) error {
	return c.postForm(ctx, "/unblock_user/"+url.PathEscape(username), url.Values{}, nil)
}

// --- Emergency contacts ---

func (c *Client) ListEmergencyContacts(ctx context.Context) ([]schema.EmergencyContact, error) {
	var list []schema.EmergencyContact
	err := c.get(ctx, "/get_emergency_contacts", &list)
	return list, err
}

func (c *Client) UpdateEmergencyStatus(ctx context.Context, id int64, status string) error {
	var out envelope
	body := map[string]string{"status": status}
	if err := c.postJSON(ctx, "/update_emergency_contact/"+itoa(id), body, &out); err != nil {
		return err
	}
	return out.check("update emergency contact")
}

func (c *Client) DeleteEmergencyContact(ctx context.Context, id int64) error {
	var out envelope
	if err := c.postForm(ctx, "/delete_emergency_contact/"+itoa(id), nil, &out); err != nil {
		return err
	}
	return out.check("delete emergency contact")
}

// --- Conversations ---

func (c *Client) ListConversations(ctx context.Context) ([]schema.Conversation, error) {
	var list []schema.Conversation
	err := c.get(ctx, "/get_conversations", &list)
	return list, err
}

func (c *Client) ConversationThread(ctx context.Context, id int64) ([]schema.Message, error) {
	var list []schema.Message
	err := c.get(ctx, "/get_conversation/"+itoa(id), &list)
	return list, err
}

func (c *Client) CloseConversation(ctx context.Context, id int64) error {
	var out envelope
	if err := c.postForm(ctx, "/close_conversation/"+itoa(id), nil, &out); err != nil {
		return err
	}
	return out.check("close conversation")
}

func (c *Client) DeleteConversation(ctx context.Context, id int64) error {
	var out envelope
	if err := c.postForm(ctx, "/delete_conversation/"+itoa(id), nil, &out); err != nil {
		return err
	}
	return out.check("delete conversation")
}

// --- Devices ---

func (c *Client) ListDevices(ctx context.Context) ([]schema.Device, error) {
	var out struct {
		envelope
		Devices []schema.Device `json:"devices"`
	}
	if err := c.get(ctx, "/get_registered_devices", &out); err != nil {
		return nil, err
	}
	if out.Devices == nil && out.Error != "" {
		return nil, out.check("list devices")
	}
	return out.Devices, nil
}

func (c *Client) SendNotification(ctx context.Context, n schema.Notification) (int, error) {
	var out struct {
		envelope
		SentTo int `json:"sent_to"`
	}
	if err := c.postJSON(ctx, "/send_notification", n, &out); err != nil {
		return 0, err
	}
	if err := out.check("send notification"); err != nil {
		return 0, err
	}
	return out.SentTo, nil
}

// --- Accounts ---

func (c *Client) UserInfo(ctx context.Context, username string) (schema.UserInfo, error) {
	var out struct {
		envelope
		schema.UserInfo
	}
	if err := c.get(ctx, "/get_user_info/"+url.PathEscape(username), &out); err != nil {
		return schema.UserInfo{}, err
	}
	if err := out.check("user info"); err != nil {
		return schema.UserInfo{}, err
	}
	return out.UserInfo, nil
}

func (c *Client) ChangePassword(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("new_password", password)

	var out envelope
	if err := c.postForm(ctx, "/admin/change_password/"+url.PathEscape(username), form, &out); err != nil {
		return err
	}
	return out.check("change password")
}

// --- Whole dataset ---

// ExportAll returns the backend's snapshot document untouched.
func (c *Client) ExportAll(ctx context.Context) (json.RawMessage, error) {
	var doc json.RawMessage
	if err := c.get(ctx, "/export_all_data", &doc); err != nil {
		return nil, err
	}
	var out envelope
	out.Success = true
	if err := json.Unmarshal(doc, &out); err == nil && !out.Success {
		return nil, out.check("export data")
	}
	return doc, nil
}

func (c *Client) ImportAll(ctx context.Context, doc json.RawMessage) (int, error) {
	var out struct {
		envelope
		Imported int `json:"imported"`
	}
	if err := c.postJSON(ctx, "/import_all_data", doc, &out); err != nil {
		return 0, err
	}
	if err := out.check("import data"); err != nil {
		return 0, err
	}
	return out.Imported, nil
}

func (c *Client) DeleteAllSchedules(ctx context.Context) (int, error) {
	var out struct {
		envelope
		Deleted int `json:"deleted"`
	}
	if err := c.postForm(ctx, "/delete_all_schedules", nil, &out); err != nil {
		return 0, err
	}
	if err := out.check("delete schedules"); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

// --- Forms ---

// SubmitForm posts values to a backend form action such as
// /admin/update_mass_type/3. Any 2xx answer (after redirects) is success.
func (c *Client) SubmitForm(ctx context.Context, action string, values url.Values) error {
	if values == nil {
		values = url.Values{}
	}
	path := action
	if u, err := url.Parse(action); err == nil && u.IsAbs() {
		path = u.RequestURI()
	}
	return c.postForm(ctx, path, values, nil)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
