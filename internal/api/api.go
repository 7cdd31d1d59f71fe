// Package api serves the admin console over HTTP with gin.
//
// Every request runs one console operation against a request-scoped UI.
// Dialog answers arrive as form fields, so a confirmation the request did
// not carry renders an interstitial page that re-posts with confirm=yes.
package api

import (
	"context"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/celerix-dev/ministranci-console/internal/archive"
	"github.com/celerix-dev/ministranci-console/internal/console"
	"github.com/celerix-dev/ministranci-console/internal/session"
	"github.com/celerix-dev/ministranci-console/internal/vault"
	"github.com/celerix-dev/ministranci-console/pkg/sdk"
)

const (
	sessionCookie = "ministranci_console"
	sessionKey    = "console.session"
)

// Handler holds what every route needs. Key seals the session cookie.
type Handler struct {
	Backend  sdk.Backend
	Sessions *session.Store
	Archive  *archive.Archive
	Key      []byte
	Viewer   console.Viewer
	Logger   *zap.Logger
	// SecureCookie marks the session cookie Secure, for TLS listeners.
	SecureCookie bool
	Now          func() time.Time
}

// Register installs the page templates and every console route on r.
func (h *Handler) Register(r *gin.Engine) {
	if h.Logger == nil {
		h.Logger = zap.NewNop()
	}
	if h.Now == nil {
		h.Now = time.Now
	}
	r.SetHTMLTemplate(pages)

	g := r.Group("/", h.withSession)
	{
		g.GET("/", h.Dashboard)
		g.GET("/panels/:panel", h.Panel)

		g.POST("/penalties", h.AddPenalty)
		g.POST("/penalties/:id/delete", h.DeletePenalty)
		g.POST("/blocked/:user/unblock", h.Unblock)

		g.POST("/emergency/:id/resolve", h.ResolveEmergency)
		g.POST("/emergency/:id/delete", h.DeleteEmergency)
		g.POST("/emergency/:id/copy", h.CopyEmergency)
		g.POST("/emergency/:id/priority", h.PriorityEmergency)
		g.POST("/emergency/:id/notes", h.NoteEmergency)
		g.POST("/emergency/:id/contact", h.ContactEmergency)

		g.POST("/conversations/:id/select", h.SelectConversation)
		g.POST("/conversations/current/delete", h.DeleteConversation)
		g.POST("/conversations/current/close", h.CloseConversation)

		g.POST("/notifications", h.SendNotification)
		g.POST("/mass-types", h.UpdateMassType)
		g.POST("/mass-types/:id", h.UpdateMassType)
		g.POST("/forms/:name", h.SubmitForm)

		g.GET("/users", h.FilterUsers)
		g.GET("/users/sort", h.SortUsers)
		g.POST("/users/select-all", h.SelectAll)
		g.GET("/users/export.csv", h.ExportUsersCSV)
		g.GET("/users/export.xlsx", h.ExportUsersXLSX)

		g.GET("/backup", h.Backup)
		g.POST("/backup/import", h.Import)
		g.POST("/schedules/delete", h.DeleteSchedules)
		g.GET("/archive", h.ListArchive)
		g.GET("/archive/:name", h.GetArchived)

		g.POST("/modals/password/:user", h.OpenPassword)
		g.POST("/modals/password", h.SubmitPassword)
		g.POST("/modals/details/:user", h.OpenDetails)
		g.POST("/modals/reset-attempts", h.ResetAttempts)
		g.POST("/modals/notes/:user", h.OpenNotes)
		g.POST("/modals/notes", h.SaveNotes)
		g.POST("/modals/close", h.CloseModal)
		g.POST("/modals/outside", h.OutsideClick)
	}
}

// withSession resolves the visitor's session from the sealed cookie and
// holds its lock for the rest of the request.
func (h *Handler) withSession(c *gin.Context) {
	var id string
	if token, err := c.Cookie(sessionCookie); err == nil {
		if opened, err := vault.Open(token, h.Key); err == nil {
			id = opened
		} else {
			h.Logger.Debug("Rejected session cookie", zap.Error(err))
		}
	}

	sess, created := h.Sessions.GetOrCreate(id)
	if created {
		token, err := vault.Seal(sess.ID, h.Key)
		if err != nil {
			h.Logger.Error("Failed to seal session", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, token, 0, "/", "", h.SecureCookie, true)
	}

	sess.Lock()
	defer sess.Unlock()
	c.Set(sessionKey, sess)
	c.Next()
}

// console builds the console for this request and the UI it talks to.
func (h *Handler) console(c *gin.Context) (*console.Console, *requestUI) {
	sess := c.MustGet(sessionKey).(*console.Session)
	ui := &requestUI{
		sess:      sess,
		archive:   h.Archive,
		confirmed: c.PostForm(fieldConfirm) == "yes",
	}
	if answer, ok := c.GetPostForm(fieldPrompt); ok {
		ui.answer, ui.answered = answer, true
	}
	doc := console.NewDashboard(h.Viewer)
	cons := console.New(h.Backend, ui, doc, sess,
		console.WithLogger(h.Logger),
		console.WithClock(h.Now),
	)
	return cons, ui
}

// finish turns what the console did into the response: a pending question,
// an attachment, an external link, or back to the dashboard.
func (h *Handler) finish(c *gin.Context, ui *requestUI, err error) {
	if err != nil && !errors.Is(err, console.ErrCancelled) {
		h.Logger.Debug("Console action failed", zap.String("route", c.FullPath()), zap.Error(err))
	}

	switch {
	case ui.pending != nil:
		h.ask(c, ui.pending)
	case ui.download != nil:
		disposition := mime.FormatMediaType("attachment", map[string]string{"filename": ui.download.name})
		c.Header("Content-Disposition", disposition)
		c.Data(http.StatusOK, ui.download.contentType, ui.download.body)
	case ui.open != "":
		c.Redirect(http.StatusSeeOther, ui.open)
	default:
		c.Redirect(http.StatusSeeOther, "/")
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	return parseID(c, c.Param(name), name)
}

// parseID answers 400 itself when raw is not a positive integer.
func parseID(c *gin.Context, raw, name string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// formValues is the submitted form without the dialog answers.
func formValues(c *gin.Context) url.Values {
	values := url.Values{}
	for k, v := range c.Request.PostForm {
		if k == fieldConfirm || k == fieldPrompt {
			continue
		}
		values[k] = v
	}
	return values
}

func ctxOf(c *gin.Context) context.Context {
	return c.Request.Context()
}

// Panel renders a single panel fragment, for pages that refresh one region.
func (h *Handler) Panel(c *gin.Context) {
	p, ok := panels[c.Param("panel")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown panel"})
		return
	}
	cons, _ := h.console(c)
	if err := p.load(cons, ctxOf(c)); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	box := cons.Document().Container(p.container)
	if box == nil || (p.container == console.ChatBox && box.Hidden()) {
		c.JSON(http.StatusNotFound, gin.H{"error": "panel not available"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(box.HTML()))
}

type panel struct {
	container string
	load      func(*console.Console, context.Context) error
}

var panels = map[string]panel{
	"penalties":     {console.PenaltiesList, (*console.Console).LoadPenalties},
	"my-penalties":  {console.MyPenalties, (*console.Console).LoadMyPenalties},
	"blocked":       {console.BlockedList, (*console.Console).LoadBlocked},
	"emergency":     {console.EmergencyList, (*console.Console).LoadEmergencyContacts},
	"conversations": {console.ConvList, (*console.Console).LoadConversations},
	"thread":        {console.ChatBox, (*console.Console).LoadThread},
	"devices":       {console.DevicesList, (*console.Console).LoadDevices},
}

func (h *Handler) ListArchive(c *gin.Context) {
	if h.Archive == nil {
		c.JSON(http.StatusOK, []archive.Entry{})
		return
	}
	entries, err := h.Archive.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []archive.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) GetArchived(c *gin.Context) {
	if h.Archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "archive disabled"})
		return
	}
	name := c.Param("name")
	body, err := h.Archive.Read(name)
	switch {
	case errors.Is(err, archive.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, fs.ErrNotExist):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, contentTypeOf(name), body)
}

var contentTypes = map[string]string{
	".csv":  "text/csv; charset=utf-8",
	".json": "application/json",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func contentTypeOf(name string) string {
	if t, ok := contentTypes[filepath.Ext(name)]; ok {
		return t
	}
	return "application/octet-stream"
}
