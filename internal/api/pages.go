package api

import (
	"embed"
	"html/template"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/celerix-dev/ministranci-console/internal/console"
)

//go:embed templates/*.gohtml
var pageFS embed.FS

var pages = template.Must(template.New("pages").
	Funcs(console.Funcs).
	ParseFS(pageFS, "templates/*.gohtml"))

// views renders the details modal body from the session's record.
var views = console.MustParseViews()

// panelIDs are the containers the dashboard shows, in page order.
var panelIDs = []string{
	console.MyPenalties,
	console.PenaltiesList,
	console.BlockedList,
	console.EmergencyList,
	console.ConvList,
	console.ChatBox,
	console.DevicesList,
}

type dashboardPage struct {
	Viewer    console.Viewer
	Flash     []string
	Doc       *console.Document
	Panels    map[string]template.HTML
	ChatOpen  bool
	Filter    console.UserFilter
	Sort      string
	SelectAll bool

	Modal    string
	Target   string
	Details  template.HTML
	Password *console.PasswordModal
	Notes    *console.NotesModal
}

// Dashboard bootstraps a fresh page for the session and renders it.
func (h *Handler) Dashboard(c *gin.Context) {
	cons, _ := h.console(c)
	ctx := ctxOf(c)
	cons.Bootstrap(ctx)
	if err := cons.LoadThread(ctx); err != nil {
		h.Logger.Warn("Panel load failed", zap.String("panel", "thread"), zap.Error(err))
	}

	sess := cons.Session()
	doc := cons.Document()
	page := dashboardPage{
		Viewer:    doc.Viewer,
		Doc:       doc,
		Panels:    make(map[string]template.HTML),
		Filter:    sess.Filter,
		Sort:      sess.Sort,
		SelectAll: sess.SelectAll,
		Password:  sess.Password,
		Notes:     sess.Notes,
	}
	for _, id := range panelIDs {
		if box := doc.Container(id); box != nil {
			page.Panels[id] = box.HTML()
		}
	}
	if box := doc.Container(console.ChatBox); box != nil {
		page.ChatOpen = !box.Hidden()
	}

	if m := sess.Modals.Active(); m != nil {
		page.Modal, page.Target = m.Name(), m.Target()
		if m == sess.Details {
			page.Details = h.detailsBody(c, cons)
		}
	}

	page.Flash = sess.Drain()
	c.HTML(http.StatusOK, "dashboard", page)
}

// detailsBody renders the record fetched when the modal was opened, or
// fetches it again when that attempt failed.
func (h *Handler) detailsBody(c *gin.Context, cons *console.Console) template.HTML {
	d := cons.Session().Details
	if d.Info != nil {
		body, err := views.Render("userDetails", *d.Info)
		if err == nil {
			return body
		}
		h.Logger.Error("Failed to render user details", zap.Error(err))
	}
	if err := cons.OpenUserDetails(ctxOf(c), d.Target()); err != nil {
		h.Logger.Debug("User details unavailable", zap.String("username", d.Target()), zap.Error(err))
	}
	return cons.DetailsHTML()
}

type hiddenField struct {
	Name  string
	Value string
}

type askPage struct {
	question
	Action string
	Fields []hiddenField
}

// ask renders the interstitial that re-posts the original form with the
// answer attached.
func (h *Handler) ask(c *gin.Context, q *question) {
	values := formValues(c)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	page := askPage{question: *q, Action: c.Request.URL.Path}
	for _, k := range keys {
		for _, v := range values[k] {
			page.Fields = append(page.Fields, hiddenField{Name: k, Value: v})
		}
	}
	c.HTML(http.StatusOK, "ask", page)
}
