package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/ministranci-console/internal/console"
	"github.com/celerix-dev/ministranci-console/pkg/schema"
)

func (h *Handler) AddPenalty(c *gin.Context) {
	var draft schema.PenaltyDraft
	if err := c.ShouldBind(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cons, ui := h.console(c)
	h.finish(c, ui, cons.AddPenalty(ctxOf(c), draft))
}

func (h *Handler) DeletePenalty(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cons, ui := h.console(c)
	h.finish(c, ui, cons.DeletePenalty(ctxOf(c), id))
}

func (h *Handler) Unblock(c *gin.Context) {
	cons, ui := h.console(c)
	h.finish(c, ui, cons.Unblock(ctxOf(c), c.Param("user")))
}

func (h *Handler) ResolveEmergency(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cons, ui := h.console(c)
	h.finish(c, ui, cons.ResolveEmergency(ctxOf(c), id))
}

func (h *Handler) DeleteEmergency(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cons, ui := h.console(c)
	h.finish(c, ui, cons.DeleteEmergency(ctxOf(c), id))
}

func (h *Handler) CopyEmergency(c *gin.Context) {
	h.withContact(c, (*console.Console).CopyContactInfo)
}

func (h *Handler) ContactEmergency(c *gin.Context) {
	h.withContact(c, (*console.Console).ContactBack)
}

// withContact looks the contact up before running action on it.
func (h *Handler) withContact(c *gin.Context, action func(*console.Console, schema.EmergencyContact) error) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cons, ui := h.console(c)
	ec, err := cons.FindEmergencyContact(ctxOf(c), id)
	if err != nil {
		ui.Alert("❌ Błąd połączenia: " + err.Error())
		h.finish(c, ui, err)
		return
	}
	h.finish(c, ui, action(cons, ec))
}

func (h *Handler) PriorityEmergency(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cons, ui := h.console(c)
	h.finish(c, ui, cons.MarkPriority(id))
}

func (h *Handler) NoteEmergency(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cons, ui := h.console(c)
	h.finish(c, ui, cons.NoteEmergency(id))
}

func (h *Handler) SelectConversation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cons, ui := h.console(c)
	h.finish(c, ui, cons.SelectConversationByID(ctxOf(c), id))
}

func (h *Handler) DeleteConversation(c *gin.Context) {
	cons, ui := h.console(c)
	h.finish(c, ui, cons.DeleteConversation(ctxOf(c)))
}

func (h *Handler) CloseConversation(c *gin.Context) {
	cons, ui := h.console(c)
	h.finish(c, ui, cons.CloseConversation(ctxOf(c)))
}

func (h *Handler) SendNotification(c *gin.Context) {
	cons, ui := h.console(c)
	h.finish(c, ui, cons.SendNotification(ctxOf(c), c.PostForm("title"), c.PostForm("message")))
}

// UpdateMassType takes the id from the path or, for the dashboard form,
// from the id field.
func (h *Handler) UpdateMassType(c *gin.Context) {
	cons, ui := h.console(c)
	raw := c.Param("id")
	if raw == "" {
		raw = c.PostForm("id")
	}
	id, ok := parseID(c, raw, "id")
	if !ok {
		return
	}
	values := formValues(c)
	values.Del("id")
	h.finish(c, ui, cons.UpdateMassType(ctxOf(c), id, values))
}

// SubmitForm sends one of the dashboard's generic forms to the backend.
// Forms with their own route are not reachable here.
func (h *Handler) SubmitForm(c *gin.Context) {
	cons, ui := h.console(c)
	name := c.Param("name")
	if f := cons.Document().Form(name); f == nil || !f.Generic {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown form"})
		return
	}
	h.finish(c, ui, cons.Submit(ctxOf(c), name, formValues(c)))
}

// FilterUsers applies whichever of role, status and q the query carries.
func (h *Handler) FilterUsers(c *gin.Context) {
	cons, ui := h.console(c)
	if role, ok := c.GetQuery("role"); ok {
		cons.FilterByRole(role)
	}
	if status, ok := c.GetQuery("status"); ok {
		cons.FilterByStatus(status)
	}
	if q, ok := c.GetQuery("q"); ok {
		cons.Search(q)
	}
	h.finish(c, ui, nil)
}

func (h *Handler) SortUsers(c *gin.Context) {
	cons, ui := h.console(c)
	cons.SortUsers(c.Query("by"))
	h.finish(c, ui, nil)
}

func (h *Handler) SelectAll(c *gin.Context) {
	cons, ui := h.console(c)
	cons.ToggleSelectAll()
	h.finish(c, ui, nil)
}

func (h *Handler) ExportUsersCSV(c *gin.Context) {
	h.exportUsers(c, (*console.Console).ExportUsersCSV)
}

func (h *Handler) ExportUsersXLSX(c *gin.Context) {
	h.exportUsers(c, (*console.Console).ExportUsersXLSX)
}

// exportUsers loads the table with the session's filter so the export
// holds exactly the rows the dashboard shows.
func (h *Handler) exportUsers(c *gin.Context, export func(*console.Console) error) {
	cons, ui := h.console(c)
	if err := cons.LoadUsers(ctxOf(c)); err != nil {
		ui.Alert("❌ Błąd połączenia: " + err.Error())
		h.finish(c, ui, err)
		return
	}
	h.finish(c, ui, export(cons))
}

func (h *Handler) Backup(c *gin.Context) {
	cons, ui := h.console(c)
	h.finish(c, ui, cons.ExportAllData(ctxOf(c)))
}

func (h *Handler) Import(c *gin.Context) {
	cons, ui := h.console(c)
	header, err := c.FormFile("file")
	if err != nil {
		ui.Alert("✗ Nieprawidłowy format pliku: " + err.Error())
		h.finish(c, ui, err)
		return
	}
	file, err := header.Open()
	if err != nil {
		ui.Alert("✗ Nieprawidłowy format pliku: " + err.Error())
		h.finish(c, ui, err)
		return
	}
	defer file.Close()
	h.finish(c, ui, cons.ImportAllData(ctxOf(c), file))
}

func (h *Handler) DeleteSchedules(c *gin.Context) {
	cons, ui := h.console(c)
	h.finish(c, ui, cons.DeleteAllSchedules(ctxOf(c)))
}

func (h *Handler) OpenPassword(c *gin.Context) {
	cons, ui := h.console(c)
	cons.OpenPasswordModal(c.Param("user"))
	h.finish(c, ui, nil)
}

func (h *Handler) SubmitPassword(c *gin.Context) {
	cons, ui := h.console(c)
	cons.PasswordInput(c.PostForm("password"), c.PostForm("password_confirm"))
	h.finish(c, ui, cons.SubmitPassword(ctxOf(c)))
}

func (h *Handler) OpenDetails(c *gin.Context) {
	cons, ui := h.console(c)
	h.finish(c, ui, cons.OpenUserDetails(ctxOf(c), c.Param("user")))
}

func (h *Handler) ResetAttempts(c *gin.Context) {
	cons, ui := h.console(c)
	cons.ResetLoginAttempts()
	h.finish(c, ui, nil)
}

func (h *Handler) OpenNotes(c *gin.Context) {
	cons, ui := h.console(c)
	cons.OpenNotes(c.Param("user"))
	h.finish(c, ui, nil)
}

func (h *Handler) SaveNotes(c *gin.Context) {
	cons, ui := h.console(c)
	h.finish(c, ui, cons.SaveNotes(c.PostForm("text")))
}

// CloseModal is the close button and the Escape key.
func (h *Handler) CloseModal(c *gin.Context) {
	cons, ui := h.console(c)
	cons.Session().Modals.Escape()
	h.finish(c, ui, nil)
}

// OutsideClick closes the active modal when target names its backdrop.
func (h *Handler) OutsideClick(c *gin.Context) {
	cons, ui := h.console(c)
	cons.Session().Modals.OutsideClick(c.PostForm("target"))
	h.finish(c, ui, nil)
}
