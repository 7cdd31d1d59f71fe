package console

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/celerix-dev/ministranci-console/pkg/schema"
	"github.com/celerix-dev/ministranci-console/pkg/sdk"
)

// DetailsModal shows the account details of a user.
type DetailsModal struct {
	userModal
	Info *schema.UserInfo
}

func (d *DetailsModal) Name() string { return ModalDetails }

func (d *DetailsModal) show(target string) {
	d.userModal.show(target)
	d.Info = nil
}

func (d *DetailsModal) hide() {
	d.userModal.hide()
	d.Info = nil
}

// NotesModal takes a free-text note about a user.
type NotesModal struct {
	userModal
	Text string
}

func (n *NotesModal) Name() string { return ModalNotes }

func (n *NotesModal) show(target string) {
	n.userModal.show(target)
	n.Text = ""
}

func (n *NotesModal) hide() {
	n.userModal.hide()
	n.Text = ""
}

// OpenUserDetails opens the details modal, shows the loading text and then
// replaces it with the fetched record or the failure.
func (c *Console) OpenUserDetails(ctx context.Context, username string) error {
	d := c.sess.Details
	c.sess.Modals.Open(d, username)
	if err := c.fill(UserDetails, "userDetailsLoading", nil); err != nil {
		return err
	}

	info, err := c.backend.UserInfo(ctx, username)
	if err != nil {
		msg := detailsFailure(err)
		if ferr := c.fill(UserDetails, "userDetailsError", msg); ferr != nil {
			return ferr
		}
		return err
	}
	d.Info = &info
	return c.fill(UserDetails, "userDetails", info)
}

func detailsFailure(err error) string {
	var rejected *sdk.RejectedError
	if errors.As(err, &rejected) {
		return "❌ Błąd: " + rejected.Message
	}
	return "❌ Błąd połączenia: " + err.Error()
}

// DetailsHTML is the current content of the details modal body.
func (c *Console) DetailsHTML() template.HTML {
	if box := c.doc.Container(UserDetails); box != nil {
		return box.HTML()
	}
	return ""
}

func (c *Console) CloseUserDetails() {
	c.sess.Modals.CloseIf(c.sess.Details)
}

// ResetLoginAttempts acknowledges the reset for the shown user and closes
// the modal. The backend has no counter to reset.
func (c *Console) ResetLoginAttempts() {
	d := c.sess.Details
	if !d.IsOpen() {
		return
	}
	c.ui.Alert(fmt.Sprintf("✓ Zresetowano próby logowania dla %s", d.Target()))
	c.CloseUserDetails()
}

func (c *Console) OpenNotes(username string) {
	c.sess.Modals.Open(c.sess.Notes, username)
}

func (c *Console) CloseNotes() {
	c.sess.Modals.CloseIf(c.sess.Notes)
}

var ErrEmptyNote = errors.New("empty note")

// SaveNotes acknowledges a non-empty note and closes the modal.
func (c *Console) SaveNotes(text string) error {
	n := c.sess.Notes
	if !n.IsOpen() {
		return fmt.Errorf("notes modal is closed")
	}
	n.Text = text
	if strings.TrimSpace(text) == "" {
		c.ui.Alert("⚠️ Wpisz treść notatki!")
		return ErrEmptyNote
	}
	c.ui.Alert(fmt.Sprintf("✓ Notatka zapisana dla %s!", n.Target()))
	c.CloseNotes()
	return nil
}
