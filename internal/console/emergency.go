package console

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/celerix-dev/ministranci-console/pkg/schema"
)

func (c *Console) LoadEmergencyContacts(ctx context.Context) error {
	if c.doc.Container(EmergencyList) == nil {
		return nil
	}
	list, err := c.backend.ListEmergencyContacts(ctx)
	if err != nil {
		return fmt.Errorf("load emergency contacts: %w", err)
	}
	return c.fill(EmergencyList, "emergency", list)
}

// FindEmergencyContact fetches the list and returns the contact with id.
func (c *Console) FindEmergencyContact(ctx context.Context, id int64) (schema.EmergencyContact, error) {
	list, err := c.backend.ListEmergencyContacts(ctx)
	if err != nil {
		return schema.EmergencyContact{}, fmt.Errorf("load emergency contacts: %w", err)
	}
	for _, ec := range list {
		if ec.ID == id {
			return ec, nil
		}
	}
	return schema.EmergencyContact{}, fmt.Errorf("emergency contact %d not found", id)
}

// ResolveEmergency marks a contact as handled. There is no way back to "new".
func (c *Console) ResolveEmergency(ctx context.Context, id int64) error {
	if err := c.backend.UpdateEmergencyStatus(ctx, id, schema.EmergencyResolved); err != nil {
		c.alertFailure(err)
		return err
	}
	c.logger.Info("Emergency contact resolved", zap.Int64("id", id))
	c.ui.Alert("✓ Oznaczono jako rozwiązane!")
	return c.LoadEmergencyContacts(ctx)
}

func (c *Console) DeleteEmergency(ctx context.Context, id int64) error {
	if err := c.confirm("Na pewno usunąć ten kontakt awaryjny?"); err != nil {
		return err
	}
	if err := c.backend.DeleteEmergencyContact(ctx, id); err != nil {
		c.alertFailure(err)
		return err
	}
	c.logger.Info("Emergency contact deleted", zap.Int64("id", id))
	c.ui.Alert("✓ Usunięto!")
	return c.LoadEmergencyContacts(ctx)
}

// CopyContactInfo puts the contact's name, email and messenger on the clipboard.
func (c *Console) CopyContactInfo(ec schema.EmergencyContact) error {
	text := fmt.Sprintf("Imię: %s\nEmail: %s\nMessenger: %s", ec.Name, ec.Email, ec.Messenger)
	if err := c.ui.Copy(text); err != nil {
		return fmt.Errorf("copy contact info: %w", err)
	}
	c.ui.Alert("✓ Skopiowano dane kontaktu!")
	return nil
}

// MarkPriority asks for a note and acknowledges it. Nothing is stored.
func (c *Console) MarkPriority(id int64) error {
	note, ok := c.ui.Prompt("Dodaj notatkę do tego kontaktu (priorytet):", "")
	if !ok {
		return ErrCancelled
	}
	if note == "" {
		return nil
	}
	c.logger.Info("Emergency contact prioritised", zap.Int64("id", id))
	c.ui.Alert("⚡ Oznaczono jako priorytet!\nNotatka: " + note)
	return nil
}

// NoteEmergency asks for a note and acknowledges it. Nothing is stored.
func (c *Console) NoteEmergency(id int64) error {
	note, ok := c.ui.Prompt("Dodaj notatkę dla tego kontaktu:", "")
	if !ok {
		return ErrCancelled
	}
	if note == "" {
		return nil
	}
	c.logger.Info("Emergency contact noted", zap.Int64("id", id))
	c.ui.Alert("✓ Notatka dodana: " + note)
	return nil
}

// ContactBack asks which channel to use: 1 email, 2 messenger, 3 both.
func (c *Console) ContactBack(ec schema.EmergencyContact) error {
	question := fmt.Sprintf("Jak skontaktować się z %s?\n1 - Email\n2 - Messenger\n3 - Email + Messenger", ec.Name)
	method, ok := c.ui.Prompt(question, "1")
	if !ok {
		return ErrCancelled
	}
	switch {
	case method == "1" && ec.Email != "":
		c.ui.Open("mailto:" + ec.Email)
	case method == "2" && ec.Messenger != "":
		c.ui.Alert("💬 Messenger: " + ec.Messenger)
	case method == "3" && (ec.Email != "" || ec.Messenger != ""):
		c.ui.Alert(fmt.Sprintf("Email: %s\n💬 Messenger: %s", ec.Email, ec.Messenger))
	default:
		c.ui.Alert("Brak danych kontaktu!")
	}
	return nil
}
