package console

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	confirmSubmit  = "Czy na pewno chcesz zatwierdzić?"
	massTypeAction = "/admin/update_mass_type/"
)

// Bootstrap prepares a freshly rendered page: it wires form guards, fills
// empty date inputs, refreshes stats and loads every present panel.
func (c *Console) Bootstrap(ctx context.Context) {
	c.WireForms()
	c.PrefillDates()
	if c.doc.StatsGrid {
		c.logger.Debug("Stats refreshed")
	}
	c.logger.Debug("Advanced components initialised")
	c.LoadPanels(ctx)
}

// WireForms decides for every form whether it needs a confirmation and
// whether it is submitted in the background.
func (c *Console) WireForms() {
	for _, f := range c.doc.Forms {
		f.Guarded = !f.HasClass("no-confirm") && !f.HasClass("inline-form") && !f.targetsMassType()
		f.Async = strings.Contains(f.Action, massTypeAction)
	}
	c.formsWired = true
}

// PrefillDates sets empty date inputs to today, except the one named "date".
func (c *Console) PrefillDates() {
	today := c.today()
	for _, in := range c.doc.DateInputs {
		if in.Value == "" && in.Name != "date" {
			in.Value = today
		}
	}
}

// LoadPanels loads every panel whose container exists, concurrently.
// A failed load leaves its container as it was and is only logged.
func (c *Console) LoadPanels(ctx context.Context) {
	loaders := map[string]func(context.Context) error{
		"penalties":     c.LoadPenalties,
		"myPenalties":   c.LoadMyPenalties,
		"blocked":       c.LoadBlocked,
		"emergency":     c.LoadEmergencyContacts,
		"conversations": c.LoadConversations,
		"devices":       c.LoadDevices,
		"users":         c.LoadUsers,
	}

	var g errgroup.Group
	for name, load := range loaders {
		name, load := name, load
		g.Go(func() error {
			if err := load(ctx); err != nil {
				c.logger.Warn("Panel load failed", zap.String("panel", name), zap.Error(err))
			}
			return nil
		})
	}
	// Loaders never return an error: a failed panel is logged and the rest
	// of the page still renders.
	_ = g.Wait()
}

// Submit sends the named form through its guard. Guarded forms ask the
// generic confirmation first; declining returns ErrCancelled without any
// request. Successful submissions reload the page.
func (c *Console) Submit(ctx context.Context, name string, values url.Values) error {
	f, err := c.guard(name)
	if err != nil {
		return err
	}
	if err := c.backend.SubmitForm(ctx, f.Action, values); err != nil {
		c.alertFailure(err)
		return err
	}
	c.ui.Reload()
	return nil
}

// UpdateMassType posts a mass type form in the background and reloads the
// page once the backend has answered.
func (c *Console) UpdateMassType(ctx context.Context, id int64, values url.Values) error {
	action := massTypeAction + fmt.Sprint(id)
	if err := c.backend.SubmitForm(ctx, action, values); err != nil {
		c.logger.Error("Mass type update failed", zap.Int64("id", id), zap.Error(err))
		c.ui.Alert("Błąd!")
		return err
	}
	c.ui.Reload()
	return nil
}

// guard looks up the named form and asks the generic confirmation when the
// form is guarded.
func (c *Console) guard(name string) (*Form, error) {
	f := c.doc.Form(name)
	if f == nil {
		return nil, fmt.Errorf("form %q not on page", name)
	}
	if !c.formsWired {
		c.WireForms()
	}
	if f.Guarded {
		if err := c.confirm(confirmSubmit); err != nil {
			return nil, err
		}
	}
	return f, nil
}
