package console

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/celerix-dev/ministranci-console/pkg/schema"
)

// LoadPenalties renders every penalty into penaltiesList.
func (c *Console) LoadPenalties(ctx context.Context) error {
	if c.doc.Container(PenaltiesList) == nil {
		return nil
	}
	list, err := c.backend.ListPenalties(ctx)
	if err != nil {
		return fmt.Errorf("load penalties: %w", err)
	}
	return c.fill(PenaltiesList, "penalties", list)
}

// LoadMyPenalties renders the viewer's own penalties. Only ministrants have any.
func (c *Console) LoadMyPenalties(ctx context.Context) error {
	if c.doc.Container(MyPenalties) == nil || c.doc.Viewer.Role != schema.RoleMinistrant {
		return nil
	}
	list, err := c.backend.UserPenalties(ctx, c.doc.Viewer.Username)
	if err != nil {
		return fmt.Errorf("load own penalties: %w", err)
	}
	return c.fill(MyPenalties, "myPenalties", list)
}

// AddPenalty submits a new penalty and refreshes the list.
func (c *Console) AddPenalty(ctx context.Context, draft schema.PenaltyDraft) error {
	if err := c.validate.Struct(draft); err != nil {
		c.ui.Alert("Wypełnij ministranta i typ kary!")
		return fmt.Errorf("invalid penalty: %w", err)
	}
	if err := c.backend.AddPenalty(ctx, draft); err != nil {
		c.alertFailure(err)
		return err
	}
	c.logger.Info("Penalty added", zap.String("ministrant", draft.Ministrant), zap.String("type", draft.Type))
	c.ui.Alert("Kara dodana!")
	return c.LoadPenalties(ctx)
}

// DeletePenalty removes a penalty after confirmation.
func (c *Console) DeletePenalty(ctx context.Context, id int64) error {
	if err := c.confirm("Usuń tę karę?"); err != nil {
		return err
	}
	if err := c.backend.DeletePenalty(ctx, id); err != nil {
		c.alertFailure(err)
		return err
	}
	c.logger.Info("Penalty deleted", zap.Int64("id", id))
	return c.LoadPenalties(ctx)
}
