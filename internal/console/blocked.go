package console

import (
	"context"
	"fmt"
)

func (c *Console) LoadBlocked(ctx context.Context) error {
	if c.doc.Container(BlockedList) == nil {
		return nil
	}
	list, err := c.backend.ListBlocked(ctx)
	if err != nil {
		return fmt.Errorf("load blocked users: %w", err)
	}
	return c.fill(BlockedList, "blocked", list)
}

// Unblock is a plain form submit: it goes through the generic confirmation
// and reloads the whole page afterwards.
func (c *Console) Unblock(ctx context.Context, username string) error {
	if _, err := c.guard(FormUnblock); err != nil {
		return err
	}
	if err := c.backend.Unblock(ctx, username); err != nil {
		c.alertFailure(err)
		return err
	}
	c.logger.Info("User unblocked", zapUser(username))
	c.ui.Reload()
	return nil
}
