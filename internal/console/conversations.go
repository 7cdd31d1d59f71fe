package console

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/celerix-dev/ministranci-console/pkg/schema"
)

// ErrNoConversation is returned by actions on the current conversation when
// none is selected.
var ErrNoConversation = errors.New("no conversation selected")

func (c *Console) LoadConversations(ctx context.Context) error {
	if c.doc.Container(ConvList) == nil {
		return nil
	}
	list, err := c.backend.ListConversations(ctx)
	if err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}
	return c.fill(ConvList, "conversations", list)
}

// SelectConversation makes conv the current conversation and shows its thread.
func (c *Console) SelectConversation(ctx context.Context, conv schema.Conversation) error {
	c.sess.Conversation = &conv
	return c.LoadThread(ctx)
}

// SelectConversationByID looks the conversation up in the list and selects it.
func (c *Console) SelectConversationByID(ctx context.Context, id int64) error {
	list, err := c.backend.ListConversations(ctx)
	if err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}
	for _, conv := range list {
		if conv.ID == id {
			return c.SelectConversation(ctx, conv)
		}
	}
	return fmt.Errorf("conversation %d not found", id)
}

// LoadThread renders the current conversation into the chat box.
func (c *Console) LoadThread(ctx context.Context) error {
	conv := c.sess.Conversation
	box := c.doc.Container(ChatBox)
	if conv == nil || box == nil {
		return nil
	}
	messages, err := c.backend.ConversationThread(ctx, conv.ID)
	if err != nil {
		return fmt.Errorf("load conversation %d: %w", conv.ID, err)
	}
	if err := c.fill(ChatBox, "thread", struct {
		Conversation *schema.Conversation
		Messages     []schema.Message
	}{conv, messages}); err != nil {
		return err
	}
	box.SetHidden(false)
	return nil
}

// DeleteConversation removes the current conversation after confirmation.
// Without a current conversation it does nothing.
func (c *Console) DeleteConversation(ctx context.Context) error {
	conv := c.sess.Conversation
	if conv == nil {
		return ErrNoConversation
	}
	if err := c.confirm("Czy na pewno usunąć całą rozmowę?"); err != nil {
		return err
	}
	if err := c.backend.DeleteConversation(ctx, conv.ID); err != nil {
		c.alertFailure(err)
		return err
	}
	c.logger.Info("Conversation deleted", zap.Int64("id", conv.ID))
	c.ui.Alert("Rozmowa usunięta!")
	c.sess.Conversation = nil
	if box := c.doc.Container(ChatBox); box != nil {
		box.SetHidden(true)
		box.Set("")
	}
	return c.LoadConversations(ctx)
}

// CloseConversation closes the current conversation for new messages.
func (c *Console) CloseConversation(ctx context.Context) error {
	conv := c.sess.Conversation
	if conv == nil {
		return ErrNoConversation
	}
	if err := c.backend.CloseConversation(ctx, conv.ID); err != nil {
		c.alertFailure(err)
		return err
	}
	c.logger.Info("Conversation closed", zap.Int64("id", conv.ID))
	c.ui.Alert("✓ Rozmowa zamknięta!")
	conv.Status = schema.ConversationClosed
	if err := c.LoadThread(ctx); err != nil {
		c.logger.Warn("Thread reload failed", zap.Error(err))
	}
	return c.LoadConversations(ctx)
}
