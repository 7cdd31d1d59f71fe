package console

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/celerix-dev/ministranci-console/pkg/schema"
)

// adminEvent is the event type of notifications sent from the console.
const adminEvent = "admin"

func (c *Console) LoadDevices(ctx context.Context) error {
	if c.doc.Container(DevicesList) == nil {
		return nil
	}
	list, err := c.backend.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("load devices: %w", err)
	}
	return c.fill(DevicesList, "devices", list)
}

// SendNotification broadcasts title and message to every active device.
func (c *Console) SendNotification(ctx context.Context, title, message string) error {
	n := schema.Notification{EventType: adminEvent, Title: title, Message: message}
	if err := c.validate.Struct(n); err != nil {
		c.ui.Alert("Wypełnij tytuł i wiadomość!")
		return fmt.Errorf("invalid notification: %w", err)
	}
	sent, err := c.backend.SendNotification(ctx, n)
	if err != nil {
		c.alertFailure(err)
		return err
	}
	c.logger.Info("Notification sent", zap.String("title", title), zap.Int("sent_to", sent))
	c.ui.Alert(fmt.Sprintf("✓ Wysłano do %d urządzeń!", sent))
	return c.LoadDevices(ctx)
}
