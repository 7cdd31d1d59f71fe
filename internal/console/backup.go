package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/celerix-dev/ministranci-console/pkg/sdk"
)

const jsonContentType = "application/json"

// BackupName is the download name of a full export made on date.
func BackupName(date string) string {
	return fmt.Sprintf("ministranci_backup_%s.json", date)
}

// ExportAllData downloads the backend's full snapshot, pretty-printed.
func (c *Console) ExportAllData(ctx context.Context) error {
	doc, err := c.backend.ExportAll(ctx)
	if err != nil {
		c.alertBulkFailure(err)
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, doc, "", "  "); err != nil {
		c.alertBulkFailure(err)
		return fmt.Errorf("format backup: %w", err)
	}

	name := BackupName(c.today())
	if err := c.ui.Download(name, jsonContentType, pretty.Bytes()); err != nil {
		c.alertBulkFailure(err)
		return fmt.Errorf("download %s: %w", name, err)
	}
	c.logger.Info("Data exported", zap.String("file", name), zap.Int("bytes", pretty.Len()))
	c.ui.Alert("✓ Dane wyeksportowane!")
	return nil
}

// ImportAllData reads a backup document and sends it to the backend.
// A file that is not JSON is rejected before any request is made.
func (c *Console) ImportAllData(ctx context.Context, file io.Reader) error {
	body, err := io.ReadAll(file)
	if err != nil {
		c.ui.Alert("✗ Nieprawidłowy format pliku: " + err.Error())
		return fmt.Errorf("read import file: %w", err)
	}
	var doc json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		c.ui.Alert("✗ Nieprawidłowy format pliku: " + err.Error())
		return fmt.Errorf("parse import file: %w", err)
	}

	imported, err := c.backend.ImportAll(ctx, doc)
	if err != nil {
		c.alertBulkFailure(err)
		return err
	}
	c.logger.Info("Data imported", zap.Int("records", imported))
	c.ui.Alert(fmt.Sprintf("✓ Zaimportowano %d rekordów!", imported))
	c.ui.Reload()
	return nil
}

// DeleteAllSchedules wipes the mass schedule after an explicit confirmation.
func (c *Console) DeleteAllSchedules(ctx context.Context) error {
	if err := c.confirm("⚠️ Usunąć WSZYSTKIE msze z harmonogramu? (Nie można cofnąć!)"); err != nil {
		return err
	}
	deleted, err := c.backend.DeleteAllSchedules(ctx)
	if err != nil {
		c.alertBulkFailure(err)
		return err
	}
	c.logger.Warn("All schedules deleted", zap.Int("deleted", deleted))
	c.ui.Alert(fmt.Sprintf("✓ Usunięto %d mszy!", deleted))
	c.ui.Reload()
	return nil
}

// alertBulkFailure is the alert of the export, import and bulk delete tools.
func (c *Console) alertBulkFailure(err error) {
	var rejected *sdk.RejectedError
	if errors.As(err, &rejected) {
		c.ui.Alert("✗ Błąd: " + rejected.Message)
		return
	}
	c.ui.Alert("✗ Błąd: " + err.Error())
}
