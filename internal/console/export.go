package console

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	csvContentType  = "text/csv"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	usersSheet      = "Użytkownicy"
)

// UsersHeader is the header row of user exports.
var UsersHeader = []string{"Login", "Rola", "Status", "Dołączył"}

// usersRecords returns one record per visible row.
func (c *Console) usersRecords() [][]string {
	rows := c.doc.VisibleRows()
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.Username, r.Role, statusLabel(r.Active), r.Joined})
	}
	return records
}

// UsersCSV renders the visible users as CSV.
func (c *Console) UsersCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(UsersHeader); err != nil {
		return nil, err
	}
	if err := w.WriteAll(c.usersRecords()); err != nil {
		return nil, fmt.Errorf("write users csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportUsersCSV downloads users_<date>.csv with the rows currently shown.
func (c *Console) ExportUsersCSV() error {
	body, err := c.UsersCSV()
	if err != nil {
		return err
	}
	name := fmt.Sprintf("users_%s.csv", c.today())
	if err := c.ui.Download(name, csvContentType, body); err != nil {
		return fmt.Errorf("download %s: %w", name, err)
	}
	c.logger.Info("Users exported", zap.String("file", name), zap.Int("rows", len(c.doc.VisibleRows())))
	c.ui.Alert("✓ Eksportowano użytkowników do CSV!")
	return nil
}

// UsersXLSX renders the visible users as a spreadsheet.
func (c *Console) UsersXLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), usersSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	records := append([][]string{UsersHeader}, c.usersRecords()...)
	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		row := make([]any, len(record))
		for j, v := range record {
			row[j] = v
		}
		if err := f.SetSheetRow(usersSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(usersSheet, "A1", "D1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(usersSheet, "A", "D", 20); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportUsersXLSX downloads users_<date>.xlsx with the rows currently shown.
func (c *Console) ExportUsersXLSX() error {
	body, err := c.UsersXLSX()
	if err != nil {
		return err
	}
	name := fmt.Sprintf("users_%s.xlsx", c.today())
	if err := c.ui.Download(name, xlsxContentType, body); err != nil {
		return fmt.Errorf("download %s: %w", name, err)
	}
	c.logger.Info("Users exported", zap.String("file", name), zap.Int("rows", len(c.doc.VisibleRows())))
	c.ui.Alert("✓ Eksportowano użytkowników do XLSX!")
	return nil
}
