package console

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Status filter values.
const (
	StatusAll      = "all"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// UserFilter holds the three users table predicates. They are combined with
// AND, so changing one control keeps the others in effect.
type UserFilter struct {
	// Role: "" or "all" matches every row, anything else must equal the role.
	Role string
	// Status: "all", "active" or "inactive"; any other value matches nothing.
	Status string
	// Query is a case-insensitive username substring.
	Query string
}

// Matches reports whether row passes every predicate.
func (f UserFilter) Matches(row *Row) bool {
	if f.Role != "" && f.Role != StatusAll && row.Role != f.Role {
		return false
	}
	switch f.Status {
	case "", StatusAll:
	case StatusActive:
		if !row.Active {
			return false
		}
	case StatusInactive:
		if row.Active {
			return false
		}
	default:
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(row.Username), strings.ToLower(f.Query)) {
		return false
	}
	return true
}

// LoadUsers reads the users table from the backend and applies the
// session's filter and sort to it.
func (c *Console) LoadUsers(ctx context.Context) error {
	if !c.doc.UsersTable {
		return nil
	}
	rows, err := c.backend.UserRows(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	c.doc.SetRows(rows)
	if c.sess.Sort != "" {
		c.SortUsers(c.sess.Sort)
	}
	c.applyFilter()
	for _, r := range c.doc.Rows {
		r.Selected = c.sess.SelectAll
	}
	return nil
}

// FilterByRole shows rows of role, still honouring the other predicates.
func (c *Console) FilterByRole(role string) {
	c.sess.Filter.Role = role
	c.applyFilter()
}

// FilterByStatus shows active or inactive rows, still honouring the other
// predicates.
func (c *Console) FilterByStatus(status string) {
	c.sess.Filter.Status = status
	c.applyFilter()
}

// Search shows rows whose username contains query.
func (c *Console) Search(query string) {
	c.sess.Filter.Query = query
	c.applyFilter()
}

// applyFilter only toggles visibility; rows are never removed.
func (c *Console) applyFilter() {
	shown := 0
	for _, r := range c.doc.Rows {
		r.Visible = c.sess.Filter.Matches(r)
		if r.Visible {
			shown++
		}
	}
	c.logger.Debug("Users filtered", zap.Int("shown", shown), zap.Int("total", len(c.doc.Rows)))
}

// ToggleSelectAll flips the select-all checkbox and every row with it.
func (c *Console) ToggleSelectAll() bool {
	c.sess.SelectAll = !c.sess.SelectAll
	for _, r := range c.doc.Rows {
		r.Selected = c.sess.SelectAll
	}
	if c.sess.SelectAll {
		c.ui.Alert("✓ Zaznaczono wszystkich")
	} else {
		c.ui.Alert("✗ Odznaczono wszystkich")
	}
	return c.sess.SelectAll
}

// Sort columns of the users table.
const (
	SortUsername = "username"
	SortRole     = "role"
	SortStatus   = "status"
	SortJoined   = "joined"
)

// SortUsers orders the rows by column using Polish collation. Unknown
// columns leave the order unchanged.
func (c *Console) SortUsers(column string) {
	key := sortKey(column)
	if key == nil {
		return
	}
	c.sess.Sort = column
	col := collate.New(language.Polish)
	slices.SortStableFunc(c.doc.Rows, func(a, b *Row) int {
		return col.CompareString(key(a), key(b))
	})
}

func sortKey(column string) func(*Row) string {
	switch column {
	case SortUsername:
		return func(r *Row) string { return r.Username }
	case SortRole:
		return func(r *Row) string { return r.Role }
	case SortStatus:
		return func(r *Row) string { return statusLabel(r.Active) }
	case SortJoined:
		return func(r *Row) string { return r.Joined }
	default:
		return nil
	}
}

func statusLabel(active bool) string {
	if active {
		return "Aktywny"
	}
	return "Nieaktywny"
}
