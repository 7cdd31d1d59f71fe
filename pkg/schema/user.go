// Package schema defines the records exchanged with the ministranci backend.
// All of them are owned by the backend; the console only ever holds snapshots.
package schema

// Roles known to the backend.
const (
	RoleAdmin      = "admin"
	RoleMinistrant = "ministrant"
	RolePriest     = "ksiez"
)

// UserRow is one row of the dashboard users table.
// The backend renders it with data-username, data-role and data-active
// attributes; Joined is the text of the "joined" cell.
type UserRow struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
	Joined   string `json:"joined"`
}

// UserInfo is the payload of /get_user_info/{username}.
type UserInfo struct {
	Username        string `json:"username"`
	Role            string `json:"role"`
	Status          string `json:"status"`
	CreatedDate     string `json:"created_date"`
	LastLoginDate   string `json:"last_login_date"`
	AttendanceCount int    `json:"attendance_count"`
	MonthlyPoints   int    `json:"monthly_points"`
	PenaltyCount    int    `json:"penalty_count"`
}

// RoleLabel returns the display label used in the user details modal.
func RoleLabel(role string) string {
	switch role {
	case RoleMinistrant:
		return "👥 Ministrant"
	case RolePriest:
		return "⛪ Ksiądz"
	default:
		return "🔑 Admin"
	}
}
