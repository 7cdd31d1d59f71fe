package console

import (
	"html/template"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/celerix-dev/ministranci-console/pkg/schema"
)

// Container IDs of the dashboard.
const (
	PenaltiesList = "penaltiesList"
	MyPenalties   = "myPenalties"
	BlockedList   = "blockedList"
	EmergencyList = "emergencyList"
	ConvList      = "convList"
	DevicesList   = "devicesList"
	ChatBox       = "chatBox"
	UserDetails   = "userDetailsContent"
)

// Container is a named region of the page whose markup the console replaces.
type Container struct {
	ID string

	mu     sync.Mutex
	html   template.HTML
	hidden bool
}

func (c *Container) Set(h template.HTML) {
	c.mu.Lock()
	c.html = h
	c.mu.Unlock()
}

func (c *Container) HTML() template.HTML {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.html
}

func (c *Container) SetHidden(hidden bool) {
	c.mu.Lock()
	c.hidden = hidden
	c.mu.Unlock()
}

func (c *Container) Hidden() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hidden
}

// Form is a submittable form of the page. Action is the backend path
// the form posts to; Name is how drivers refer to it.
type Form struct {
	Name    string
	Action  string
	Classes []string
	Values  url.Values
	// Generic forms have no dedicated operation and are posted as they are.
	Generic bool

	// Set by Bootstrap.
	Guarded bool
	Async   bool
}

func (f *Form) HasClass(class string) bool {
	return slices.Contains(f.Classes, class)
}

func (f *Form) targetsMassType() bool {
	return strings.Contains(f.Action, "update_mass_type")
}

// Dashboard form names.
const (
	FormPenalty      = "penalty"
	FormNotification = "notification"
	FormImport       = "import"
	FormUnblock      = "unblock"
	FormSchedule     = "schedule"
	FormUserFilter   = "user-filter"
	FormMassType     = "mass-type"
	FormAttendance   = "attendance"
)

// DateInput is an <input type="date"> of the page.
type DateInput struct {
	Name  string
	Value string
}

// Row is a rendered user row together with its visibility and selection.
type Row struct {
	schema.UserRow
	Visible  bool
	Selected bool
}

// Viewer identifies who the page is rendered for.
type Viewer struct {
	Username string
	Role     string
}

// Document is the console's model of the rendered page.
type Document struct {
	Viewer     Viewer
	Forms      []*Form
	DateInputs []*DateInput
	StatsGrid  bool
	UsersTable bool

	// Rows are the users table rows in display order.
	Rows []*Row

	containers map[string]*Container
}

// NewDocument creates a page with the given containers present.
func NewDocument(viewer Viewer, containerIDs ...string) *Document {
	d := &Document{Viewer: viewer, containers: make(map[string]*Container)}
	for _, id := range containerIDs {
		d.AddContainer(id)
	}
	return d
}

// NewDashboard lays out the dashboard for the viewer's role.
// Admins get every management panel, priests the manual attendance form
// and ministrants their own penalties.
func NewDashboard(viewer Viewer) *Document {
	switch viewer.Role {
	case schema.RoleAdmin:
	case schema.RolePriest:
		d := NewDocument(viewer)
		d.StatsGrid = true
		d.Forms = []*Form{
			{Name: FormAttendance, Action: "/dashboard", Generic: true},
		}
		// The attendance day is always picked by hand.
		d.DateInputs = []*DateInput{{Name: "date"}}
		return d
	default:
		d := NewDocument(viewer, MyPenalties)
		d.StatsGrid = true
		return d
	}

	d := NewDocument(viewer,
		PenaltiesList, BlockedList, EmergencyList, ConvList, DevicesList, ChatBox, UserDetails)
	d.StatsGrid = true
	d.UsersTable = true
	d.Container(ChatBox).SetHidden(true)
	d.Forms = []*Form{
		{Name: FormPenalty, Action: "/add_penalty", Classes: []string{"no-confirm"}},
		{Name: FormNotification, Action: "/send_notification", Classes: []string{"no-confirm"}},
		{Name: FormImport, Action: "/import_all_data", Classes: []string{"no-confirm"}},
		{Name: FormUnblock, Action: "/unblock_user/"},
		{Name: FormSchedule, Action: "/add_mass_schedule", Generic: true},
		{Name: FormUserFilter, Action: "/dashboard", Classes: []string{"inline-form"}},
		{Name: FormMassType, Action: "/admin/update_mass_type/"},
	}
	d.DateInputs = []*DateInput{{Name: "data"}}
	return d
}

// Container returns the container with id, or nil when the page lacks it.
func (d *Document) Container(id string) *Container {
	return d.containers[id]
}

func (d *Document) AddContainer(id string) *Container {
	c := &Container{ID: id}
	d.containers[id] = c
	return c
}

// Form returns the named form, or nil when the page lacks it.
func (d *Document) Form(name string) *Form {
	for _, f := range d.Forms {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// DateInput returns the named date input, or nil.
func (d *Document) DateInput(name string) *DateInput {
	for _, in := range d.DateInputs {
		if in.Name == name {
			return in
		}
	}
	return nil
}

// VisibleRows returns the rows currently shown, in order.
func (d *Document) VisibleRows() []*Row {
	var out []*Row
	for _, r := range d.Rows {
		if r.Visible {
			out = append(out, r)
		}
	}
	return out
}

// SetRows replaces the users table; every row starts visible.
func (d *Document) SetRows(rows []schema.UserRow) {
	d.Rows = make([]*Row, len(rows))
	for i, r := range rows {
		d.Rows[i] = &Row{UserRow: r, Visible: true}
	}
}
