package console

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/celerix-dev/ministranci-console/pkg/schema"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// deviceIDPrefix is how much of a device ID the devices table shows.
const deviceIDPrefix = 12

// Views renders panel fragments. Every value is escaped by html/template.
type Views struct {
	tmpl *template.Template
}

var defaultViews = MustParseViews()

// Funcs available to panel templates.
var Funcs = template.FuncMap{
	"short":         shortDeviceID,
	"roleLabel":     schema.RoleLabel,
	"priorityClass": priorityClass,
}

// ParseViews parses the embedded panel templates.
func ParseViews() (*Views, error) {
	tmpl, err := template.New("panels").Funcs(Funcs).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse panel templates: %w", err)
	}
	return &Views{tmpl: tmpl}, nil
}

func MustParseViews() *Views {
	v, err := ParseViews()
	if err != nil {
		panic(err)
	}
	return v
}

// Render executes the named fragment.
func (v *Views) Render(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func shortDeviceID(id string) string {
	runes := []rune(id)
	if len(runes) <= deviceIDPrefix {
		return id + "..."
	}
	return string(runes[:deviceIDPrefix]) + "..."
}

func priorityClass(priority string) string {
	switch priority {
	case "Natychmiast":
		return "priority-urgent"
	case "Pilnie":
		return "priority-high"
	default:
		return "priority-normal"
	}
}

// fill renders name into the container id. A missing container is a no-op.
func (c *Console) fill(id, name string, data any) error {
	container := c.doc.Container(id)
	if container == nil {
		return nil
	}
	h, err := c.views.Render(name, data)
	if err != nil {
		return err
	}
	container.Set(h)
	return nil
}
