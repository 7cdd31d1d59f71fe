package sdk

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/celerix-dev/ministranci-console/pkg/schema"
)

// joinedColumn is the zero-based index of the "joined" cell in a user row.
const joinedColumn = 4

// UserRows fetches the dashboard and reads the users table from it.
// The backend has no JSON listing for users; the table rows carry the
// data-username, data-role and data-active attributes instead.
func (c *Client) UserRows(ctx context.Context) ([]schema.UserRow, error) {
	resp, err := c.http.R().SetContext(ctx).SetHeader("Accept", "text/html").Get("/dashboard")
	if err != nil {
		return nil, fmt.Errorf("GET /dashboard: %w", err)
	}
	if resp.IsError() {
		return nil, &StatusError{Method: http.MethodGet, Path: "/dashboard", Code: resp.StatusCode()}
	}
	return ParseUserRows(resp.Body())
}

// ParseUserRows extracts every tr.user-row from an HTML document.
func ParseUserRows(page []byte) ([]schema.UserRow, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse dashboard: %w", err)
	}

	var rows []schema.UserRow
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" && hasClass(n, "user-row") {
			rows = append(rows, userRowFromNode(n))
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return rows, nil
}

func userRowFromNode(n *html.Node) schema.UserRow {
	row := schema.UserRow{
		Username: attr(n, "data-username"),
		Role:     attr(n, "data-role"),
		Active:   attr(n, "data-active") == "1",
	}
	col := 0
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || child.Data != "td" {
			continue
		}
		if col == joinedColumn {
			row.Joined = strings.TrimSpace(textContent(child))
			break
		}
		col++
	}
	return row
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
