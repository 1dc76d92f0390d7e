package api

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/Makepad-fr/tada-remote/internal/model"
)

// ListElementID is the id of the element holding one <li> per todo.
const ListElementID = "todo-list"

// ErrNoList is returned when a page has no #todo-list element.
var ErrNoList = errors.New("page has no #" + ListElementID + " element")

// ParseList extracts the todo items from a rendered page.
//
// Each direct <li> child of #todo-list is an item. The ID comes from the
// li's data-id or, failing that, the first descendant carrying one (the
// delete button does). Rows without any ID, like an empty-state
// placeholder, are skipped.
func ParseList(r io.Reader) ([]model.Item, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	list := findByID(doc, ListElementID)
	if list == nil {
		return nil, ErrNoList
	}

	items := []model.Item{}
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		id := getAttr(c, "data-id")
		if id == "" {
			if n := find(c, func(n *html.Node) bool { return getAttr(n, "data-id") != "" }); n != nil {
				id = getAttr(n, "data-id")
			}
		}
		if id == "" {
			continue
		}
		items = append(items, model.Item{
			ID:   id,
			Task: taskText(c),
			Done: isDone(c),
		})
	}
	return items, nil
}

func isDone(li *html.Node) bool {
	box := find(li, func(n *html.Node) bool {
		return n.Data == "input" && strings.EqualFold(getAttr(n, "type"), "checkbox")
	})
	if box != nil {
		return hasAttr(box, "checked")
	}
	return hasClass(li, "done")
}

func taskText(li *html.Node) string {
	if n := find(li, func(n *html.Node) bool {
		return hasClass(n, "task") || hasClass(n, "todo-text")
	}); n != nil {
		return collapse(textContent(n))
	}
	return collapse(textContent(li))
}

// textContent concatenates text nodes, skipping controls.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteString(" ")
			return
		case html.ElementNode:
			switch n.Data {
			case "button", "input", "script", "style", "template":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapse(s string) string { return strings.Join(strings.Fields(s), " ") }

func findByID(n *html.Node, id string) *html.Node {
	return find(n, func(n *html.Node) bool { return getAttr(n, "id") == id })
}

// find does a depth-first search below n (n itself excluded) for an element.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if got := find(c, match); got != nil {
			return got
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
