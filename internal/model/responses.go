package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Status values returned by /clear and /undo.
const (
	StatusSuccess  = "success"
	StatusNoAction = "no_action"
)

// ClearResult is the body of POST /clear.
type ClearResult struct {
	Status string `json:"status"`
}

func (r ClearResult) OK() bool { return r.Status == StatusSuccess }

// UndoResult is the body of POST /undo. Todos is only set on success, and
// some servers omit it even then.
type UndoResult struct {
	Status string     `json:"status"`
	Todos  []UndoTodo `json:"todos,omitempty"`
}

func (r UndoResult) OK() bool       { return r.Status == StatusSuccess }
func (r UndoResult) NoAction() bool { return r.Status == StatusNoAction }

// Items converts the restored list, if any.
func (r UndoResult) Items() []Item {
	if r.Todos == nil {
		return nil
	}
	out := make([]Item, 0, len(r.Todos))
	for _, t := range r.Todos {
		out = append(out, Item{ID: t.ID, Task: t.Task, Done: bool(t.Done)})
	}
	return out
}

// UndoTodo is an item as serialized in the undo payload. The server keeps
// its rows in CSV, so done may arrive as "true"/"false" instead of a bool.
type UndoTodo struct {
	ID   string    `json:"id"`
	Task string    `json:"task"`
	Done LooseBool `json:"done"`
}

// LooseBool decodes JSON booleans, "true"/"false" strings and 0/1.
type LooseBool bool

func (b *LooseBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*b = false
		return nil
	}
	v, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return fmt.Errorf("done: not a boolean: %s", data)
	}
	*b = LooseBool(v)
	return nil
}

// LastAction is the body of GET /last-action.
type LastAction struct {
	LastAction struct {
		Type *string `json:"type"`
	} `json:"last_action"`
}

// Undoable reports whether the server has an action it could revert.
func (a LastAction) Undoable() bool {
	return a.LastAction.Type != nil && strings.TrimSpace(*a.LastAction.Type) != ""
}

// Kind returns the action type, or "" when there is none.
func (a LastAction) Kind() string {
	if a.LastAction.Type == nil {
		return ""
	}
	return *a.LastAction.Type
}
