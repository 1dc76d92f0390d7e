// Package view holds the client's rendered copy of the server list.
//
// Rows are keyed by item ID. The server decides identity and order; the
// list only carries per-row display state (new-item highlight, pending
// delete) across re-fetches.
package view

import "github.com/Makepad-fr/tada-remote/internal/model"

// Row is one rendered item.
type Row struct {
	model.Item
	New      bool // recently appended, highlighted until expired
	Deleting bool // delete sent, waiting to be removed
	// Confirmed is set once the server has deleted the item; the row only
	// lingers for the removal delay.
	Confirmed bool
}

// List is the ordered set of rendered rows. The zero value is empty and ready.
type List struct {
	rows []Row
}

// Rows returns a copy of the current rows.
func (l *List) Rows() []Row {
	out := make([]Row, len(l.rows))
	copy(out, l.rows)
	return out
}

// Items returns the items behind the rows.
func (l *List) Items() []model.Item {
	out := make([]model.Item, 0, len(l.rows))
	for _, r := range l.rows {
		out = append(out, r.Item)
	}
	return out
}

// Len returns the number of rows.
func (l *List) Len() int { return len(l.rows) }

func (l *List) index(id string) int {
	for i, r := range l.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the row with the given ID.
func (l *List) Get(id string) (Row, bool) {
	if i := l.index(id); i >= 0 {
		return l.rows[i], true
	}
	return Row{}, false
}

// Reconcile replaces the rendered list with the server's items.
// Rows whose ID survives keep their display flags and take the server's
// text and done state; new IDs are appended in server order; IDs the server
// no longer has are dropped. A confirmed-deleted row the server returns again
// (after an undo) is a live row once more. It returns the IDs that were not
// rendered before.
func (l *List) Reconcile(items []model.Item) (added []string) {
	next := make([]Row, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		if i := l.index(it.ID); i >= 0 {
			r := l.rows[i]
			r.Item = it
			if r.Confirmed {
				r.Confirmed, r.Deleting = false, false
			}
			next = append(next, r)
			continue
		}
		next = append(next, Row{Item: it})
		added = append(added, it.ID)
	}
	l.rows = next
	return added
}

// MarkLastNew flags the last row as new and returns its ID.
func (l *List) MarkLastNew() (string, bool) {
	if len(l.rows) == 0 {
		return "", false
	}
	last := &l.rows[len(l.rows)-1]
	last.New = true
	return last.ID, true
}

// ClearNew drops the highlight from a row, if it is still there.
func (l *List) ClearNew(id string) {
	if i := l.index(id); i >= 0 {
		l.rows[i].New = false
	}
}

// SetDone updates the done flag locally and returns the previous value.
func (l *List) SetDone(id string, done bool) (prev bool, ok bool) {
	i := l.index(id)
	if i < 0 {
		return false, false
	}
	prev = l.rows[i].Done
	l.rows[i].Done = done
	return prev, true
}

// SetDeleting marks or unmarks a row as pending deletion.
func (l *List) SetDeleting(id string, deleting bool) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.rows[i].Deleting = deleting
	return true
}

// ConfirmDelete records that the server deleted a pending row.
func (l *List) ConfirmDelete(id string) bool {
	i := l.index(id)
	if i < 0 || !l.rows[i].Deleting {
		return false
	}
	l.rows[i].Confirmed = true
	return true
}

// RemoveConfirmed drops a row only while its delete is still confirmed,
// so a row brought back in the meantime stays.
func (l *List) RemoveConfirmed(id string) bool {
	if r, ok := l.Get(id); !ok || !r.Confirmed {
		return false
	}
	return l.Remove(id)
}

// Remove drops a row. Removing an unknown ID is a no-op.
func (l *List) Remove(id string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.rows = append(l.rows[:i], l.rows[i+1:]...)
	return true
}

// Clear empties the list.
func (l *List) Clear() { l.rows = nil }
