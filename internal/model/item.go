package model

// Item is a todo entry as the server renders it.
// The client never creates IDs; it only echoes what the server hands out.
type Item struct {
	ID   string `json:"id"`
	Task string `json:"task"`
	Done bool   `json:"done"`
}

// Stats counts done and pending items.
func Stats(items []Item) (done, pending int) {
	for _, it := range items {
		if it.Done {
			done++
		} else {
			pending++
		}
	}
	return
}
