package api

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada-remote/internal/model"
)

func TestParseList_CheckboxAndTaskSpan(t *testing.T) {
	page := `<html><body>
<ul id="todo-list">
  <li data-id="1"><input type="checkbox"><span class="task">Buy   milk</span><button class="delete-btn" data-id="1">x</button></li>
  <li data-id="2" class="done"><input type="checkbox" checked><span class="task">Walk dog</span></li>
</ul></body></html>`

	items, err := ParseList(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, []model.Item{
		{ID: "1", Task: "Buy milk", Done: false},
		{ID: "2", Task: "Walk dog", Done: true},
	}, items)
}

func TestParseList_IDFromDeleteButton(t *testing.T) {
	// Some pages only put data-id on the delete button.
	page := `<ul id="todo-list"><li><span class="todo-text">Pay rent</span> <button class="delete-btn" data-id="abc">Delete</button></li></ul>`

	items, err := ParseList(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "abc", items[0].ID)
	assert.Equal(t, "Pay rent", items[0].Task)
}

func TestParseList_DoneClassWithoutCheckbox(t *testing.T) {
	page := `<ol id="todo-list"><li data-id="x" class="todo done"> Water plants <button>Delete</button></li></ol>`

	items, err := ParseList(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Done)
	assert.Equal(t, "Water plants", items[0].Task, "button text is not part of the task")
}

func TestParseList_CheckboxWinsOverClass(t *testing.T) {
	page := `<ul id="todo-list"><li data-id="x" class="done"><input type="checkbox"><span class="task">t</span></li></ul>`

	items, err := ParseList(strings.NewReader(page))
	require.NoError(t, err)
	assert.False(t, items[0].Done)
}

func TestParseList_SkipsPlaceholderRows(t *testing.T) {
	page := `<ul id="todo-list">
  <li class="empty">Nothing to do</li>
</ul>`

	items, err := ParseList(strings.NewReader(page))
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestParseList_OnlyDirectChildren(t *testing.T) {
	page := `<ul id="todo-list"><li data-id="a"><span class="task">outer</span><ul><li data-id="nested">inner</li></ul></li></ul>`

	items, err := ParseList(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)
}

func TestParseList_MissingList(t *testing.T) {
	_, err := ParseList(strings.NewReader(`<html><body><p>maintenance</p></body></html>`))
	assert.ErrorIs(t, err, ErrNoList)
}

func TestParseList_DecodesEntities(t *testing.T) {
	page := `<ul id="todo-list"><li data-id="e"><span class="task">Fish &amp; chips &lt;3</span></li></ul>`

	items, err := ParseList(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "Fish & chips <3", items[0].Task)
}
