package view

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/Makepad-fr/tada/internal/model"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestRowsMirrorRecords(t *testing.T) {
	todos := []model.Todo{
		{ID: 3, Description: "C", Status: model.Complete},
		{ID: 1, Description: "A", Status: model.Incomplete},
		{ID: 2, Description: "", Status: model.Complete},
	}
	rows := Rows(todos)

	assert.Equal(t, []Row{
		{ID: 3, Description: "C", Checked: true},
		{ID: 1, Description: "A", Checked: false},
		{ID: 2, Description: "", Checked: true},
	}, rows)
	for i, r := range rows {
		assert.Equal(t, todos[i].Status, r.Status())
	}
}

func TestRowsEmpty(t *testing.T) {
	assert.Empty(t, Rows(nil))
}

func TestSingleIncompleteRecord(t *testing.T) {
	rows := Rows([]model.Todo{{ID: 1, Description: "A", Status: model.Incomplete}})
	assert.Len(t, rows, 1)
	assert.False(t, rows[0].Checked)
	assert.Equal(t, "A", rows[0].Description)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, "  ☐ A  [x] #1", rows[0].Line(false))
}

func TestLineSelectedChecked(t *testing.T) {
	line := Row{ID: 7, Description: "ship", Checked: true}.Line(true)
	assert.Equal(t, "> ☑ ship  [x] #7", line)
}

func TestHeaderCounts(t *testing.T) {
	rows := []Row{{Checked: true}, {}, {}}
	d, p := Stats(rows)
	assert.Equal(t, 1, d)
	assert.Equal(t, 2, p)
	assert.Equal(t, "Todos   ✔ 1  • 2  Total 3", Header(rows))
}

func TestBoxFollowsChecked(t *testing.T) {
	assert.Equal(t, BoxUnchecked, Row{ID: 1}.Box())
	assert.Equal(t, BoxChecked, Row{ID: 1, Checked: true}.Box())
	assert.Contains(t, Row{ID: 1, Checked: true}.Line(false), BoxChecked)
}
