// Package view turns a list of records into rows. It holds no state and
// performs no calls; the controller decides when to fetch.
package view

import (
	"fmt"

	"github.com/Makepad-fr/tada/internal/model"
)

// Row is one rendered list entry: a labeled checkbox plus a delete control,
// both bound to ID.
type Row struct {
	ID          int64
	Description string
	Checked     bool
}

// Rows maps records one-to-one, keeping their order.
func Rows(todos []model.Todo) []Row {
	rows := make([]Row, 0, len(todos))
	for _, t := range todos {
		rows = append(rows, Row{
			ID:          t.ID,
			Description: t.Description,
			Checked:     t.Status == model.Complete,
		})
	}
	return rows
}

// Status is the record status the checkbox currently shows.
func (r Row) Status() model.Status { return model.StatusFromChecked(r.Checked) }

// Box is the bare checkbox glyph.
func (r Row) Box() string {
	if r.Checked {
		return BoxChecked
	}
	return BoxUnchecked
}

// Line renders the row on one terminal line.
func (r Row) Line(selected bool) string {
	box := MutedStyle.Render(r.Box())
	text := r.Description
	if r.Checked {
		box = SuccessStyle.Render(r.Box())
		text = DoneStyle.Render(text)
	}
	prefix := "  "
	if selected {
		prefix = SelectedStyle.Render(">") + " "
	}
	return fmt.Sprintf("%s%s %s  %s", prefix, box, text, MutedStyle.Render(fmt.Sprintf("[x] #%d", r.ID)))
}

// Stats counts checked and unchecked rows.
func Stats(rows []Row) (done, pending int) {
	for _, r := range rows {
		if r.Checked {
			done++
		} else {
			pending++
		}
	}
	return
}

// Header is the title line with live counts.
func Header(rows []Row) string {
	d, p := Stats(rows)
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		TitleStyle.Render("Todos"),
		SuccessStyle.Render("✔"), d,
		PendingStyle.Render("•"), p,
		AccentStyle.Render("Total"), len(rows),
	)
}
