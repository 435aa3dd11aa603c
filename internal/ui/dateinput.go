package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldYear = iota
	fieldMonth
	fieldDay
	fieldHour
	fieldMinute
	fieldCount
)

const defaultReminderHour = 9

// reminderInput edits a local date and time as five numeric fields.
type reminderInput struct {
	fields [fieldCount]textinput.Model
	focus  int
}

func newReminderInput() reminderInput {
	placeholders := [fieldCount]string{"YYYY", "MM", "DD", "hh", "mm"}
	charLimits := [fieldCount]int{4, 2, 2, 2, 2}

	var fields [fieldCount]textinput.Model
	for i := range fields {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = charLimits[i]
		ti.Width = charLimits[i] + 2
		ti.Prompt = ""
		fields[i] = ti
	}
	return reminderInput{fields: fields}
}

func (d *reminderInput) Focus() tea.Cmd {
	return d.focusField(fieldYear)
}

func (d *reminderInput) Blur() {
	for i := range d.fields {
		d.fields[i].Blur()
	}
}

func (d *reminderInput) Reset() {
	for i := range d.fields {
		d.fields[i].SetValue("")
	}
	d.focus = fieldYear
}

func (d *reminderInput) SetValue(t time.Time) {
	d.fields[fieldYear].SetValue(fmt.Sprintf("%04d", t.Year()))
	d.fields[fieldMonth].SetValue(fmt.Sprintf("%02d", int(t.Month())))
	d.fields[fieldDay].SetValue(fmt.Sprintf("%02d", t.Day()))
	d.fields[fieldHour].SetValue(fmt.Sprintf("%02d", t.Hour()))
	d.fields[fieldMinute].SetValue(fmt.Sprintf("%02d", t.Minute()))
}

func (d *reminderInput) IsEmpty() bool {
	for i := range d.fields {
		if strings.TrimSpace(d.fields[i].Value()) != "" {
			return false
		}
	}
	return true
}

// Value returns the entered time in now's location. Year and month default to
// now's, the time of day to 09:00. An empty input yields nil.
func (d *reminderInput) Value(now time.Time) (*time.Time, error) {
	if d.IsEmpty() {
		return nil, nil
	}

	get := func(i, fallback int) (int, error) {
		v := strings.TrimSpace(d.fields[i].Value())
		if v == "" {
			return fallback, nil
		}
		return strconv.Atoi(v)
	}

	if strings.TrimSpace(d.fields[fieldDay].Value()) == "" {
		return nil, errors.New("day is required")
	}
	var vals [fieldCount]int
	fallbacks := [fieldCount]int{now.Year(), int(now.Month()), 0, defaultReminderHour, 0}
	for i := range vals {
		n, err := get(i, fallbacks[i])
		if err != nil {
			return nil, fmt.Errorf("invalid reminder: %w", err)
		}
		vals[i] = n
	}

	t := time.Date(vals[fieldYear], time.Month(vals[fieldMonth]), vals[fieldDay],
		vals[fieldHour], vals[fieldMinute], 0, 0, now.Location())
	// time.Date normalizes overflow; reject it instead.
	if t.Year() != vals[fieldYear] || int(t.Month()) != vals[fieldMonth] || t.Day() != vals[fieldDay] ||
		t.Hour() != vals[fieldHour] || t.Minute() != vals[fieldMinute] {
		return nil, fmt.Errorf("invalid reminder: %04d-%02d-%02d %02d:%02d",
			vals[fieldYear], vals[fieldMonth], vals[fieldDay], vals[fieldHour], vals[fieldMinute])
	}
	return &t, nil
}

func (d *reminderInput) focusField(idx int) tea.Cmd {
	d.focus = idx
	var cmds []tea.Cmd
	for i := range d.fields {
		if i == idx {
			cmds = append(cmds, d.fields[i].Focus())
		} else {
			d.fields[i].Blur()
		}
	}
	return tea.Batch(cmds...)
}

func (d reminderInput) Update(msg tea.Msg) (reminderInput, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyRight:
			if d.focus < fieldCount-1 {
				cmd := d.focusField(d.focus + 1)
				return d, cmd
			}
			return d, nil
		case tea.KeyLeft:
			if d.focus > 0 {
				cmd := d.focusField(d.focus - 1)
				return d, cmd
			}
			return d, nil
		case tea.KeyRunes:
			for _, r := range keyMsg.Runes {
				if !unicode.IsDigit(r) {
					return d, nil
				}
			}
		}
	}

	var cmd tea.Cmd
	d.fields[d.focus], cmd = d.fields[d.focus].Update(msg)
	return d, cmd
}

func (d reminderInput) View() string {
	return d.fields[fieldYear].View() + "-" + d.fields[fieldMonth].View() + "-" + d.fields[fieldDay].View() +
		"  " + d.fields[fieldHour].View() + ":" + d.fields[fieldMinute].View()
}
