package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/daylist/internal/navigator"
	"github.com/sadopc/daylist/internal/store"
)

type dayModel struct {
	store  *store.Store
	nav    *navigator.Navigator
	width  int
	height int

	day     time.Time
	tasks   []store.Task
	cursor  int
	loadErr error

	dateFormat    string
	showCompleted bool

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit", "delete", "goto"

	// Form field pointers (survive value copies)
	formDetail  *string
	formDate    *string
	formConfirm *bool

	editingID int64
}

func newDayModel(s *store.Store, nav *navigator.Navigator) dayModel {
	detail, date, confirm := "", "", false
	return dayModel{
		store:         s,
		nav:           nav,
		day:           nav.SelectedDate(),
		dateFormat:    s.SettingOr(store.SettingDateFormat, defaultDateFormat),
		showCompleted: boolSetting(s.SettingOr(store.SettingShowCompleted, "true")),
		formDetail:    &detail,
		formDate:      &date,
		formConfirm:   &confirm,
	}
}

const defaultDateFormat = "02 Jan 2006, Mon"

func (d *dayModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dayModel) Init() tea.Cmd {
	return d.refresh()
}

// refresh reloads the selected day in the background.
func (d dayModel) refresh() tea.Cmd {
	nav := d.nav
	return func() tea.Msg {
		day, tasks, err := nav.Load()
		return dayLoadedMsg{day: day, tasks: tasks, err: err}
	}
}

func (d dayModel) reloadSettings() dayModel {
	d.dateFormat = d.store.SettingOr(store.SettingDateFormat, defaultDateFormat)
	d.showCompleted = boolSetting(d.store.SettingOr(store.SettingShowCompleted, "true"))
	d.clampCursor()
	return d
}

// apply installs the result of a navigator call. On error the list is
// cleared so tasks of one day never show under another day's header.
func (d *dayModel) apply(tasks []store.Task, err error) tea.Cmd {
	d.day = d.nav.SelectedDate()
	d.loadErr = err
	if err != nil {
		d.tasks = nil
		d.cursor = 0
		return statusCmd("Load failed: "+err.Error(), true)
	}
	d.tasks = tasks
	d.clampCursor()
	return nil
}

func (d dayModel) visible() []store.Task {
	if d.showCompleted {
		return d.tasks
	}
	var out []store.Task
	for _, t := range d.tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

func (d *dayModel) clampCursor() {
	n := len(d.visible())
	if d.cursor >= n {
		d.cursor = max(0, n-1)
	}
}

func (d dayModel) selected() (store.Task, bool) {
	v := d.visible()
	if d.cursor < 0 || d.cursor >= len(v) {
		return store.Task{}, false
	}
	return v[d.cursor], true
}

func (d dayModel) update(msg tea.Msg) (dayModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case dayLoadedMsg:
		if !msg.day.Equal(d.nav.SelectedDate()) {
			return d, nil
		}
		cmd := d.apply(msg.tasks, msg.err)
		return d, cmd

	case toggleCompletedMsg:
		t, err := d.store.SetCompleted(msg.id, msg.completed)
		if err != nil {
			cmd := d.afterMutation(mutationError("Update", err))
			return d, cmd
		}
		text := "Marked open: "
		if t.Completed {
			text = "Marked done: "
		}
		cmd := d.afterMutation(statusCmd(text+truncate(t.Detail, 40), false))
		return d, cmd

	case settingsChangedMsg:
		return d.reloadSettings(), nil

	case tea.KeyMsg:
		return d.updateKeys(msg)
	}
	return d, nil
}

func (d dayModel) updateKeys(msg tea.KeyMsg) (dayModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.cursor > 0 {
			d.cursor--
		}
	case key.Matches(msg, keys.Down):
		if d.cursor < len(d.visible())-1 {
			d.cursor++
		}
	case key.Matches(msg, keys.PrevDay):
		d.cursor = 0
		cmd := d.apply(d.nav.AdvanceDay(-1))
		return d, cmd
	case key.Matches(msg, keys.NextDay):
		d.cursor = 0
		cmd := d.apply(d.nav.AdvanceDay(1))
		return d, cmd
	case key.Matches(msg, keys.Today):
		d.cursor = 0
		cmd := d.apply(d.nav.Today())
		return d, cmd
	case key.Matches(msg, keys.GotoDate):
		return d.showGotoForm()
	case key.Matches(msg, keys.New):
		return d.showTaskForm(nil)
	case key.Matches(msg, keys.Edit):
		if t, ok := d.selected(); ok {
			return d.showTaskForm(&t)
		}
	case key.Matches(msg, keys.Delete):
		if t, ok := d.selected(); ok {
			return d.showDeleteForm(t)
		}
	case key.Matches(msg, keys.Toggle):
		if t, ok := d.selected(); ok {
			ev := toggleCompletedMsg{id: t.ID, completed: !t.Completed}
			return d, func() tea.Msg { return ev }
		}
	}
	return d, nil
}

// afterMutation refetches the selected day so the list reflects the commit.
func (d *dayModel) afterMutation(status tea.Cmd) tea.Cmd {
	if cmd := d.apply(d.nav.Refresh()); cmd != nil {
		return tea.Batch(status, cmd)
	}
	return status
}

func (d dayModel) showTaskForm(t *store.Task) (dayModel, tea.Cmd) {
	d.formType = "new"
	d.editingID = 0
	*d.formDetail = ""
	*d.formDate = d.day.Format(dateInputLayout)
	if t != nil {
		d.formType = "edit"
		d.editingID = t.ID
		*d.formDetail = t.Detail
		*d.formDate = t.Date.Format(dateInputLayout)
	}

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").
				CharLimit(store.MaxDetailLength).
				Validate(validateDetail).
				Value(d.formDetail),
			huh.NewInput().Title("Date (YYYY-MM-DD)").
				Validate(d.validateDate).
				Value(d.formDate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d dayModel) showGotoForm() (dayModel, tea.Cmd) {
	d.formType = "goto"
	*d.formDate = d.day.Format(dateInputLayout)

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Go to date (YYYY-MM-DD)").
				Validate(d.validateDate).
				Value(d.formDate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d dayModel) showDeleteForm(t store.Task) (dayModel, tea.Cmd) {
	d.formType = "delete"
	d.editingID = t.ID
	*d.formConfirm = false

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", truncate(t.Detail, 40))).
				Affirmative("Delete").
				Negative("Keep").
				Value(d.formConfirm),
		),
	).WithShowHelp(true)

	d.formActive = true
	return d, d.form.Init()
}

func validateDetail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("task cannot be empty")
	}
	if utf8.RuneCountInString(s) > store.MaxDetailLength {
		return fmt.Errorf("at most %d characters", store.MaxDetailLength)
	}
	return nil
}

func (d dayModel) validateDate(s string) error {
	_, err := d.parseDate(s)
	return err
}

func (d dayModel) parseDate(s string) (time.Time, error) {
	t, err := store.ParseDay(s, d.store.Location())
	if err != nil {
		return time.Time{}, errors.New("use YYYY-MM-DD")
	}
	return t, nil
}

func (d dayModel) updateForm(msg tea.Msg) (dayModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.formActive = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	switch d.form.State {
	case huh.StateCompleted:
		d.formActive = false
		d.form = nil
		return d, d.submit()
	case huh.StateAborted:
		d.formActive = false
		d.form = nil
		return d, nil
	}

	return d, cmd
}

func (d *dayModel) submit() tea.Cmd {
	switch d.formType {
	case "goto":
		date, err := d.parseDate(*d.formDate)
		if err != nil {
			return statusCmd(err.Error(), true)
		}
		d.cursor = 0
		return d.apply(d.nav.SetSelectedDate(date))

	case "delete":
		if !*d.formConfirm {
			return nil
		}
		err := d.store.DeleteTask(d.editingID)
		if store.IsNotFound(err) {
			return d.afterMutation(statusCmd("Task was already deleted", false))
		}
		if err != nil {
			return d.afterMutation(mutationError("Delete", err))
		}
		return d.afterMutation(statusCmd("Task deleted", false))

	case "new", "edit":
		date, err := d.parseDate(*d.formDate)
		if err != nil {
			return statusCmd(err.Error(), true)
		}
		if d.formType == "new" {
			t, err := d.store.CreateTask(*d.formDetail, date)
			if err != nil {
				return d.afterMutation(mutationError("Create", err))
			}
			return d.afterMutation(savedStatus("Added", t))
		}
		t, err := d.store.UpdateTask(d.editingID, *d.formDetail, date)
		if err != nil {
			return d.afterMutation(mutationError("Update", err))
		}
		return d.afterMutation(savedStatus("Saved", t))
	}
	return nil
}

func savedStatus(verb string, t *store.Task) tea.Cmd {
	text := fmt.Sprintf("%s %q", verb, truncate(t.Detail, 40))
	if !store.SameDay(t.Date, time.Now(), t.Date.Location()) {
		text += " for " + t.Date.Format("Jan 02")
	}
	return statusCmd(text, false)
}

func mutationError(op string, err error) tea.Cmd {
	switch {
	case store.IsNotFound(err):
		return statusCmd(op+" failed: task no longer exists", true)
	case store.IsValidation(err):
		return statusCmd(op+" failed: "+err.Error(), true)
	}
	return statusCmd(op+" failed, changes were not saved", true)
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: isError}
	}
}

func (d dayModel) view() string {
	w := d.width - 4

	if d.formActive && d.form != nil {
		title := titleStyle.Render("New Task")
		switch d.formType {
		case "edit":
			title = titleStyle.Render("Edit Task")
		case "delete":
			title = titleStyle.Render("Delete Task")
		case "goto":
			title = titleStyle.Render("Go To Date")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", d.form.View())
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{d.renderDayHeader(), ""}

	switch {
	case d.loadErr != nil:
		rows = append(rows, errorStyle.Render("Could not load tasks for this day."))
	case len(d.tasks) == 0:
		rows = append(rows, mutedStyle.Render("Nothing planned. Press n to add a task."))
	default:
		rows = append(rows, d.renderTasks(w)...)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  ←/→: day  t: today  g: go to  n: new  e: edit  space: done  d: delete"))

	style := panelStyle
	if d.nav.IsToday() {
		style = activePanelStyle
	}
	return style.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dayModel) renderDayHeader() string {
	layout := d.dateFormat
	if layout == "" {
		layout = defaultDateFormat
	}
	header := dateStyle.Render(d.day.Format(layout))
	if d.nav.IsToday() {
		header += " " + todayBadgeStyle.Render("Today")
	}

	done := 0
	for _, t := range d.tasks {
		if t.Completed {
			done++
		}
	}
	if len(d.tasks) > 0 {
		header += "  " + mutedStyle.Render(fmt.Sprintf("%d/%d done", done, len(d.tasks)))
	}
	return header
}

func (d dayModel) renderTasks(w int) []string {
	visible := d.visible()
	if len(visible) == 0 {
		return []string{successStyle.Render("All done. Completed tasks are hidden.")}
	}

	var rows []string
	for i, t := range visible {
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := "○"
		if t.Completed {
			mark = successStyle.Render("●")
		}
		detail := truncate(t.Detail, w-10)
		if t.Completed {
			detail = doneItemStyle.Render(detail)
		} else {
			detail = style.Render(detail)
		}
		rows = append(rows, style.Render(cursor)+mark+" "+detail)
	}
	return rows
}
