package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/daylist/internal/store"
)

var dateFormats = []string{
	defaultDateFormat,
	"Mon, Jan 2 2006",
	"2006-01-02 Monday",
	"02/01/2006",
	"01/02/2006",
}

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	weekStart     *string
	dateFormat    *string
	showCompleted *bool
}

func newSettingsModel(s *store.Store) settingsModel {
	ws, df, sc := "", "", true
	return settingsModel{
		store:         s,
		weekStart:     &ws,
		dateFormat:    &df,
		showCompleted: &sc,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.weekStart = s.store.SettingOr(store.SettingWeekStart, "monday")
	*s.dateFormat = s.store.SettingOr(store.SettingDateFormat, defaultDateFormat)
	*s.showCompleted = boolSetting(s.store.SettingOr(store.SettingShowCompleted, "true"))

	sample := time.Now()
	formatOptions := make([]huh.Option[string], 0, len(dateFormats)+1)
	known := false
	for _, f := range dateFormats {
		formatOptions = append(formatOptions, huh.NewOption(sample.Format(f), f))
		known = known || f == *s.dateFormat
	}
	if !known {
		formatOptions = append(formatOptions, huh.NewOption(sample.Format(*s.dateFormat)+" (custom)", *s.dateFormat))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
			huh.NewSelect[string]().Title("Day header format").
				Options(formatOptions...).
				Value(s.dateFormat),
			huh.NewConfirm().Title("Show completed tasks").
				Affirmative("Show").
				Negative("Hide").
				Value(s.showCompleted),
		).Title("Display"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, tea.Batch(s.refresh(), statusCmd("Settings not saved", true))
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg { return settingsChangedMsg{} })
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	show := "false"
	if *s.showCompleted {
		show = "true"
	}
	values := []store.Setting{
		{Key: store.SettingWeekStart, Value: *s.weekStart},
		{Key: store.SettingDateFormat, Value: *s.dateFormat},
		{Key: store.SettingShowCompleted, Value: show},
	}
	for _, v := range values {
		if err := s.store.SetSetting(v.Key, v.Value); err != nil {
			return err
		}
	}
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingDateFormat:
		return fmt.Sprintf("%s (%s)", time.Now().Format(v), v)
	case store.SettingShowCompleted:
		if boolSetting(v) {
			return "shown"
		}
		return "hidden"
	case store.SettingWeekStart:
		return store.ParseWeekday(v).String()
	}
	return v
}
