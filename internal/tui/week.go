package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/daylist/internal/navigator"
	"github.com/sadopc/daylist/internal/store"
)

type weekModel struct {
	store  *store.Store
	nav    *navigator.Navigator
	width  int
	height int

	weekStart time.Weekday
	anchor    time.Time
	summaries []store.DaySummary
	err       error

	chart barchart.Model
}

func newWeekModel(s *store.Store, nav *navigator.Navigator) weekModel {
	return weekModel{
		store:     s,
		nav:       nav,
		weekStart: store.ParseWeekday(s.SettingOr(store.SettingWeekStart, "monday")),
		chart:     barchart.New(60, 12),
	}
}

func (w *weekModel) setSize(width, height int) {
	w.width = width
	w.height = height
}

type weekDataMsg struct {
	anchor    time.Time
	summaries []store.DaySummary
	err       error
}

// refresh loads the week that contains the navigator's selected day.
func (w weekModel) refresh() tea.Cmd {
	s, anchor, weekStart := w.store, w.nav.SelectedDate(), w.weekStart
	return func() tea.Msg {
		summaries, err := s.WeekSummary(anchor, weekStart)
		return weekDataMsg{anchor: anchor, summaries: summaries, err: err}
	}
}

func (w weekModel) update(msg tea.Msg) (weekModel, tea.Cmd) {
	switch msg := msg.(type) {
	case weekDataMsg:
		if !msg.anchor.Equal(w.nav.SelectedDate()) {
			return w, nil
		}
		w.anchor = msg.anchor
		w.summaries = msg.summaries
		w.err = msg.err
		w.buildChart()
		return w, nil

	case settingsChangedMsg:
		w.weekStart = store.ParseWeekday(w.store.SettingOr(store.SettingWeekStart, "monday"))
		return w, w.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.PrevDay):
			return w, w.move(-7)
		case key.Matches(msg, keys.NextDay):
			return w, w.move(7)
		case key.Matches(msg, keys.Today):
			_, _ = w.nav.Today()
			return w, w.refresh()
		}
	}
	return w, nil
}

// move shifts the shared cursor so the day view follows the week view.
func (w weekModel) move(days int) tea.Cmd {
	_, _ = w.nav.AdvanceDay(days)
	return w.refresh()
}

func (w *weekModel) buildChart() {
	chartWidth := w.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if w.height > 30 {
		chartHeight = 16
	}

	w.chart = barchart.New(chartWidth, chartHeight)

	doneStyle := lipgloss.NewStyle().Foreground(colorSuccess)
	openStyle := lipgloss.NewStyle().Foreground(colorPrimary)

	var bars []barchart.BarData
	for _, s := range w.summaries {
		values := []barchart.BarValue{
			{Name: "Done", Value: float64(s.Done), Style: doneStyle},
			{Name: "Open", Value: float64(s.Open()), Style: openStyle},
		}
		bars = append(bars, barchart.BarData{
			Label:  s.Day.Format("Mon 02"),
			Values: values,
		})
	}

	w.chart.PushAll(bars)
	w.chart.Draw()
}

func (w weekModel) view() string {
	width := w.width - 4

	header := titleStyle.Render("Week")
	if len(w.summaries) > 0 {
		from := w.summaries[0].Day
		to := w.summaries[len(w.summaries)-1].Day
		header = lipgloss.JoinHorizontal(lipgloss.Bottom,
			header, "  ", mutedStyle.Render(fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.Format("Jan 02, 2006"))),
		)
	}

	nav := mutedStyle.Render("  ←/→: week  t: this week")

	if w.err != nil {
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", errorStyle.Render("Could not load this week."), "", nav,
		))
	}

	legend := "  " + successStyle.Render("●") + " done  " + dateStyle.Render("●") + " open"

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", w.chart.View(), "", legend, "", w.renderTable(width), "", nav,
		),
	)
}

func (w weekModel) renderTable(width int) string {
	total, done := 0, 0
	for _, s := range w.summaries {
		total += s.Total
		done += s.Done
	}
	if total == 0 {
		return mutedStyle.Render("  No tasks this week")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-14s %6s %6s %6s", "Day", "Total", "Done", "Open")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", max(0, min(width-6, 36)))))

	for _, s := range w.summaries {
		line := fmt.Sprintf("  %-14s %6d %6d %6d", s.Day.Format("Mon Jan 02"), s.Total, s.Done, s.Open())
		if store.SameDay(s.Day, w.anchor, w.anchor.Location()) {
			line = selectedItemStyle.Render(line)
		}
		rows = append(rows, line)
	}
	rows = append(rows, warningStyle.Render(fmt.Sprintf("  %d of %d done", done, total)))

	return strings.Join(rows, "\n")
}
