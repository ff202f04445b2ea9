package navigator

import (
	"errors"
	"testing"
	"time"

	"github.com/sadopc/daylist/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trt = time.FixedZone("TRT", 3*60*60)

// countingFetcher records every fetch so tests can assert exactly one per move.
type countingFetcher struct {
	days []time.Time
	err  error
}

func (f *countingFetcher) FetchByDay(day time.Time) ([]store.Task, error) {
	f.days = append(f.days, day)
	if f.err != nil {
		return nil, f.err
	}
	return []store.Task{{ID: int64(len(f.days)), Detail: "t", Date: day}}, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewStartsOnToday(t *testing.T) {
	f := &countingFetcher{}
	n := newWithClock(f, trt, fixedClock(time.Date(2025, 1, 2, 15, 4, 5, 0, trt)))

	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, trt), n.SelectedDate())
	assert.True(t, n.IsToday())
	assert.Empty(t, f.days, "construction should not fetch")
}

func TestSetSelectedDateFetchesExactlyOnce(t *testing.T) {
	f := &countingFetcher{}
	n := newWithClock(f, trt, fixedClock(time.Date(2025, 1, 2, 9, 0, 0, 0, trt)))

	tasks, err := n.SetSelectedDate(time.Date(2025, 1, 10, 18, 30, 0, 0, trt))
	require.NoError(t, err)
	require.Len(t, f.days, 1)

	want := time.Date(2025, 1, 10, 0, 0, 0, 0, trt)
	assert.Equal(t, want, f.days[0])
	assert.Equal(t, want, n.SelectedDate())
	assert.Len(t, tasks, 1)
	assert.False(t, n.IsToday())
}

func TestAdvanceDay(t *testing.T) {
	f := &countingFetcher{}
	n := newWithClock(f, trt, fixedClock(time.Date(2025, 1, 31, 9, 0, 0, 0, trt)))

	_, err := n.AdvanceDay(1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, trt), n.SelectedDate())

	_, err = n.AdvanceDay(-2)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 30, 0, 0, 0, 0, trt), n.SelectedDate())

	assert.Len(t, f.days, 2, "each move fetches once")
}

func TestAdvanceDayAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	f := &countingFetcher{}
	n := newWithClock(f, ny, fixedClock(time.Date(2025, 3, 8, 12, 0, 0, 0, ny)))

	_, _ = n.AdvanceDay(1)
	_, _ = n.AdvanceDay(1)
	got := n.SelectedDate()
	assert.Equal(t, 10, got.Day())
	assert.Equal(t, 0, got.Hour(), "cursor must stay on midnight across the DST switch")
}

func TestAdvanceDayIntoMissingMidnight(t *testing.T) {
	scl, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	f := &countingFetcher{}
	n := newWithClock(f, scl, fixedClock(time.Date(2024, 9, 7, 12, 0, 0, 0, scl)))

	_, err = n.AdvanceDay(1)
	require.NoError(t, err)
	got := n.SelectedDate()
	assert.Equal(t, 8, got.Day(), "2024-09-08 has no midnight, the cursor must still land on it")
	assert.Equal(t, 1, got.Hour())

	_, _ = n.AdvanceDay(1)
	assert.Equal(t, time.Date(2024, 9, 9, 0, 0, 0, 0, scl), n.SelectedDate())
}

func TestTodayAndRefresh(t *testing.T) {
	f := &countingFetcher{}
	now := time.Date(2025, 1, 2, 9, 0, 0, 0, trt)
	n := newWithClock(f, trt, fixedClock(now))

	_, _ = n.AdvanceDay(5)
	_, err := n.Today()
	require.NoError(t, err)
	assert.True(t, n.IsToday())

	_, err = n.Refresh()
	require.NoError(t, err)
	require.Len(t, f.days, 3)
	assert.Equal(t, f.days[1], f.days[2], "refresh refetches the same day")
}

func TestLoadReturnsSelectedDay(t *testing.T) {
	f := &countingFetcher{}
	n := newWithClock(f, trt, fixedClock(time.Date(2025, 1, 2, 9, 0, 0, 0, trt)))

	_, _ = n.AdvanceDay(-1)
	day, tasks, err := n.Load()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, trt), day)
	require.Len(t, tasks, 1)
	assert.Equal(t, day, tasks[0].Date)
	assert.Len(t, f.days, 2)
}

func TestFetchErrorStillMovesCursor(t *testing.T) {
	boom := &store.PersistenceError{Op: "list tasks", Err: errors.New("disk I/O error")}
	f := &countingFetcher{err: boom}
	n := newWithClock(f, trt, fixedClock(time.Date(2025, 1, 2, 9, 0, 0, 0, trt)))

	tasks, err := n.AdvanceDay(1)
	assert.Nil(t, tasks)
	assert.ErrorIs(t, err, store.ErrPersistence)
	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, trt), n.SelectedDate())
}

func TestNilLocationDefaultsToLocal(t *testing.T) {
	n := New(&countingFetcher{}, nil)
	assert.Equal(t, time.Local, n.SelectedDate().Location())
}

// ============================================================
// Against a real store
// ============================================================

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory(store.WithLocation(trt))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMilkScenario(t *testing.T) {
	s := newStore(t)
	jan2 := time.Date(2025, 1, 2, 0, 0, 0, 0, trt)
	n := newWithClock(s, trt, fixedClock(jan2.Add(10*time.Hour)))

	a, err := s.CreateTask("Buy milk", jan2)
	require.NoError(t, err)

	tasks, err := n.SetSelectedDate(jan2)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, a.ID, tasks[0].ID)

	tasks, err = n.AdvanceDay(1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, trt), n.SelectedDate())
	assert.Empty(t, tasks)

	_, err = s.UpdateTask(a.ID, "Buy oat milk", jan2)
	require.NoError(t, err)

	tasks, err = n.SetSelectedDate(jan2)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, a.ID, tasks[0].ID)
	assert.Equal(t, "Buy oat milk", tasks[0].Detail)
}

func TestRefreshSeesMutations(t *testing.T) {
	s := newStore(t)
	day := time.Date(2025, 1, 5, 0, 0, 0, 0, trt)
	n := newWithClock(s, trt, fixedClock(day))

	b, err := s.CreateTask("B", day.Add(9*time.Hour))
	require.NoError(t, err)
	tasks, err := n.Refresh()
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	_, err = s.SetCompleted(b.ID, true)
	require.NoError(t, err)
	tasks, err = n.Refresh()
	require.NoError(t, err)
	assert.True(t, tasks[0].Completed)

	require.NoError(t, s.DeleteTask(b.ID))
	tasks, err = n.Refresh()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
