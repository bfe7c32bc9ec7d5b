package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-crm-panel/internal/refdata"
)

func TestShell_EditRequiresSelection(t *testing.T) {
	var s Shell
	s.OpenEdit(7)
	assert.True(t, s.Editing)
	assert.Equal(t, int64(7), s.SelectedID)
	assert.Equal(t, DefaultSection, s.Section)

	require.True(t, s.SetSection(SectionBilling))
	assert.False(t, s.SetSection("bogus"))

	s.Close()
	assert.False(t, s.Editing)
	assert.Zero(t, s.SelectedID)
	assert.Equal(t, DefaultSection, s.Section, "section resets on navigation away")
	assert.False(t, s.SetSection(SectionBilling), "no section switch outside edit mode")

	s.OpenEdit(0)
	assert.False(t, s.Editing)
}

func TestShell_SelectLeavesEditMode(t *testing.T) {
	var s Shell
	s.OpenEdit(3)
	s.SetSection(SectionSettings)
	s.Select(3)
	assert.False(t, s.Editing)
	assert.Equal(t, SectionSettings, s.Section)

	s.Select(4)
	assert.Equal(t, DefaultSection, s.Section)

	s.Activate(AreaDashboard)
	assert.Zero(t, s.SelectedID)
}

func TestSelection_ToggleAllLaw(t *testing.T) {
	var s Selection
	s.Sync([]int64{3, 1, 2})

	s.ToggleAll()
	assert.ElementsMatch(t, []int64{1, 2, 3}, s.IDs)
	assert.True(t, s.AllSelected())

	s.ToggleAll()
	assert.Empty(t, s.IDs)

	s.Toggle(2)
	s.ToggleAll()
	assert.Equal(t, 3, s.Count(), "partial selection becomes full")
}

func TestSelection_Toggle(t *testing.T) {
	var s Selection
	s.Sync([]int64{1, 2})
	s.Toggle(1)
	s.Toggle(9)
	assert.Equal(t, []int64{1}, s.IDs, "ids outside the loaded set are ignored")
	s.Toggle(1)
	assert.False(t, s.Has(1))
}

func TestSelection_SyncClearsOnChangedRecordSet(t *testing.T) {
	var s Selection
	s.Sync([]int64{1, 2, 3})
	s.Toggle(2)

	s.Sync([]int64{3, 2, 1})
	assert.True(t, s.Has(2), "same set in another order keeps the selection")

	s.Sync([]int64{1, 3})
	assert.Empty(t, s.IDs)
	assert.False(t, s.AllSelected())
}

var countries = []refdata.Place{{ID: 1, Name: "Aland"}, {ID: 2, Name: "Borduria"}}

func TestGeo_CountryChangeClearsAndKeysFetch(t *testing.T) {
	var g GeoSelection
	ta, ok := g.SelectCountry(1, countries)
	require.True(t, ok)
	require.True(t, g.ApplyStates(ta, []refdata.Place{{ID: 10, Name: "North"}}))
	ts, ok := g.SelectState(10)
	require.True(t, ok)
	require.True(t, g.ApplyCities(ts, []refdata.Place{{ID: 100, Name: "Capital"}}))
	require.True(t, g.SelectCity(100))
	assert.Equal(t, "Capital", g.City)

	tb, ok := g.SelectCountry(2, countries)
	require.True(t, ok)
	assert.Equal(t, 2, tb.CountryID)
	assert.Equal(t, "Borduria", g.Country)
	assert.Zero(t, g.StateID)
	assert.Empty(t, g.State)
	assert.Zero(t, g.CityID)
	assert.Empty(t, g.City)
	assert.Nil(t, g.States)
	assert.Nil(t, g.Cities)
}

func TestGeo_StaleResponsesAreDropped(t *testing.T) {
	var g GeoSelection
	ta, _ := g.SelectCountry(1, countries)
	tb, _ := g.SelectCountry(2, countries)

	// B's states arrive first, then A's late answer
	require.True(t, g.ApplyStates(tb, []refdata.Place{{ID: 20, Name: "East"}}))
	assert.False(t, g.ApplyStates(ta, []refdata.Place{{ID: 10, Name: "North"}}))
	assert.Equal(t, []refdata.Place{{ID: 20, Name: "East"}}, g.States)

	ts, _ := g.SelectState(20)
	assert.False(t, g.ApplyStates(tb, nil), "state ticket is superseded by the state choice")
	assert.True(t, g.ApplyCities(ts, []refdata.Place{{ID: 200, Name: "Port"}}))
}

func TestGeo_SelectionMustComeFromHeldList(t *testing.T) {
	var g GeoSelection
	_, ok := g.SelectCountry(99, countries)
	assert.False(t, ok)
	_, ok = g.SelectState(10)
	assert.False(t, ok)
	assert.False(t, g.SelectCity(100))

	g.SelectCountry(1, countries)
	g.ForClient(5)
	assert.Zero(t, g.CountryID, "switching records resets the cascade")
	g.SelectCountry(1, countries)
	g.ForClient(5)
	assert.Equal(t, 1, g.CountryID)
}

func TestState_OneShotValues(t *testing.T) {
	st := New("abc")
	st.Flash(NoticeSuccess, "saved")
	st.GeneratedPassword = "Ab12Cd34"

	assert.Equal(t, &Notice{Kind: NoticeSuccess, Message: "saved"}, st.PopNotice())
	assert.Nil(t, st.PopNotice())
	assert.Equal(t, "Ab12Cd34", st.PopPassword())
	assert.Empty(t, st.PopPassword())
}

func TestMemoryStore_RoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryStore(time.Minute)
	m.now = func() time.Time { return now }

	_, err := Update(ctx, m, "s1", func(st *State) {
		st.Shell.OpenEdit(42)
		st.Selection.Sync([]int64{42})
		st.Selection.ToggleAll()
	})
	require.NoError(t, err)

	st, err := m.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), st.Shell.SelectedID)
	assert.True(t, st.Selection.Has(42))

	// mutations of a loaded state are not visible until saved
	st.Shell.Close()
	again, _ := m.Load(ctx, "s1")
	assert.True(t, again.Shell.Editing)

	now = now.Add(2 * time.Minute)
	st, err = m.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, st.Shell.SelectedID)
	assert.Equal(t, AreaDashboard, st.Shell.ActiveArea)
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	m := NewMemoryStore(time.Minute)
	m.now = func() time.Time { return now }
	require.NoError(t, m.Save(ctx, New("a")))
	require.NoError(t, m.Save(ctx, New("b")))
	require.NoError(t, m.Delete(ctx, "b"))

	now = now.Add(time.Hour)
	assert.Equal(t, 1, m.Sweep())
}

func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	store := NewRedisStore(client, time.Minute)
	id := uuid.NewString()
	defer store.Delete(ctx, id)

	st, err := store.Load(ctx, id)
	require.NoError(t, err)
	st.Geo.SelectCountry(2, countries)
	require.NoError(t, store.Save(ctx, st))

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Borduria", loaded.Geo.Country)
	assert.Equal(t, uint64(1), loaded.Geo.Seq)
}
