package refdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-crm-panel/internal/metrics"
)

func TestGMTLabel(t *testing.T) {
	winter := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		tz, want string
	}{
		{"", ""},
		{"Invalid/Zone", InvalidTimezoneLabel},
		{"UTC", "GMT"},
		{"Asia/Dhaka", "GMT+6"},
		{"Asia/Kolkata", "GMT+5:30"},
		{"America/New_York", "GMT-5"},
		{"Asia/Kathmandu", "GMT+5:45"},
	}
	for _, tt := range tests {
		if got := GMTLabel(tt.tz, winter); got != tt.want {
			t.Errorf("GMTLabel(%q) = %q, want %q", tt.tz, got, tt.want)
		}
	}
}

func TestStaticLists(t *testing.T) {
	s := NewService(nil, nil, time.Hour, nil, nil)
	s.now = func() time.Time { return time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC) }

	langs := s.ListLanguages(context.Background())
	require.NotEmpty(t, langs)
	assert.Contains(t, langs, Language{Code: "no", Name: "norwegian"})

	zones := s.ListTimezones(context.Background())
	require.NotEmpty(t, zones)
	assert.Contains(t, zones, Timezone{Code: "Asia/Kolkata", Label: "(GMT+05:30) Asia/Kolkata"})
	assert.Contains(t, zones, Timezone{Code: "America/Chicago", Label: "(GMT-06:00) America/Chicago"})
}

func TestHTTPProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/countries":
			fmt.Fprint(w, `[{"id":19,"name":"Bangladesh"},{"id":233,"name":"United States"}]`)
		case "/countries/19/states":
			fmt.Fprint(w, `[{"id":771,"name":"Dhaka Division"}]`)
		case "/countries/19/states/771/cities":
			fmt.Fprint(w, `[{"id":8441,"name":"Dhaka"}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	p := NewHTTPProvider(srv.URL+"/", 0)
	ctx := context.Background()

	countries, err := p.Countries(ctx)
	require.NoError(t, err)
	assert.Len(t, countries, 2)

	states, err := p.States(ctx, 19)
	require.NoError(t, err)
	assert.Equal(t, []Place{{ID: 771, Name: "Dhaka Division"}}, states)

	cities, err := p.Cities(ctx, 19, 771)
	require.NoError(t, err)
	assert.Equal(t, []Place{{ID: 8441, Name: "Dhaka"}}, cities)

	_, err = p.States(ctx, 1)
	assert.Error(t, err)
}

type fakeProvider struct {
	calls  atomic.Int32
	fail   atomic.Bool
	states map[int][]Place
}

func (f *fakeProvider) Countries(context.Context) ([]Place, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return nil, errors.New("provider down")
	}
	return []Place{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}, nil
}

func (f *fakeProvider) States(_ context.Context, countryID int) ([]Place, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return nil, errors.New("provider down")
	}
	return f.states[countryID], nil
}

func (f *fakeProvider) Cities(context.Context, int, int) ([]Place, error) {
	f.calls.Add(1)
	return nil, errors.New("provider down")
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))
	return NewCache(db)
}

func TestService_CachesAndServesStaleOnFailure(t *testing.T) {
	p := &fakeProvider{}
	cache := newTestCache(t)
	m := metrics.New()
	s := NewService(p, cache, time.Hour, nil, m)
	ctx := context.Background()

	want := []Place{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	if diff := cmp.Diff(want, s.ListCountries(ctx)); diff != "" {
		t.Fatalf("first fetch mismatch (-want +got):\n%s", diff)
	}
	// fresh cache hit: provider not called again
	s.ListCountries(ctx)
	assert.Equal(t, int32(1), p.calls.Load())

	// expire the entry and break the provider: the stale copy is served
	cache.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	p.fail.Store(true)
	if diff := cmp.Diff(want, s.ListCountries(ctx)); diff != "" {
		t.Fatalf("stale fallback mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestService_EmptyListWhenNothingAvailable(t *testing.T) {
	p := &fakeProvider{}
	p.fail.Store(true)
	s := NewService(p, nil, time.Hour, nil, nil)

	assert.Empty(t, s.ListCountries(context.Background()))
	assert.Empty(t, s.ListCities(context.Background(), 1, 2))
}

func TestService_StatesAreKeyedByCountry(t *testing.T) {
	p := &fakeProvider{states: map[int][]Place{
		1: {{ID: 10, Name: "A-North"}},
		2: {{ID: 20, Name: "B-East"}, {ID: 21, Name: "B-West"}},
	}}
	s := NewService(p, newTestCache(t), time.Hour, nil, nil)
	ctx := context.Background()

	assert.Equal(t, []Place{{ID: 10, Name: "A-North"}}, s.ListStates(ctx, 1))
	assert.Len(t, s.ListStates(ctx, 2), 2)
	assert.Nil(t, s.ListStates(ctx, 0))
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestFindPlace(t *testing.T) {
	list := []Place{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	p, ok := FindPlace(list, 2)
	assert.True(t, ok)
	assert.Equal(t, "B", p.Name)
	_, ok = FindPlace(list, 3)
	assert.False(t, ok)
}

func TestFindPlaceByName(t *testing.T) {
	list := []Place{{ID: 1, Name: "Bangladesh"}, {ID: 2, Name: "United States"}}
	p, ok := FindPlaceByName(list, " united states ")
	assert.True(t, ok)
	assert.Equal(t, 2, p.ID)
	_, ok = FindPlaceByName(list, "")
	assert.False(t, ok)
}
