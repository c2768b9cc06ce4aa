package app_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/BrandonKowalski/voyage/pkg/voyage/app"
	"github.com/BrandonKowalski/voyage/pkg/voyage/mainloop"
	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
	"github.com/BrandonKowalski/voyage/pkg/voyage/router"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screens"
	"github.com/BrandonKowalski/voyage/pkg/voyage/services/memory"
	"github.com/BrandonKowalski/voyage/pkg/voyage/statestore"
)

func newRoot(t *testing.T, loop *mainloop.Loop, store app.Store, initial ...screen.Config) *app.Root {
	t.Helper()
	r, err := app.New(app.Options{
		Backend:    memory.New().Services(),
		Dispatcher: loop,
		Store:      store,
		Initial:    initial,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func kinds(r *app.Root) []string {
	var out []string
	for _, c := range r.Stack().Configs() {
		out = append(out, c.Kind().String())
	}
	return out
}

func openStore(t *testing.T) *statestore.Store {
	t.Helper()
	store, err := statestore.Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNavigateToPolicy(t *testing.T) {
	flight := model.Flight{FlightNumber: "6E200", AirlineCode: "6E"}

	tests := []struct {
		name    string
		initial []screen.Config
		next    screen.Config
		want    []string
		wantErr error
	}{
		{"onboarding pushes login", []screen.Config{screen.Onboarding{}}, screen.Login{}, []string{"onboarding", "login"}, nil},
		{"login replaced by signup", []screen.Config{screen.Onboarding{}, screen.Login{}}, screen.Signup{}, []string{"onboarding", "signup"}, nil},
		{"signup replaced by login", []screen.Config{screen.Signup{}}, screen.Login{}, []string{"login"}, nil},
		{"signed in resets to home", []screen.Config{screen.Onboarding{}, screen.Signup{}}, screen.Home{}, []string{"home"}, nil},
		{"onboarding skips to home", []screen.Config{screen.Onboarding{}}, screen.Home{}, []string{"home"}, nil},
		{"sign out resets to login", []screen.Config{screen.Home{}, screen.Profile{}}, screen.Login{}, []string{"login"}, nil},
		{"search pushes", []screen.Config{screen.Home{}}, screen.CitySearch{}, []string{"home", "city_search"}, nil},
		{"home from home pushes", []screen.Config{screen.Home{}}, screen.Home{}, []string{"home", "home"}, nil},
		{"hotel with flight", []screen.Config{screen.Home{}}, screen.Hotel{SelectedFlight: flight}, []string{"home", "hotel"}, nil},
		{"hotel without flight", []screen.Config{screen.Home{}}, screen.Hotel{}, []string{"home"}, router.ErrInvalidTransition},
		{"nil config", []screen.Config{screen.Home{}}, nil, []string{"home"}, router.ErrUnhandledScreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRoot(t, mainloop.New(), nil, tt.initial...)
			err := r.NavigateTo(tt.next)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got := kinds(r); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("stack = %v, want %v", got, tt.want)
			}
			if r.Active().Kind().String() != tt.want[len(tt.want)-1] {
				t.Fatalf("active = %s", r.Active().Kind())
			}
		})
	}
}

func TestReplaceTearsDownExactlyOne(t *testing.T) {
	r := newRoot(t, mainloop.New(), nil, screen.Onboarding{}, screen.Login{})

	var lens []int
	unsubscribe := r.Subscribe(func(s app.Stack) { lens = append(lens, s.Len()) })
	defer unsubscribe()

	live := r.Live()
	if err := r.NavigateTo(screen.Signup{}); err != nil {
		t.Fatal(err)
	}
	if r.Live() != live {
		t.Fatalf("live = %d, want %d", r.Live(), live)
	}
	if want := []int{2, 2}; !reflect.DeepEqual(lens, want) {
		t.Fatalf("snapshot lengths = %v, want %v", lens, want)
	}
}

func TestBackPopsUntilRoot(t *testing.T) {
	r := newRoot(t, mainloop.New(), nil, screen.Home{}, screen.FlightSearch{})

	if !r.Back() {
		t.Fatal("Back above root returned false")
	}
	if got := kinds(r); !reflect.DeepEqual(got, []string{"home"}) {
		t.Fatalf("stack = %v", got)
	}
	if r.Back() {
		t.Fatal("Back at root returned true")
	}
	if r.CanGoBack() {
		t.Fatal("CanGoBack at root")
	}
}

func TestBackFromSubscriberReportsRoot(t *testing.T) {
	r := newRoot(t, mainloop.New(), nil, screen.Home{})

	var handled []bool
	unsubscribe := r.Subscribe(func(s app.Stack) {
		if s.Version == 1 {
			handled = append(handled, r.Back(), r.Back())
		}
	})
	defer unsubscribe()

	if err := r.NavigateTo(screen.Profile{}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(handled, []bool{true, false}) {
		t.Fatalf("Back results = %v, want [true false]", handled)
	}
	if got := kinds(r); !reflect.DeepEqual(got, []string{"home"}) {
		t.Fatalf("stack = %v", got)
	}
}

func TestBackIsOfferedToActiveComponent(t *testing.T) {
	r := newRoot(t, mainloop.New(), nil, screen.Home{}, screen.CitySearch{})

	search := r.Active().(*screens.CitySearch)
	search.Query.Set("goa")

	if !r.Back() {
		t.Fatal("Back returned false")
	}
	if r.Stack().Len() != 2 || search.Query.Get() != "" {
		t.Fatalf("len = %d, query = %q", r.Stack().Len(), search.Query.Get())
	}

	r.Back()
	if got := kinds(r); !reflect.DeepEqual(got, []string{"home"}) {
		t.Fatalf("stack = %v", got)
	}
}

func TestOpenDeepLink(t *testing.T) {
	r := newRoot(t, mainloop.New(), nil, screen.Onboarding{}, screen.Login{})

	link, err := screen.DeepLink(screen.CityDetails{CityID: "1", CityName: "Goa"})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.OpenDeepLink(link); err != nil {
		t.Fatal(err)
	}
	if got := kinds(r); !reflect.DeepEqual(got, []string{"home", "city_details"}) {
		t.Fatalf("stack = %v", got)
	}

	if err := r.OpenDeepLink("https://example.com"); !errors.Is(err, screen.ErrInvalidDeepLink) {
		t.Fatalf("err = %v, want ErrInvalidDeepLink", err)
	}

	link, _ = screen.DeepLink(screen.TripConfirmation{})
	if err := r.OpenDeepLink(link); !router.IsInvalidTransition(err) {
		t.Fatalf("err = %v, want invalid transition", err)
	}
	if got := kinds(r); !reflect.DeepEqual(got, []string{"home", "city_details"}) {
		t.Fatalf("stack changed to %v", got)
	}

	link, _ = screen.DeepLink(screen.Home{})
	if err := r.OpenDeepLink(link); err != nil {
		t.Fatal(err)
	}
	if got := kinds(r); !reflect.DeepEqual(got, []string{"home"}) {
		t.Fatalf("stack = %v", got)
	}
}

func TestSavedStackSurvivesRestart(t *testing.T) {
	store := openStore(t)
	loop := mainloop.New()

	first := newRoot(t, loop, store, screen.Home{}, screen.State{StateName: "Kerala"}, screen.CityDetails{CityID: "4", CityName: "Kochi"})
	if err := first.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := first.Stack().Configs()
	first.Close()

	second := newRoot(t, loop, store)
	got := second.Stack().Configs()
	if len(got) != len(want) {
		t.Fatalf("restored %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if !screen.Equal(got[i], want[i]) {
			t.Fatalf("entry %d = %#v, want %#v", i, got[i], want[i])
		}
	}
	if second.Stack().Version != 0 {
		t.Fatalf("restore emitted %d snapshots", second.Stack().Version)
	}
}

func TestRestoreReplacesLiveStack(t *testing.T) {
	store := openStore(t)
	loop := mainloop.New()

	r := newRoot(t, loop, store, screen.Home{}, screen.TrainSearch{})
	if err := r.Restore(context.Background()); !errors.Is(err, statestore.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := r.Save(context.Background()); err != nil {
		t.Fatal(err)
	}

	r.Back()
	if err := r.Restore(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := kinds(r); !reflect.DeepEqual(got, []string{"home", "train_search"}) {
		t.Fatalf("stack = %v", got)
	}
}

func TestSignInIsRemembered(t *testing.T) {
	store := openStore(t)
	loop := mainloop.New()
	backend := memory.New()

	id, err := backend.Services().Auth.SignUp(context.Background(), "meera@example.com", "chai1234")
	if err != nil {
		t.Fatal(err)
	}

	r, err := app.New(app.Options{Backend: backend.Services(), Dispatcher: loop, Store: store})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if got := kinds(r); !reflect.DeepEqual(got, []string{"onboarding"}) {
		t.Fatalf("fresh start = %v", got)
	}

	r.Active().(*screens.Onboarding).GetStarted()
	login := r.Active().(*screens.Login)
	login.Email.Set("meera@example.com")
	login.Password.Set("chai1234")
	login.Submit()
	r.Stack().Active().Scope().Wait()
	loop.RunPending()

	if got := kinds(r); !reflect.DeepEqual(got, []string{"home"}) {
		t.Fatalf("after sign in = %v", got)
	}
	if r.User().Get() != id {
		t.Fatalf("user = %q, want %q", r.User().Get(), id)
	}

	again := newRoot(t, loop, store)
	if got := kinds(again); !reflect.DeepEqual(got, []string{"home"}) {
		t.Fatalf("second start = %v", got)
	}
	if again.User().Get() != id {
		t.Fatalf("remembered user = %q", again.User().Get())
	}
}

func TestFlightBookingFlow(t *testing.T) {
	loop := mainloop.New()
	r := newRoot(t, loop, nil, screen.Home{})
	settle := func() {
		r.Stack().Active().Scope().Wait()
		loop.RunPending()
	}

	r.Active().(*screens.Home).OpenFlightSearch()
	search := r.Active().(*screens.FlightSearch)
	search.From.Set("Mumbai")
	search.To.Set("Goa")
	search.Submit()
	settle()

	detail := r.Active().(*screens.FlightDetail)
	detail.Select(detail.Flights[0])
	settle()

	hotel := r.Active().(*screens.Hotel)
	hotel.Select(hotel.Hotels.Get()[0])

	want := []string{"home", "flight_search", "flight_detail", "hotel", "trip_itinerary"}
	if got := kinds(r); !reflect.DeepEqual(got, want) {
		t.Fatalf("stack = %v, want %v", got, want)
	}

	// Pop back to the results: the hotel and itinerary are torn down.
	r.Back()
	r.Back()
	if got := kinds(r); !reflect.DeepEqual(got, want[:3]) {
		t.Fatalf("stack = %v", got)
	}
	if r.Live() != 3 {
		t.Fatalf("live = %d, want 3", r.Live())
	}
}

func TestTripGuard(t *testing.T) {
	fare := 723
	tests := []struct {
		name string
		next screen.Config
		ok   bool
	}{
		{"plain screen", screen.CitySearch{}, true},
		{"hotel without flight", screen.Hotel{}, false},
		{"hotel for train without coach", screen.HotelForTrain{SelectedTrain: model.Train{Number: "12952"}}, false},
		{"hotel for train", screen.HotelForTrain{SelectedTrain: model.Train{Number: "12952"}, SelectedCoach: "SL"}, true},
		{"itinerary without hotel", screen.TripItinerary{SelectedTrain: &model.Train{Number: "12952"}}, false},
		{"itinerary without transport", screen.TripItinerary{SelectedHotel: model.Accommodation{Name: "Taj"}}, false},
		{"itinerary by train", screen.TripItinerary{SelectedTrain: &model.Train{Number: "12952"}, SelectedHotel: model.Accommodation{Name: "Taj"}, Fare: &fare}, true},
		{"confirmation without destination", screen.TripConfirmation{}, false},
		{"confirmation", screen.TripConfirmation{Destination: "Goa"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := app.TripGuard(screen.Home{}, tt.next)
			if tt.ok && err != nil {
				t.Fatalf("rejected: %v", err)
			}
			if !tt.ok && !errors.Is(err, router.ErrInvalidTransition) {
				t.Fatalf("err = %v, want ErrInvalidTransition", err)
			}
		})
	}
}
