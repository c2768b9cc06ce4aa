package router_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"
	"time"

	"github.com/BrandonKowalski/voyage/pkg/voyage/lifecycle"
	"github.com/BrandonKowalski/voyage/pkg/voyage/mainloop"
	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
	"github.com/BrandonKowalski/voyage/pkg/voyage/router"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
)

type child struct {
	cfg   screen.Config
	scope *lifecycle.Scope
}

type recorder struct {
	built     []screen.Kind
	destroyed []screen.Kind
	fail      map[screen.Kind]bool
}

func (r *recorder) factory(cfg screen.Config, scope *lifecycle.Scope) (*child, error) {
	if r.fail[cfg.Kind()] {
		return nil, screen.ErrUnhandledScreen
	}
	r.built = append(r.built, cfg.Kind())
	scope.OnDestroy(func() { r.destroyed = append(r.destroyed, cfg.Kind()) })
	return &child{cfg: cfg, scope: scope}, nil
}

func newNavigator(t *testing.T, r *recorder, initial ...screen.Config) *router.Navigator[*child] {
	t.Helper()
	nav, err := router.New(r.factory, router.Options{Dispatcher: mainloop.New(), Initial: initial})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(nav.Close)
	return nav
}

func kinds(snap router.Snapshot[*child]) []screen.Kind {
	out := make([]screen.Kind, snap.Len())
	for i, c := range snap.Configs() {
		out[i] = c.Kind()
	}
	return out
}

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestNewDefaultsToOnboarding(t *testing.T) {
	r := &recorder{}
	nav := newNavigator(t, r)

	if got := nav.Active().Config; !screen.Equal(got, screen.Onboarding{}) {
		t.Fatalf("active = %v", got)
	}
	if nav.Live() != 1 || nav.Snapshot().Version != 0 {
		t.Fatalf("live = %d, version = %d", nav.Live(), nav.Snapshot().Version)
	}
}

func TestPushPushPop(t *testing.T) {
	r := &recorder{}
	nav := newNavigator(t, r, screen.Login{})

	mustDo(t, nav.Push(screen.FlightSearch{}))
	mustDo(t, nav.Push(screen.FlightDetail{Flights: []model.Flight{{FlightNumber: "AI101", AirlineCode: "AI"}}}))
	if nav.Snapshot().Len() != 3 {
		t.Fatalf("len = %d, want 3", nav.Snapshot().Len())
	}

	mustDo(t, nav.Pop())

	snap := nav.Snapshot()
	if snap.Len() != 2 {
		t.Fatalf("len = %d, want 2", snap.Len())
	}
	if snap.Active().Config.Kind() != screen.KindFlightSearch {
		t.Fatalf("active = %s", snap.Active().Config.Kind())
	}
	if want := []screen.Kind{screen.KindFlightDetail}; !reflect.DeepEqual(r.destroyed, want) {
		t.Fatalf("destroyed = %v, want %v", r.destroyed, want)
	}
	if nav.Live() != 2 {
		t.Fatalf("live = %d", nav.Live())
	}
}

func TestResetTearsDownEveryEntry(t *testing.T) {
	r := &recorder{}
	nav := newNavigator(t, r, screen.Home{}, screen.CitySearch{}, screen.CityDetails{CityID: "1", CityName: "Goa"})

	mustDo(t, nav.Reset(screen.Onboarding{}))

	snap := nav.Snapshot()
	if snap.Len() != 1 || snap.Active().Config.Kind() != screen.KindOnboarding {
		t.Fatalf("stack = %v", kinds(snap))
	}
	want := []screen.Kind{screen.KindCityDetails, screen.KindCitySearch, screen.KindHome}
	if !reflect.DeepEqual(r.destroyed, want) {
		t.Fatalf("destroyed = %v, want %v", r.destroyed, want)
	}
	if nav.Live() != 1 {
		t.Fatalf("live = %d", nav.Live())
	}
}

func TestResetBuildsBeforeTearingDown(t *testing.T) {
	var events []string
	var nav *router.Navigator[*child]
	var peak int
	factory := func(cfg screen.Config, scope *lifecycle.Scope) (*child, error) {
		events = append(events, "build "+cfg.Kind().String())
		if nav != nil && nav.Live() > peak {
			peak = nav.Live()
		}
		scope.OnDestroy(func() { events = append(events, "destroy "+cfg.Kind().String()) })
		return &child{cfg: cfg, scope: scope}, nil
	}
	var err error
	nav, err = router.New(factory, router.Options{
		Dispatcher: mainloop.New(),
		Initial:    []screen.Config{screen.Home{}, screen.Profile{}},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer nav.Close()
	events = nil

	mustDo(t, nav.Reset(screen.Login{}, screen.Signup{}))

	want := []string{"build login", "build signup", "destroy profile", "destroy home"}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	// The second new child is built while both old entries and the first
	// new one are still live.
	if peak != 3 {
		t.Fatalf("peak live during reset = %d, want 3", peak)
	}
	if nav.Live() != 2 {
		t.Fatalf("live after reset = %d", nav.Live())
	}
}

func TestResetLiveCountMatchesConfigs(t *testing.T) {
	r := &recorder{}
	nav := newNavigator(t, r, screen.Profile{})

	cfgs := []screen.Config{screen.Home{}, screen.TrainSearch{}, screen.TrainDetails{From: "NDLS", To: "BCT"}}
	mustDo(t, nav.Reset(cfgs...))

	if !screen.Equal(nav.Active().Config, cfgs[len(cfgs)-1]) {
		t.Fatalf("active = %v", nav.Active().Config)
	}
	if nav.Live() != len(cfgs) {
		t.Fatalf("live = %d, want %d", nav.Live(), len(cfgs))
	}
}

func TestResetRejectsEmpty(t *testing.T) {
	nav := newNavigator(t, &recorder{}, screen.Home{})
	if err := nav.Reset(); !errors.Is(err, router.ErrEmptyReset) {
		t.Fatalf("err = %v", err)
	}
}

func TestReplaceLoginWithSignup(t *testing.T) {
	r := &recorder{}
	nav := newNavigator(t, r, screen.Onboarding{}, screen.Login{})
	r.built = nil

	var snaps []router.Snapshot[*child]
	unsubscribe := nav.Subscribe(func(s router.Snapshot[*child]) { snaps = append(snaps, s) })
	defer unsubscribe()

	mustDo(t, nav.Replace(screen.Signup{}))

	if nav.Snapshot().Len() != 2 || nav.Active().Config.Kind() != screen.KindSignup {
		t.Fatalf("stack = %v", kinds(nav.Snapshot()))
	}
	if !reflect.DeepEqual(r.built, []screen.Kind{screen.KindSignup}) {
		t.Fatalf("built = %v", r.built)
	}
	if !reflect.DeepEqual(r.destroyed, []screen.Kind{screen.KindLogin}) {
		t.Fatalf("destroyed = %v", r.destroyed)
	}
	if len(snaps) != 2 {
		t.Fatalf("snapshots = %d, want current plus one", len(snaps))
	}
	for _, s := range snaps {
		if s.Len() == 0 {
			t.Fatal("observed empty stack")
		}
	}
}

func TestPopAtRootIsNoop(t *testing.T) {
	nav := newNavigator(t, &recorder{}, screen.Home{})

	emitted := 0
	unsubscribe := nav.Subscribe(func(router.Snapshot[*child]) { emitted++ })
	defer unsubscribe()

	err := nav.Pop()
	if !router.IsEmptyStackPop(err) {
		t.Fatalf("err = %v", err)
	}
	var navErr *router.NavigationError
	if !errors.As(err, &navErr) || navErr.Op != "pop" || navErr.From != screen.KindHome {
		t.Fatalf("err = %#v", err)
	}
	if nav.CanPop() || nav.Snapshot().Len() != 1 || nav.Active().Config.Kind() != screen.KindHome {
		t.Fatalf("stack = %v", kinds(nav.Snapshot()))
	}
	if emitted != 1 {
		t.Fatalf("emitted = %d, want only the current snapshot", emitted)
	}
}

func TestGuardRejectsTransition(t *testing.T) {
	r := &recorder{}
	guard := func(active, next screen.Config) error {
		if next.Kind() == screen.KindHotel && active.Kind() != screen.KindFlightDetail {
			return errors.New("no flight selected")
		}
		return nil
	}
	nav, err := router.New(r.factory, router.Options{
		Dispatcher: mainloop.New(),
		Initial:    []screen.Config{screen.Home{}},
		Guard:      guard,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer nav.Close()

	err = nav.Push(screen.Hotel{})
	if !router.IsInvalidTransition(err) {
		t.Fatalf("err = %v", err)
	}
	var navErr *router.NavigationError
	if !errors.As(err, &navErr) || navErr.To != screen.KindHotel {
		t.Fatalf("err = %#v", err)
	}
	if nav.Snapshot().Len() != 1 || len(r.built) != 1 {
		t.Fatalf("stack = %v, built = %v", kinds(nav.Snapshot()), r.built)
	}
}

func TestFactoryFailureLeavesStackUnchanged(t *testing.T) {
	r := &recorder{fail: map[screen.Kind]bool{screen.KindProfile: true}}
	nav := newNavigator(t, r, screen.Home{}, screen.CitySearch{})
	before := nav.Snapshot()

	if err := nav.Push(screen.Profile{}); !router.IsUnhandledScreen(err) {
		t.Fatalf("push err = %v", err)
	}
	if err := nav.Replace(screen.Profile{}); !router.IsUnhandledScreen(err) {
		t.Fatalf("replace err = %v", err)
	}
	if err := nav.Reset(screen.Home{}, screen.MyTrips{UserID: "u1"}, screen.Profile{}); !router.IsUnhandledScreen(err) {
		t.Fatalf("reset err = %v", err)
	}

	after := nav.Snapshot()
	if after.Version != before.Version || !reflect.DeepEqual(kinds(after), kinds(before)) {
		t.Fatalf("stack changed: %v -> %v", kinds(before), kinds(after))
	}
	if nav.Live() != 2 {
		t.Fatalf("live = %d", nav.Live())
	}
	want := []screen.Kind{screen.KindMyTrips, screen.KindHome}
	if !reflect.DeepEqual(r.destroyed, want) {
		t.Fatalf("rolled back = %v, want %v", r.destroyed, want)
	}
}

func TestPushNilConfig(t *testing.T) {
	nav := newNavigator(t, &recorder{}, screen.Home{})
	if err := nav.Push(nil); !router.IsUnhandledScreen(err) {
		t.Fatalf("err = %v", err)
	}
}

func TestDuplicatePushesAreDistinctEntries(t *testing.T) {
	nav := newNavigator(t, &recorder{}, screen.Home{})

	cfg := screen.CityDetails{CityID: "7", CityName: "Jaipur"}
	mustDo(t, nav.Push(cfg))
	mustDo(t, nav.Push(cfg))

	snap := nav.Snapshot()
	if snap.Len() != 3 {
		t.Fatalf("len = %d", snap.Len())
	}
	a, b := snap.Entries[1], snap.Entries[2]
	if a.Key == b.Key || a.Child == b.Child || a.Scope() == b.Scope() {
		t.Fatal("duplicate push shares an entry")
	}
}

func TestRandomOperationsNeverEmptyTheStack(t *testing.T) {
	r := &recorder{}
	nav := newNavigator(t, r)
	rng := rand.New(rand.NewPCG(1, 2))

	pool := []screen.Config{
		screen.Home{}, screen.Login{}, screen.Signup{}, screen.CitySearch{},
		screen.State{StateName: "Kerala"}, screen.Profile{},
	}
	pick := func() screen.Config { return pool[rng.IntN(len(pool))] }

	lastVersion := nav.Snapshot().Version
	for i := 0; i < 500; i++ {
		switch rng.IntN(4) {
		case 0:
			_ = nav.Push(pick())
		case 1:
			_ = nav.Pop()
		case 2:
			_ = nav.Replace(pick())
		case 3:
			n := rng.IntN(3) + 1
			cfgs := make([]screen.Config, n)
			for j := range cfgs {
				cfgs[j] = pick()
			}
			_ = nav.Reset(cfgs...)
		}

		snap := nav.Snapshot()
		if snap.Len() == 0 {
			t.Fatalf("step %d: empty stack", i)
		}
		if nav.Live() != snap.Len() {
			t.Fatalf("step %d: live = %d, len = %d", i, nav.Live(), snap.Len())
		}
		if snap.Version < lastVersion {
			t.Fatalf("step %d: version went backwards", i)
		}
		lastVersion = snap.Version
	}
	if len(r.built)-len(r.destroyed) != nav.Live() {
		t.Fatalf("built %d destroyed %d live %d", len(r.built), len(r.destroyed), nav.Live())
	}
}

func TestLifecycleStatesFollowTheTail(t *testing.T) {
	nav := newNavigator(t, &recorder{}, screen.Home{})
	home := nav.Active().Child

	if home.scope.State() != lifecycle.StateResumed {
		t.Fatalf("home = %s", home.scope.State())
	}

	mustDo(t, nav.Push(screen.Profile{}))
	profile := nav.Active().Child
	if home.scope.State() != lifecycle.StatePaused || profile.scope.State() != lifecycle.StateResumed {
		t.Fatalf("home = %s, profile = %s", home.scope.State(), profile.scope.State())
	}

	mustDo(t, nav.Pop())
	if home.scope.State() != lifecycle.StateResumed || profile.scope.State() != lifecycle.StateDestroyed {
		t.Fatalf("home = %s, profile = %s", home.scope.State(), profile.scope.State())
	}
}

func TestPopCancelsOutstandingTasks(t *testing.T) {
	loop := mainloop.New()
	r := &recorder{}
	nav, err := router.New(r.factory, router.Options{Dispatcher: loop, Initial: []screen.Config{screen.Home{}}})
	if err != nil {
		t.Fatal(err)
	}
	defer nav.Close()

	mustDo(t, nav.Push(screen.CitySearch{}))
	scope := nav.Active().Scope()

	started := make(chan struct{})
	applied := false
	lifecycle.Go(scope, func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	}, func(int, error) { applied = true })
	<-started

	mustDo(t, nav.Pop())
	scope.Wait()
	loop.RunPending()

	if applied {
		t.Fatal("result applied after pop")
	}
	if scope.Context().Err() == nil {
		t.Fatal("scope context not cancelled")
	}
}

func TestMutationDuringNotificationIsQueued(t *testing.T) {
	nav := newNavigator(t, &recorder{}, screen.Onboarding{})

	var seen [][]screen.Kind
	var versions []uint64
	unsubscribe := nav.Subscribe(func(s router.Snapshot[*child]) {
		seen = append(seen, kinds(s))
		versions = append(versions, s.Version)
		if s.Active().Config.Kind() == screen.KindLogin {
			if err := nav.Replace(screen.Signup{}); err != nil {
				t.Errorf("queued replace: %v", err)
			}
		}
	})
	defer unsubscribe()

	mustDo(t, nav.Push(screen.Login{}))

	want := [][]screen.Kind{
		{screen.KindOnboarding},
		{screen.KindOnboarding, screen.KindLogin},
		{screen.KindOnboarding, screen.KindSignup},
	}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	if !reflect.DeepEqual(versions, []uint64{0, 1, 2}) {
		t.Fatalf("versions = %v", versions)
	}
}

func TestMutationDuringNotificationReportsErrors(t *testing.T) {
	r := &recorder{}
	guard := func(_, next screen.Config) error {
		if next.Kind() == screen.KindHotel {
			return errors.New("no flight selected")
		}
		return nil
	}
	nav, err := router.New(r.factory, router.Options{
		Dispatcher: mainloop.New(),
		Initial:    []screen.Config{screen.Home{}},
		Guard:      guard,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer nav.Close()

	var pushErr, firstPop, secondPop error
	var versions []uint64
	unsubscribe := nav.Subscribe(func(s router.Snapshot[*child]) {
		versions = append(versions, s.Version)
		if s.Version != 1 {
			return
		}
		pushErr = nav.Push(screen.Hotel{})
		firstPop = nav.Pop()
		secondPop = nav.Pop()
	})
	defer unsubscribe()

	mustDo(t, nav.Push(screen.CitySearch{}))

	if !router.IsInvalidTransition(pushErr) {
		t.Errorf("guarded push during notification: err = %v, want ErrInvalidTransition", pushErr)
	}
	if firstPop != nil {
		t.Errorf("first pop: %v", firstPop)
	}
	if !router.IsEmptyStackPop(secondPop) {
		t.Errorf("pop at root during notification: err = %v, want ErrEmptyStackPop", secondPop)
	}
	if got := kinds(nav.Snapshot()); !reflect.DeepEqual(got, []screen.Kind{screen.KindHome}) {
		t.Fatalf("stack = %v", got)
	}
	if !reflect.DeepEqual(versions, []uint64{0, 1, 2}) {
		t.Fatalf("versions = %v, want one snapshot per applied mutation", versions)
	}
}

func TestObserveYieldsEveryMutationInOrder(t *testing.T) {
	nav := newNavigator(t, &recorder{}, screen.Home{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan struct{})
	got := make(chan []uint64, 1)
	go func() {
		var versions []uint64
		for snap := range nav.Observe(ctx) {
			versions = append(versions, snap.Version)
			if len(versions) == 1 {
				close(ready)
			}
			if len(versions) == 4 {
				break
			}
		}
		got <- versions
	}()
	<-ready

	mustDo(t, nav.Push(screen.CitySearch{}))
	_ = nav.Pop()
	_ = nav.Pop()
	mustDo(t, nav.Push(screen.Profile{}))
	mustDo(t, nav.Replace(screen.MyTrips{UserID: "u1"}))

	select {
	case versions := <-got:
		if !reflect.DeepEqual(versions, []uint64{0, 1, 2, 3}) {
			t.Fatalf("versions = %v", versions)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("observer did not finish")
	}
}

func TestObserveStopsOnCancel(t *testing.T) {
	nav := newNavigator(t, &recorder{}, screen.Home{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan int)
	go func() {
		n := 0
		for range nav.Observe(ctx) {
			n++
			if n == 1 {
				cancel()
			}
		}
		done <- n
	}()

	select {
	case n := <-done:
		if n != 1 {
			t.Fatalf("yielded %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sequence did not end")
	}
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	fare := 1234
	flight := model.Flight{FlightNumber: "6E201", AirlineCode: "6E", Price: 4999, Currency: "INR"}
	stack := []screen.Config{
		screen.Home{},
		screen.FlightSearch{},
		screen.Hotel{SelectedFlight: flight},
		screen.TripItinerary{
			SelectedFlight:   &flight,
			SelectedHotel:    model.Accommodation{ID: "h1", Name: "Sea View", Amenities: []string{"wifi"}},
			SelectedCityName: "Goa",
			Fare:             &fare,
		},
	}
	nav := newNavigator(t, &recorder{}, stack...)

	saved, err := nav.SaveState()
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(saved)
	if err != nil {
		t.Fatal(err)
	}
	var loaded router.SavedState
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatal(err)
	}

	r := &recorder{}
	restored, err := router.Restore(r.factory, loaded, router.Options{Dispatcher: mainloop.New()})
	if err != nil {
		t.Fatal(err)
	}
	defer restored.Close()

	got := restored.Snapshot().Configs()
	if len(got) != len(stack) {
		t.Fatalf("len = %d, want %d", len(got), len(stack))
	}
	for i := range stack {
		if !screen.Equal(got[i], stack[i]) {
			t.Fatalf("entry %d: got %#v, want %#v", i, got[i], stack[i])
		}
	}
	if restored.Snapshot().Len()-1 != saved.Active {
		t.Fatalf("active index = %d, want %d", restored.Snapshot().Len()-1, saved.Active)
	}
	want := []screen.Kind{screen.KindHome, screen.KindFlightSearch, screen.KindHotel, screen.KindTripItinerary}
	if !reflect.DeepEqual(r.built, want) {
		t.Fatalf("built = %v, want head to tail %v", r.built, want)
	}
}

func TestRestoreDiscardsEntriesAboveActive(t *testing.T) {
	nav := newNavigator(t, &recorder{}, screen.Home{}, screen.CitySearch{}, screen.State{StateName: "Goa"})
	saved, err := nav.SaveState()
	if err != nil {
		t.Fatal(err)
	}
	saved.Active = 1

	mustDo(t, nav.RestoreState(saved))

	if got := kinds(nav.Snapshot()); !reflect.DeepEqual(got, []screen.Kind{screen.KindHome, screen.KindCitySearch}) {
		t.Fatalf("stack = %v", got)
	}
	if nav.Live() != 2 {
		t.Fatalf("live = %d", nav.Live())
	}
}

func TestRestoreRejectsBadState(t *testing.T) {
	r := &recorder{}
	opts := router.Options{Dispatcher: mainloop.New()}

	if _, err := router.Restore(r.factory, router.SavedState{}, opts); err == nil {
		t.Fatal("empty state restored")
	}
	bad := router.SavedState{Configs: []json.RawMessage{json.RawMessage(`{"type":"nowhere"}`)}}
	if _, err := router.Restore(r.factory, bad, opts); !errors.Is(err, screen.ErrUnknownScreen) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewRequiresDispatcher(t *testing.T) {
	if _, err := router.New((&recorder{}).factory, router.Options{}); err == nil {
		t.Fatal("expected error")
	}
}
