package screens

import (
	"github.com/BrandonKowalski/voyage/pkg/voyage/lifecycle"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
)

// Factory builds the component for a screen configuration. Build has the
// shape of a router.FactoryFunc.
type Factory struct {
	Deps Deps
}

func NewFactory(deps Deps) *Factory {
	return &Factory{Deps: deps}
}

// Build constructs the component for cfg on scope. A configuration that is
// not a declared variant yields screen.ErrUnhandledScreen.
func (f *Factory) Build(cfg screen.Config, scope *lifecycle.Scope) (Child, error) {
	return screen.Visit[Child](cfg, builder{deps: f.Deps.withDefaults(), scope: scope})
}

// builder maps every variant to its component.
type builder struct {
	deps  Deps
	scope *lifecycle.Scope
}

var _ screen.Visitor[Child] = builder{}

func (b builder) Onboarding(screen.Onboarding) (Child, error) {
	return newOnboarding(b.deps, b.scope), nil
}

func (b builder) Login(screen.Login) (Child, error) {
	return newLogin(b.deps, b.scope), nil
}

func (b builder) Signup(screen.Signup) (Child, error) {
	return newSignup(b.deps, b.scope), nil
}

func (b builder) Home(screen.Home) (Child, error) {
	return newHome(b.deps, b.scope), nil
}

func (b builder) CitySearch(screen.CitySearch) (Child, error) {
	return newCitySearch(b.deps, b.scope), nil
}

func (b builder) FlightSearch(screen.FlightSearch) (Child, error) {
	return newFlightSearch(b.deps, b.scope), nil
}

func (b builder) FlightDetail(c screen.FlightDetail) (Child, error) {
	return newFlightDetail(c, b.deps, b.scope), nil
}

func (b builder) Hotel(c screen.Hotel) (Child, error) {
	return newHotel(c, b.deps, b.scope), nil
}

func (b builder) TripItinerary(c screen.TripItinerary) (Child, error) {
	return newTripItinerary(c, b.deps, b.scope), nil
}

func (b builder) CityDetails(c screen.CityDetails) (Child, error) {
	return newCityDetails(c, b.deps, b.scope), nil
}

func (b builder) Profile(screen.Profile) (Child, error) {
	return newProfile(b.deps, b.scope), nil
}

func (b builder) TripConfirmation(c screen.TripConfirmation) (Child, error) {
	return newTripConfirmation(c, b.deps, b.scope), nil
}

func (b builder) State(c screen.State) (Child, error) {
	return newState(c, b.deps, b.scope), nil
}

func (b builder) CategoryDetails(c screen.CategoryDetails) (Child, error) {
	return newCategoryDetails(c, b.deps, b.scope), nil
}

func (b builder) MyTrips(c screen.MyTrips) (Child, error) {
	return newMyTrips(c, b.deps, b.scope), nil
}

func (b builder) TrainSearch(screen.TrainSearch) (Child, error) {
	return newTrainSearch(b.deps, b.scope), nil
}

func (b builder) TrainDetails(c screen.TrainDetails) (Child, error) {
	return newTrainDetails(c, b.deps, b.scope), nil
}

func (b builder) HotelForTrain(c screen.HotelForTrain) (Child, error) {
	return newHotelForTrain(c, b.deps, b.scope), nil
}
