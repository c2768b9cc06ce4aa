package screen

import (
	"errors"
	"fmt"
)

// ErrUnhandledScreen is returned by Visit when the configuration is not one
// of the declared variants (nil, or a pointer to a variant).
var ErrUnhandledScreen = errors.New("unhandled screen")

// Visitor maps every screen variant to a T. A type implementing Visitor must
// provide a method per variant, so a new variant is a compile error in every
// implementation rather than a runtime default case.
type Visitor[T any] interface {
	Onboarding(Onboarding) (T, error)
	Login(Login) (T, error)
	Signup(Signup) (T, error)
	Home(Home) (T, error)
	CitySearch(CitySearch) (T, error)
	FlightSearch(FlightSearch) (T, error)
	FlightDetail(FlightDetail) (T, error)
	Hotel(Hotel) (T, error)
	TripItinerary(TripItinerary) (T, error)
	CityDetails(CityDetails) (T, error)
	Profile(Profile) (T, error)
	TripConfirmation(TripConfirmation) (T, error)
	State(State) (T, error)
	CategoryDetails(CategoryDetails) (T, error)
	MyTrips(MyTrips) (T, error)
	TrainSearch(TrainSearch) (T, error)
	TrainDetails(TrainDetails) (T, error)
	HotelForTrain(HotelForTrain) (T, error)
}

// Visit dispatches c to the matching Visitor method.
func Visit[T any](c Config, v Visitor[T]) (T, error) {
	switch c := c.(type) {
	case Onboarding:
		return v.Onboarding(c)
	case Login:
		return v.Login(c)
	case Signup:
		return v.Signup(c)
	case Home:
		return v.Home(c)
	case CitySearch:
		return v.CitySearch(c)
	case FlightSearch:
		return v.FlightSearch(c)
	case FlightDetail:
		return v.FlightDetail(c)
	case Hotel:
		return v.Hotel(c)
	case TripItinerary:
		return v.TripItinerary(c)
	case CityDetails:
		return v.CityDetails(c)
	case Profile:
		return v.Profile(c)
	case TripConfirmation:
		return v.TripConfirmation(c)
	case State:
		return v.State(c)
	case CategoryDetails:
		return v.CategoryDetails(c)
	case MyTrips:
		return v.MyTrips(c)
	case TrainSearch:
		return v.TrainSearch(c)
	case TrainDetails:
		return v.TrainDetails(c)
	case HotelForTrain:
		return v.HotelForTrain(c)
	}

	var zero T
	if c == nil {
		return zero, fmt.Errorf("screen: <nil>: %w", ErrUnhandledScreen)
	}
	return zero, fmt.Errorf("screen: %T: %w", c, ErrUnhandledScreen)
}
