// Package screen defines the closed set of screen configurations used by the
// navigator.
//
// A configuration identifies a screen and carries its parameters. Values are
// immutable, compared structurally with Equal, and round-trip through
// Marshal/Unmarshal and DeepLink/ParseDeepLink so a back stack can be
// persisted across restarts or opened from a link.
//
// The set is sealed: only types in this package implement Config. Code that
// needs to handle every screen implements Visitor and dispatches with Visit,
// so adding a variant fails to compile until every visitor handles it.
package screen

import (
	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Kind is a type-safe identifier for a screen variant.
type Kind int

const (
	KindUnknown Kind = iota
	KindOnboarding
	KindLogin
	KindSignup
	KindHome
	KindCitySearch
	KindFlightSearch
	KindFlightDetail
	KindHotel
	KindTripItinerary
	KindCityDetails
	KindProfile
	KindTripConfirmation
	KindState
	KindCategoryDetails
	KindMyTrips
	KindTrainSearch
	KindTrainDetails
	KindHotelForTrain
)

// Kinds lists every known variant in declaration order.
var Kinds = []Kind{
	KindOnboarding,
	KindLogin,
	KindSignup,
	KindHome,
	KindCitySearch,
	KindFlightSearch,
	KindFlightDetail,
	KindHotel,
	KindTripItinerary,
	KindCityDetails,
	KindProfile,
	KindTripConfirmation,
	KindState,
	KindCategoryDetails,
	KindMyTrips,
	KindTrainSearch,
	KindTrainDetails,
	KindHotelForTrain,
}

// String returns the stable wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindOnboarding:
		return "onboarding"
	case KindLogin:
		return "login"
	case KindSignup:
		return "signup"
	case KindHome:
		return "home"
	case KindCitySearch:
		return "city_search"
	case KindFlightSearch:
		return "flight_search"
	case KindFlightDetail:
		return "flight_detail"
	case KindHotel:
		return "hotel"
	case KindTripItinerary:
		return "trip_itinerary"
	case KindCityDetails:
		return "city_details"
	case KindProfile:
		return "profile"
	case KindTripConfirmation:
		return "trip_confirmation"
	case KindState:
		return "state"
	case KindCategoryDetails:
		return "category_details"
	case KindMyTrips:
		return "my_trips"
	case KindTrainSearch:
		return "train_search"
	case KindTrainDetails:
		return "train_details"
	case KindHotelForTrain:
		return "hotel_for_train"
	default:
		return "unknown"
	}
}

// ParseKind maps a wire name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds {
		if k.String() == name {
			return k, true
		}
	}
	return KindUnknown, false
}

// Config is an immutable description of a screen and its parameters.
type Config interface {
	Kind() Kind
	sealed()
}

// Equal reports whether two configurations are structurally equal. Times
// compare by instant, ignoring location and monotonic readings, and a nil
// list equals an empty one.
func Equal(a, b Config) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

type Onboarding struct{}

type Login struct{}

type Signup struct{}

type Home struct{}

type CitySearch struct{}

type FlightSearch struct{}

type FlightDetail struct {
	Flights []model.Flight `json:"flights"`
}

type Hotel struct {
	SelectedFlight model.Flight `json:"selectedFlight"`
}

// TripItinerary is reached either from a flight + hotel or from a train +
// hotel. The transport that was not chosen is left nil.
type TripItinerary struct {
	SelectedFlight   *model.Flight       `json:"selectedFlight,omitempty"`
	SelectedTrain    *model.Train        `json:"selectedTrain,omitempty"`
	SelectedHotel    model.Accommodation `json:"selectedHotel"`
	SelectedCityName string              `json:"selectedCityName"`
	SelectedCoach    string              `json:"selectedCoach,omitempty"`
	Fare             *int                `json:"fare,omitempty"`
}

type CityDetails struct {
	CityID   string `json:"cityId"`
	CityName string `json:"cityName"`
}

type Profile struct{}

type TripConfirmation struct {
	Destination   string  `json:"destination"`
	Dates         string  `json:"dates"`
	FlightDetails string  `json:"flightDetails"`
	HotelDetails  string  `json:"hotelDetails"`
	Activities    string  `json:"activities"`
	Meals         string  `json:"meals"`
	CostBreakdown string  `json:"costBreakdown"`
	Notes         *string `json:"notes,omitempty"`
}

type State struct {
	StateName string `json:"stateName"`
}

type CategoryDetails struct {
	Title        string   `json:"categoryTitle"`
	Description  string   `json:"categoryDescription"`
	Destinations []string `json:"destinations"`
}

type MyTrips struct {
	UserID model.UserID `json:"userId"`
}

type TrainSearch struct{}

type TrainDetails struct {
	From string `json:"fromStation"`
	To   string `json:"toStation"`
}

type HotelForTrain struct {
	SelectedTrain model.Train `json:"selectedTrain"`
	SelectedCoach string      `json:"selectedCoach"`
	Fare          int         `json:"fare"`
}

func (Onboarding) Kind() Kind       { return KindOnboarding }
func (Login) Kind() Kind            { return KindLogin }
func (Signup) Kind() Kind           { return KindSignup }
func (Home) Kind() Kind             { return KindHome }
func (CitySearch) Kind() Kind       { return KindCitySearch }
func (FlightSearch) Kind() Kind     { return KindFlightSearch }
func (FlightDetail) Kind() Kind     { return KindFlightDetail }
func (Hotel) Kind() Kind            { return KindHotel }
func (TripItinerary) Kind() Kind    { return KindTripItinerary }
func (CityDetails) Kind() Kind      { return KindCityDetails }
func (Profile) Kind() Kind          { return KindProfile }
func (TripConfirmation) Kind() Kind { return KindTripConfirmation }
func (State) Kind() Kind            { return KindState }
func (CategoryDetails) Kind() Kind  { return KindCategoryDetails }
func (MyTrips) Kind() Kind          { return KindMyTrips }
func (TrainSearch) Kind() Kind      { return KindTrainSearch }
func (TrainDetails) Kind() Kind     { return KindTrainDetails }
func (HotelForTrain) Kind() Kind    { return KindHotelForTrain }

func (Onboarding) sealed()       {}
func (Login) sealed()            {}
func (Signup) sealed()           {}
func (Home) sealed()             {}
func (CitySearch) sealed()       {}
func (FlightSearch) sealed()     {}
func (FlightDetail) sealed()     {}
func (Hotel) sealed()            {}
func (TripItinerary) sealed()    {}
func (CityDetails) sealed()      {}
func (Profile) sealed()          {}
func (TripConfirmation) sealed() {}
func (State) sealed()            {}
func (CategoryDetails) sealed()  {}
func (MyTrips) sealed()          {}
func (TrainSearch) sealed()      {}
func (TrainDetails) sealed()     {}
func (HotelForTrain) sealed()    {}

// zero returns an empty value of the variant for kind k, used as the decode
// target when unmarshalling.
func zero(k Kind) (Config, bool) {
	switch k {
	case KindOnboarding:
		return &Onboarding{}, true
	case KindLogin:
		return &Login{}, true
	case KindSignup:
		return &Signup{}, true
	case KindHome:
		return &Home{}, true
	case KindCitySearch:
		return &CitySearch{}, true
	case KindFlightSearch:
		return &FlightSearch{}, true
	case KindFlightDetail:
		return &FlightDetail{}, true
	case KindHotel:
		return &Hotel{}, true
	case KindTripItinerary:
		return &TripItinerary{}, true
	case KindCityDetails:
		return &CityDetails{}, true
	case KindProfile:
		return &Profile{}, true
	case KindTripConfirmation:
		return &TripConfirmation{}, true
	case KindState:
		return &State{}, true
	case KindCategoryDetails:
		return &CategoryDetails{}, true
	case KindMyTrips:
		return &MyTrips{}, true
	case KindTrainSearch:
		return &TrainSearch{}, true
	case KindTrainDetails:
		return &TrainDetails{}, true
	case KindHotelForTrain:
		return &HotelForTrain{}, true
	default:
		return nil, false
	}
}
