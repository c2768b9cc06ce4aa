// Package services declares the backend collaborators the screens call.
// Implementations live elsewhere; httpapi talks to the travel backend.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
)

var (
	// ErrUnauthenticated indicates the call needs a signed in user.
	ErrUnauthenticated = errors.New("not signed in")

	// ErrInvalidCredentials indicates the backend rejected email/password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrCancelled indicates the user dismissed a federated sign-in prompt.
	ErrCancelled = errors.New("sign-in cancelled")
)

// Auth is email/password authentication.
type Auth interface {
	SignIn(ctx context.Context, email, password string) (model.UserID, error)
	SignUp(ctx context.Context, email, password string) (model.UserID, error)
}

// Federated is a third-party identity provider.
type Federated interface {
	SignIn(ctx context.Context) (model.UserID, error)
	SignOut(ctx context.Context) error
}

// FlightQuery are the flight search parameters.
type FlightQuery struct {
	FromCity   string
	ToCity     string
	Date       time.Time
	Adults     int
	Children   int
	Infants    int
	CabinClass string // ECONOMY, PREMIUM_ECONOMY, BUSINESS or FIRST
}

type Flights interface {
	Search(ctx context.Context, q FlightQuery) ([]model.Flight, error)
}

type Hotels interface {
	InCity(ctx context.Context, city string) ([]model.Accommodation, error)
}

// Station is a railway station returned by the station lookup.
type Station struct {
	Code string `json:"station_code"`
	Name string `json:"station_name"`
}

type Trains interface {
	Stations(ctx context.Context, query string) ([]Station, error)
	Between(ctx context.Context, from, to string) ([]model.Train, error)
}

type Cities interface {
	Search(ctx context.Context, query string) ([]model.City, error)
	Details(ctx context.Context, cityID string) (model.CityInfo, error)
	InState(ctx context.Context, state string) ([]model.City, error)
}

// TripRequest is what the itinerary screen submits when a trip is booked.
type TripRequest struct {
	FlightID  string  `json:"flightId,omitempty"`
	TrainNo   string  `json:"trainNo,omitempty"`
	CityName  string  `json:"cityName"`
	HotelName string  `json:"hotelName"`
	Notes     *string `json:"notes,omitempty"`
	TotalCost float64 `json:"totalCost"`
}

type Trips interface {
	Save(ctx context.Context, user model.UserID, trip TripRequest) (string, error)
	History(ctx context.Context, user model.UserID) ([]model.Trip, error)
}

// Recommendations suggests destinations from a traveler's history.
type Recommendations interface {
	For(ctx context.Context, user model.UserID) (model.Recommendations, error)
}

// Backend bundles every collaborator a screen may need.
type Backend struct {
	Auth            Auth
	Federated       Federated
	Flights         Flights
	Hotels          Hotels
	Trains          Trains
	Cities          Cities
	Trips           Trips
	Recommendations Recommendations
}
