package screens

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BrandonKowalski/voyage/pkg/voyage/lifecycle"
	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
	"github.com/BrandonKowalski/voyage/pkg/voyage/services"
	"github.com/BrandonKowalski/voyage/pkg/voyage/value"
)

// TripItinerary summarizes the chosen transport and hotel and books the
// trip on confirmation.
type TripItinerary struct {
	base
	Config screen.TripItinerary
	Notes  *value.Value[string]
}

func newTripItinerary(cfg screen.TripItinerary, deps Deps, scope *lifecycle.Scope) *TripItinerary {
	return &TripItinerary{
		base:   newBase(screen.KindTripItinerary, deps, scope),
		Config: cfg,
		Notes:  value.New(""),
	}
}

// TransportCost is the flight price or the train fare, whichever was chosen.
func (t *TripItinerary) TransportCost() float64 {
	switch {
	case t.Config.SelectedFlight != nil:
		return t.Config.SelectedFlight.Price
	case t.Config.Fare != nil:
		return float64(*t.Config.Fare)
	}
	return 0
}

// TotalCost is transport plus one night at the hotel.
func (t *TripItinerary) TotalCost() float64 {
	return t.TransportCost() + t.Config.SelectedHotel.PricePerNight
}

func (t *TripItinerary) transport() string {
	switch {
	case t.Config.SelectedFlight != nil:
		f := t.Config.SelectedFlight
		return fmt.Sprintf("%s %s, departs %s", f.AirlineCode, f.FlightNumber, f.Departure.Time.Format("Jan 2 15:04"))
	case t.Config.SelectedTrain != nil:
		tr := t.Config.SelectedTrain
		return fmt.Sprintf("%s %s (%s), departs %s", tr.Number, tr.Name, t.Config.SelectedCoach, tr.DepartureTime)
	}
	return ""
}

// dates spans arrival to checkout at 11:00 the following day. Trains carry
// no date, so the trip is assumed to start today.
func (t *TripItinerary) dates() string {
	start := t.deps.Now()
	if f := t.Config.SelectedFlight; f != nil && !f.Arrival.Time.IsZero() {
		start = f.Arrival.Time
	}
	next := start.AddDate(0, 0, 1)
	checkout := time.Date(next.Year(), next.Month(), next.Day(), 11, 0, 0, 0, start.Location())
	return fmt.Sprintf("%s to %s", start.Format(time.DateOnly), checkout.Format(time.DateOnly))
}

func (t *TripItinerary) request() services.TripRequest {
	req := services.TripRequest{
		CityName:  t.Config.SelectedCityName,
		HotelName: t.Config.SelectedHotel.Name,
		TotalCost: t.TotalCost(),
	}
	if f := t.Config.SelectedFlight; f != nil {
		req.FlightID = f.AirlineCode + "-" + f.FlightNumber
	}
	if tr := t.Config.SelectedTrain; tr != nil {
		req.TrainNo = tr.Number
	}
	if notes := strings.TrimSpace(t.Notes.Get()); notes != "" {
		req.Notes = &notes
	}
	return req
}

// Confirmation builds the summary shown once the trip is booked.
func (t *TripItinerary) Confirmation() screen.TripConfirmation {
	hotel := t.Config.SelectedHotel
	c := screen.TripConfirmation{
		Destination:   t.Config.SelectedCityName,
		Dates:         t.dates(),
		FlightDetails: t.transport(),
		HotelDetails:  fmt.Sprintf("%s, %.0f %s per night", hotel.Name, hotel.PricePerNight, hotel.Currency),
		CostBreakdown: fmt.Sprintf("Transport: ₹%.0f, Hotel: ₹%.0f/night, Total: ₹%.0f", t.TransportCost(), hotel.PricePerNight, t.TotalCost()),
	}
	if notes := strings.TrimSpace(t.Notes.Get()); notes != "" {
		c.Notes = &notes
	}
	return c
}

// Confirm saves the trip for the signed in user and shows the confirmation.
func (t *TripItinerary) Confirm() {
	user := t.deps.Session.User()
	req := t.request()
	summary := t.Confirmation()
	load(&t.base, "save_trip", func(ctx context.Context) (string, error) {
		return t.deps.Backend.Trips.Save(ctx, user, req)
	}, func(string) {
		t.navigate(summary)
	})
}

func (t *TripItinerary) Fields() []Field {
	return []Field{{Label: "Notes", Value: t.Notes}}
}

func (t *TripItinerary) Submit() { t.Confirm() }

func (t *TripItinerary) Items() []Item {
	hotel := t.Config.SelectedHotel
	return []Item{
		{Label: t.Config.SelectedCityName, Detail: t.dates()},
		{Label: t.transport(), Detail: fmt.Sprintf("₹%.0f", t.TransportCost())},
		{Label: hotel.Name, Detail: fmt.Sprintf("₹%.0f/night", hotel.PricePerNight)},
		{Label: "Confirm booking", Detail: fmt.Sprintf("₹%.0f", t.TotalCost()), Select: t.Confirm},
	}
}

type TripConfirmation struct {
	base
	Config screen.TripConfirmation
}

func newTripConfirmation(cfg screen.TripConfirmation, deps Deps, scope *lifecycle.Scope) *TripConfirmation {
	return &TripConfirmation{base: newBase(screen.KindTripConfirmation, deps, scope), Config: cfg}
}

// Done closes the booking flow and returns to the home screen.
func (t *TripConfirmation) Done() {
	if err := t.deps.Nav.Reset(screen.Home{}); err != nil {
		t.fail(&TaskError{Op: "navigate", Err: err, Message: t.deps.Localizer.Error(err)})
	}
}

func (t *TripConfirmation) Items() []Item {
	c := t.Config
	items := []Item{
		{Label: c.Destination, Detail: c.Dates},
		{Label: c.FlightDetails},
		{Label: c.HotelDetails},
		{Label: c.CostBreakdown},
	}
	if c.Notes != nil {
		items = append(items, Item{Label: *c.Notes})
	}
	return append(items, Item{Label: t.deps.Localizer.Title(screen.KindHome), Select: t.Done})
}

// MyTrips lists the trip history of one user.
type MyTrips struct {
	base
	User  model.UserID
	Trips *value.Value[[]model.Trip]
}

func newMyTrips(cfg screen.MyTrips, deps Deps, scope *lifecycle.Scope) *MyTrips {
	m := &MyTrips{
		base:  newBase(screen.KindMyTrips, deps, scope),
		User:  cfg.UserID,
		Trips: value.New[[]model.Trip](nil),
	}
	m.Refresh()
	return m
}

func (m *MyTrips) Refresh() {
	user := m.User
	load(&m.base, "trip_history", func(ctx context.Context) ([]model.Trip, error) {
		return m.deps.Backend.Trips.History(ctx, user)
	}, m.Trips.Set)
}

func (m *MyTrips) Items() []Item {
	trips := m.Trips.Get()
	items := make([]Item, len(trips))
	for i, trip := range trips {
		items[i] = Item{
			Label:  trip.Destination,
			Detail: fmt.Sprintf("%s  %.0f %s", trip.StartDate.Format(time.DateOnly), trip.TotalCost, trip.Currency),
		}
	}
	return items
}
