package screens

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BrandonKowalski/voyage/pkg/voyage/lifecycle"
	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
	"github.com/BrandonKowalski/voyage/pkg/voyage/services"
	"github.com/BrandonKowalski/voyage/pkg/voyage/value"
)

type FlightSearch struct {
	base
	From       *value.Value[string]
	To         *value.Value[string]
	Date       *value.Value[string] // YYYY-MM-DD
	Adults     *value.Value[string]
	CabinClass *value.Value[string]
}

func newFlightSearch(deps Deps, scope *lifecycle.Scope) *FlightSearch {
	return &FlightSearch{
		base:       newBase(screen.KindFlightSearch, deps, scope),
		From:       value.New(""),
		To:         value.New(""),
		Date:       value.New(deps.Now().AddDate(0, 0, 7).Format(time.DateOnly)),
		Adults:     value.New("1"),
		CabinClass: value.New("ECONOMY"),
	}
}

func (f *FlightSearch) Fields() []Field {
	return []Field{
		{Label: "From", Value: f.From},
		{Label: "To", Value: f.To},
		{Label: "Date", Value: f.Date},
		{Label: "Adults", Value: f.Adults},
		{Label: "Cabin", Value: f.CabinClass},
	}
}

func (f *FlightSearch) query() (services.FlightQuery, bool) {
	q := services.FlightQuery{
		FromCity:   strings.TrimSpace(f.From.Get()),
		ToCity:     strings.TrimSpace(f.To.Get()),
		CabinClass: strings.ToUpper(strings.TrimSpace(f.CabinClass.Get())),
	}
	switch {
	case q.FromCity == "":
		f.invalid("From")
		return q, false
	case q.ToCity == "":
		f.invalid("To")
		return q, false
	}

	date, err := time.Parse(time.DateOnly, strings.TrimSpace(f.Date.Get()))
	if err != nil {
		f.invalid("Date")
		return q, false
	}
	q.Date = date

	adults, err := strconv.Atoi(strings.TrimSpace(f.Adults.Get()))
	if err != nil || adults < 1 {
		f.invalid("Adults")
		return q, false
	}
	q.Adults = adults
	return q, true
}

// Submit searches flights and opens the results.
func (f *FlightSearch) Submit() {
	q, ok := f.query()
	if !ok {
		return
	}
	load(&f.base, "search_flights", func(ctx context.Context) ([]model.Flight, error) {
		return f.deps.Backend.Flights.Search(ctx, q)
	}, func(flights []model.Flight) {
		f.navigate(screen.FlightDetail{Flights: flights})
	})
}

func (f *FlightSearch) Items() []Item {
	return []Item{{Label: "Search", Select: f.Submit}}
}

type FlightDetail struct {
	base
	Flights []model.Flight
}

func newFlightDetail(cfg screen.FlightDetail, deps Deps, scope *lifecycle.Scope) *FlightDetail {
	return &FlightDetail{base: newBase(screen.KindFlightDetail, deps, scope), Flights: cfg.Flights}
}

func (f *FlightDetail) Select(flight model.Flight) {
	f.navigate(screen.Hotel{SelectedFlight: flight})
}

func (f *FlightDetail) Items() []Item {
	items := make([]Item, len(f.Flights))
	for i, fl := range f.Flights {
		items[i] = Item{
			Label:  fmt.Sprintf("%s %s → %s", fl.FlightNumber, fl.Departure.IATACode, fl.Arrival.IATACode),
			Detail: fmt.Sprintf("%s  %.0f %s", fl.Departure.Time.Format("Jan 2 15:04"), fl.Price, fl.Currency),
			Select: func() { f.Select(fl) },
		}
	}
	return items
}

// Hotel lists accommodation at the arrival airport of the chosen flight.
type Hotel struct {
	base
	Flight model.Flight
	Hotels *value.Value[[]model.Accommodation]
}

func newHotel(cfg screen.Hotel, deps Deps, scope *lifecycle.Scope) *Hotel {
	h := &Hotel{
		base:   newBase(screen.KindHotel, deps, scope),
		Flight: cfg.SelectedFlight,
		Hotels: value.New[[]model.Accommodation](nil),
	}
	h.Refresh()
	return h
}

// City is the destination the hotels are searched in.
func (h *Hotel) City() string {
	return h.Flight.Arrival.IATACode
}

func (h *Hotel) Refresh() {
	city := h.City()
	load(&h.base, "hotels", func(ctx context.Context) ([]model.Accommodation, error) {
		return h.deps.Backend.Hotels.InCity(ctx, city)
	}, h.Hotels.Set)
}

func (h *Hotel) Select(hotel model.Accommodation) {
	flight := h.Flight
	h.navigate(screen.TripItinerary{
		SelectedFlight:   &flight,
		SelectedHotel:    hotel,
		SelectedCityName: h.City(),
	})
}

func (h *Hotel) Items() []Item {
	return hotelItems(h.Hotels.Get(), h.Select)
}

func hotelItems(hotels []model.Accommodation, selectFn func(model.Accommodation)) []Item {
	items := make([]Item, len(hotels))
	for i, hotel := range hotels {
		items[i] = Item{
			Label:  hotel.Name,
			Detail: fmt.Sprintf("★ %.1f  %.0f %s/night", hotel.Rating, hotel.PricePerNight, hotel.Currency),
			Select: func() { selectFn(hotel) },
		}
	}
	return items
}
