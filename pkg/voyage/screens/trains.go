package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/BrandonKowalski/voyage/pkg/voyage/lifecycle"
	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
	"github.com/BrandonKowalski/voyage/pkg/voyage/services"
	"github.com/BrandonKowalski/voyage/pkg/voyage/value"
)

// Coaches are the bookable coach classes, cheapest first.
var Coaches = []string{"SL", "3E", "3A", "2A", "1A"}

// coachRates holds the base fare in rupees and the per-km rate in paise.
var coachRates = map[string]struct{ base, perKm int }{
	"SL": {100, 45},
	"3E": {150, 110},
	"3A": {200, 120},
	"2A": {300, 170},
	"1A": {500, 290},
}

// Fare returns the ticket price in rupees for a journey of distance km,
// truncated to a whole rupee. Unknown coaches cost nothing.
func Fare(distance int, coach string) int {
	r, ok := coachRates[coach]
	if !ok {
		return 0
	}
	return (r.base*100 + distance*r.perKm) / 100
}

type TrainSearch struct {
	base
	From     *value.Value[string] // station code
	To       *value.Value[string]
	Stations *value.Value[[]services.Station]

	lookup *lifecycle.Debouncer[[]services.Station]
}

func newTrainSearch(deps Deps, scope *lifecycle.Scope) *TrainSearch {
	t := &TrainSearch{
		base:     newBase(screen.KindTrainSearch, deps, scope),
		From:     value.New(""),
		To:       value.New(""),
		Stations: value.New[[]services.Station](nil),
	}
	t.lookup = lifecycle.NewDebouncer(scope, deps.SearchDebounce, func(s []services.Station, err error) {
		if err != nil {
			t.failure.Set(&TaskError{Op: "stations", Err: err, Message: t.deps.Localizer.Error(err)})
			return
		}
		t.Stations.Set(s)
	})
	watch(&t.base, t.From, t.suggest)
	watch(&t.base, t.To, t.suggest)
	return t
}

// suggest looks up stations matching the field being edited.
func (t *TrainSearch) suggest(q string) {
	q = strings.TrimSpace(q)
	if len(q) < 2 {
		t.lookup.Cancel()
		t.Stations.Set(nil)
		return
	}
	t.lookup.Trigger(func(ctx context.Context) ([]services.Station, error) {
		return t.deps.Backend.Trains.Stations(ctx, q)
	})
}

func (t *TrainSearch) Fields() []Field {
	return []Field{
		{Label: "From station", Value: t.From},
		{Label: "To station", Value: t.To},
	}
}

// Submit opens the trains running between the two stations.
func (t *TrainSearch) Submit() {
	from := strings.ToUpper(strings.TrimSpace(t.From.Get()))
	to := strings.ToUpper(strings.TrimSpace(t.To.Get()))
	switch {
	case from == "":
		t.invalid("From station")
	case to == "":
		t.invalid("To station")
	default:
		t.navigate(screen.TrainDetails{From: from, To: to})
	}
}

func (t *TrainSearch) Items() []Item {
	items := []Item{{Label: "Search", Select: t.Submit}}
	for _, s := range t.Stations.Get() {
		items = append(items, Item{Label: s.Name, Detail: s.Code})
	}
	return items
}

// TrainDetails lists trains between two stations and prices each coach.
type TrainDetails struct {
	base
	From, To string
	Trains   *value.Value[[]model.Train]
	Coach    *value.Value[string]
}

func newTrainDetails(cfg screen.TrainDetails, deps Deps, scope *lifecycle.Scope) *TrainDetails {
	t := &TrainDetails{
		base:   newBase(screen.KindTrainDetails, deps, scope),
		From:   cfg.From,
		To:     cfg.To,
		Trains: value.New[[]model.Train](nil),
		Coach:  value.New(Coaches[0]),
	}
	t.Refresh()
	return t
}

func (t *TrainDetails) Refresh() {
	from, to := t.From, t.To
	load(&t.base, "search_trains", func(ctx context.Context) ([]model.Train, error) {
		return t.deps.Backend.Trains.Between(ctx, from, to)
	}, t.Trains.Set)
}

// SelectCoach changes the coach class used for fares.
func (t *TrainDetails) SelectCoach(coach string) {
	if _, ok := coachRates[coach]; ok {
		t.Coach.Set(coach)
	}
}

// NextCoach cycles through Coaches.
func (t *TrainDetails) NextCoach() {
	cur := t.Coach.Get()
	for i, c := range Coaches {
		if c == cur {
			t.Coach.Set(Coaches[(i+1)%len(Coaches)])
			return
		}
	}
	t.Coach.Set(Coaches[0])
}

// Select books train in the current coach and moves on to the hotel.
func (t *TrainDetails) Select(train model.Train) {
	coach := t.Coach.Get()
	t.navigate(screen.HotelForTrain{
		SelectedTrain: train,
		SelectedCoach: coach,
		Fare:          Fare(train.Distance, coach),
	})
}

func (t *TrainDetails) Items() []Item {
	coach := t.Coach.Get()
	items := []Item{{Label: "Coach: " + coach, Detail: strings.Join(Coaches, " "), Select: t.NextCoach}}
	for _, train := range t.Trains.Get() {
		items = append(items, Item{
			Label:  fmt.Sprintf("%s %s", train.Number, train.Name),
			Detail: fmt.Sprintf("%s → %s  %d km  ₹%d", train.DepartureTime, train.ArrivalTime, train.Distance, Fare(train.Distance, coach)),
			Select: func() { t.Select(train) },
		})
	}
	return items
}

// HotelForTrain lists accommodation at the destination station.
type HotelForTrain struct {
	base
	Config screen.HotelForTrain
	Hotels *value.Value[[]model.Accommodation]
}

func newHotelForTrain(cfg screen.HotelForTrain, deps Deps, scope *lifecycle.Scope) *HotelForTrain {
	h := &HotelForTrain{
		base:   newBase(screen.KindHotelForTrain, deps, scope),
		Config: cfg,
		Hotels: value.New[[]model.Accommodation](nil),
	}
	h.Refresh()
	return h
}

// City is the destination the hotels are searched in.
func (h *HotelForTrain) City() string {
	if h.Config.SelectedTrain.ToStationName != "" {
		return h.Config.SelectedTrain.ToStationName
	}
	return h.Config.SelectedTrain.ToStationCode
}

func (h *HotelForTrain) Refresh() {
	city := h.City()
	load(&h.base, "hotels", func(ctx context.Context) ([]model.Accommodation, error) {
		return h.deps.Backend.Hotels.InCity(ctx, city)
	}, h.Hotels.Set)
}

func (h *HotelForTrain) Select(hotel model.Accommodation) {
	train := h.Config.SelectedTrain
	fare := h.Config.Fare
	h.navigate(screen.TripItinerary{
		SelectedTrain:    &train,
		SelectedHotel:    hotel,
		SelectedCityName: h.City(),
		SelectedCoach:    h.Config.SelectedCoach,
		Fare:             &fare,
	})
}

func (h *HotelForTrain) Items() []Item {
	return hotelItems(h.Hotels.Get(), h.Select)
}
