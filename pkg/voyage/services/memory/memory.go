// Package memory is an in-process backend with a small fixed catalogue.
// The terminal shell uses it when no API URL is configured.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
	"github.com/BrandonKowalski/voyage/pkg/voyage/services"
	"github.com/google/uuid"
)

// Backend implements every service interface. Latency is added to each
// call so cancellation and debouncing behave as they would over a network.
type Backend struct {
	Latency time.Duration

	mu    sync.Mutex
	users map[string]user
	trips map[model.UserID][]model.Trip
}

type user struct {
	id       model.UserID
	password string
}

func New() *Backend {
	return &Backend{
		users: map[string]user{},
		trips: map[model.UserID][]model.Trip{},
	}
}

// Services returns b as a services.Backend.
func (b *Backend) Services() services.Backend {
	return services.Backend{
		Auth:            auth{b},
		Federated:       federated{b},
		Flights:         flights{b},
		Hotels:          hotels{b},
		Trains:          trains{b},
		Cities:          cities{b},
		Trips:           trips{b},
		Recommendations: recommendations{b},
	}
}

func (b *Backend) wait(ctx context.Context) error {
	if b.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(b.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type auth struct{ b *Backend }

func (a auth) SignIn(ctx context.Context, email, password string) (model.UserID, error) {
	if err := a.b.wait(ctx); err != nil {
		return "", err
	}
	a.b.mu.Lock()
	defer a.b.mu.Unlock()
	u, ok := a.b.users[strings.ToLower(email)]
	if !ok || u.password != password {
		return "", services.ErrInvalidCredentials
	}
	return u.id, nil
}

func (a auth) SignUp(ctx context.Context, email, password string) (model.UserID, error) {
	if err := a.b.wait(ctx); err != nil {
		return "", err
	}
	if !strings.Contains(email, "@") || len(password) < 6 {
		return "", services.ErrInvalidCredentials
	}
	a.b.mu.Lock()
	defer a.b.mu.Unlock()
	key := strings.ToLower(email)
	if _, exists := a.b.users[key]; exists {
		return "", fmt.Errorf("account %s already exists", email)
	}
	id := model.UserID(uuid.NewString())
	a.b.users[key] = user{id: id, password: password}
	return id, nil
}

type federated struct{ b *Backend }

func (f federated) SignIn(ctx context.Context) (model.UserID, error) {
	if err := f.b.wait(ctx); err != nil {
		return "", err
	}
	return "federated-demo", nil
}

func (federated) SignOut(context.Context) error {
	return nil
}

var catalogue = []model.City{
	{ID: 1, City: "Goa", State: "Goa", Country: "India", CityCode: 832},
	{ID: 2, City: "Jaipur", State: "Rajasthan", Country: "India", CityCode: 141},
	{ID: 3, City: "Udaipur", State: "Rajasthan", Country: "India", CityCode: 294},
	{ID: 4, City: "Kochi", State: "Kerala", Country: "India", CityCode: 484},
	{ID: 5, City: "Munnar", State: "Kerala", Country: "India", CityCode: 4865},
	{ID: 6, City: "Mumbai", State: "Maharashtra", Country: "India", CityCode: 22},
	{ID: 7, City: "Delhi", State: "Delhi", Country: "India", CityCode: 11},
}

var airports = map[string]string{
	"Goa": "GOI", "Jaipur": "JAI", "Udaipur": "UDR", "Kochi": "COK",
	"Mumbai": "BOM", "Delhi": "DEL",
}

type cities struct{ b *Backend }

func (c cities) Search(ctx context.Context, query string) ([]model.City, error) {
	if err := c.b.wait(ctx); err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	out := []model.City{}
	for _, city := range catalogue {
		if query == "" || strings.Contains(strings.ToLower(city.City), query) {
			out = append(out, city)
		}
	}
	return out, nil
}

func (c cities) Details(ctx context.Context, cityID string) (model.CityInfo, error) {
	if err := c.b.wait(ctx); err != nil {
		return model.CityInfo{}, err
	}
	for _, city := range catalogue {
		if fmt.Sprint(city.ID) == cityID {
			return model.CityInfo{
				ID:          cityID,
				Name:        city.City,
				Description: fmt.Sprintf("%s is a destination in %s, %s.", city.City, city.State, city.Country),
			}, nil
		}
	}
	return model.CityInfo{}, fmt.Errorf("city %s not found", cityID)
}

func (c cities) InState(ctx context.Context, state string) ([]model.City, error) {
	if err := c.b.wait(ctx); err != nil {
		return nil, err
	}
	out := []model.City{}
	for _, city := range catalogue {
		if strings.EqualFold(city.State, state) {
			out = append(out, city)
		}
	}
	return out, nil
}

type flights struct{ b *Backend }

func (f flights) Search(ctx context.Context, q services.FlightQuery) ([]model.Flight, error) {
	if err := f.b.wait(ctx); err != nil {
		return nil, err
	}
	from, ok := airports[q.FromCity]
	if !ok {
		return nil, fmt.Errorf("no airport in %s", q.FromCity)
	}
	to, ok := airports[q.ToCity]
	if !ok {
		return nil, fmt.Errorf("no airport in %s", q.ToCity)
	}

	day := time.Date(q.Date.Year(), q.Date.Month(), q.Date.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]model.Flight, 0, 3)
	for i, airline := range []string{"6E", "AI", "UK"} {
		dep := day.Add(time.Duration(6+4*i) * time.Hour)
		out = append(out, model.Flight{
			FlightNumber: fmt.Sprintf("%s%d", airline, 200+i),
			AirlineCode:  airline,
			Departure:    model.FlightPoint{IATACode: from, Time: dep},
			Arrival:      model.FlightPoint{IATACode: to, Time: dep.Add(2*time.Hour + 15*time.Minute)},
			Duration:     "PT2H15M",
			Price:        float64(4200+900*i) * float64(max(q.Adults, 1)),
			Currency:     "INR",
		})
	}
	return out, nil
}

type hotels struct{ b *Backend }

func (h hotels) InCity(ctx context.Context, city string) ([]model.Accommodation, error) {
	if err := h.b.wait(ctx); err != nil {
		return nil, err
	}
	return []model.Accommodation{
		{ID: city + "-1", Name: city + " Grand", Rating: 4.5, PricePerNight: 6500, Currency: "INR", Amenities: []string{"pool", "wifi"}},
		{ID: city + "-2", Name: city + " Residency", Rating: 4.0, PricePerNight: 3200, Currency: "INR", Amenities: []string{"wifi"}},
		{ID: city + "-3", Name: city + " Homestay", Rating: 4.7, PricePerNight: 1800, Currency: "INR"},
	}, nil
}

type trains struct{ b *Backend }

var stations = []services.Station{
	{Code: "NDLS", Name: "New Delhi"},
	{Code: "BCT", Name: "Mumbai Central"},
	{Code: "JP", Name: "Jaipur Junction"},
	{Code: "MAO", Name: "Madgaon"},
	{Code: "ERS", Name: "Ernakulam Junction"},
}

func (t trains) Stations(ctx context.Context, query string) ([]services.Station, error) {
	if err := t.b.wait(ctx); err != nil {
		return nil, err
	}
	query = strings.ToLower(query)
	out := []services.Station{}
	for _, s := range stations {
		if strings.Contains(strings.ToLower(s.Name), query) || strings.EqualFold(s.Code, query) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (t trains) Between(ctx context.Context, from, to string) ([]model.Train, error) {
	if err := t.b.wait(ctx); err != nil {
		return nil, err
	}
	name := func(code string) string {
		for _, s := range stations {
			if s.Code == code {
				return s.Name
			}
		}
		return code
	}
	return []model.Train{
		{Number: "12952", Name: "Rajdhani Express", FromStationCode: from, FromStationName: name(from),
			ToStationCode: to, ToStationName: name(to), DepartureTime: "16:55", ArrivalTime: "08:35", Distance: 1386},
		{Number: "12904", Name: "Golden Temple Mail", FromStationCode: from, FromStationName: name(from),
			ToStationCode: to, ToStationName: name(to), DepartureTime: "07:20", ArrivalTime: "05:10", Distance: 1410},
	}, nil
}

type trips struct{ b *Backend }

func (t trips) Save(ctx context.Context, u model.UserID, req services.TripRequest) (string, error) {
	if u == "" {
		return "", services.ErrUnauthenticated
	}
	if err := t.b.wait(ctx); err != nil {
		return "", err
	}
	now := time.Now().UTC()
	trip := model.Trip{
		ID:          uuid.NewString(),
		UserID:      u,
		Destination: req.CityName,
		StartDate:   now,
		EndDate:     now.Add(72 * time.Hour),
		TotalCost:   req.TotalCost,
		Currency:    "INR",
	}
	t.b.mu.Lock()
	t.b.trips[u] = append(t.b.trips[u], trip)
	t.b.mu.Unlock()
	return trip.ID, nil
}

func (t trips) History(ctx context.Context, u model.UserID) ([]model.Trip, error) {
	if u == "" {
		return nil, services.ErrUnauthenticated
	}
	if err := t.b.wait(ctx); err != nil {
		return nil, err
	}
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	return append([]model.Trip(nil), t.b.trips[u]...), nil
}

type recommendations struct{ b *Backend }

var packingTips = []string{"Carry a photo ID for every traveler", "Pack light cotton for the coast"}

// For suggests catalogue cities the user has not booked yet. Cities in the
// same state as the latest trip count as similar; the first unvisited one
// becomes the next city.
func (r recommendations) For(ctx context.Context, u model.UserID) (model.Recommendations, error) {
	if u == "" {
		return model.Recommendations{}, services.ErrUnauthenticated
	}
	if err := r.b.wait(ctx); err != nil {
		return model.Recommendations{}, err
	}
	r.b.mu.Lock()
	history := append([]model.Trip(nil), r.b.trips[u]...)
	r.b.mu.Unlock()

	visited := map[string]bool{}
	for _, t := range history {
		visited[strings.ToLower(t.Destination)] = true
	}
	var lastState string
	if len(history) > 0 {
		last := strings.ToLower(history[len(history)-1].Destination)
		for _, c := range catalogue {
			if strings.ToLower(c.City) == last {
				lastState = c.State
			}
		}
	}

	rec := model.Recommendations{PackingTips: packingTips}
	for _, c := range catalogue {
		if visited[strings.ToLower(c.City)] {
			continue
		}
		if rec.NextCity == "" {
			rec.NextCity = c.City
		}
		if lastState != "" && c.State == lastState {
			rec.Similar = append(rec.Similar, c.City)
		}
	}
	return rec, nil
}
