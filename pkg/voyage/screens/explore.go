package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/BrandonKowalski/voyage/pkg/voyage/lifecycle"
	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
	"github.com/BrandonKowalski/voyage/pkg/voyage/value"
)

// Category is a curated group of destinations shown on the home screen.
type Category struct {
	Title        string
	Description  string
	Destinations []string
}

var Categories = []Category{
	{"Beach", "Sun, sand and seafood", []string{"Goa", "Gokarna", "Pondicherry", "Alibaug", "Kovalam"}},
	{"Mountain", "High passes and cold deserts", []string{"Manali", "Leh", "Spiti", "Auli", "Tawang"}},
	{"Hill Station", "Cool air and tea gardens", []string{"Ooty", "Munnar", "Shimla", "Darjeeling", "Mussoorie"}},
	{"Historical Place", "Forts, caves and temples", []string{"Hampi", "Ajanta", "Fatehpur Sikri", "Kumbhalgarh", "Khajuraho"}},
	{"Pilgrimage", "Sacred towns and ghats", []string{"Varanasi", "Rishikesh", "Tirupati", "Shirdi", "Amritsar"}},
}

type Home struct {
	base
}

func newHome(deps Deps, scope *lifecycle.Scope) *Home {
	return &Home{base: newBase(screen.KindHome, deps, scope)}
}

func (h *Home) OpenCitySearch()   { h.navigate(screen.CitySearch{}) }
func (h *Home) OpenFlightSearch() { h.navigate(screen.FlightSearch{}) }
func (h *Home) OpenTrainSearch()  { h.navigate(screen.TrainSearch{}) }
func (h *Home) OpenProfile()      { h.navigate(screen.Profile{}) }

// OpenMyTrips shows the trip history of the signed in user.
func (h *Home) OpenMyTrips() {
	h.navigate(screen.MyTrips{UserID: h.deps.Session.User()})
}

func (h *Home) OpenCategory(c Category) {
	h.navigate(screen.CategoryDetails{Title: c.Title, Description: c.Description, Destinations: c.Destinations})
}

func (h *Home) Items() []Item {
	l := h.deps.Localizer
	items := []Item{
		{Label: l.Title(screen.KindCitySearch), Select: h.OpenCitySearch},
		{Label: l.Title(screen.KindFlightSearch), Select: h.OpenFlightSearch},
		{Label: l.Title(screen.KindTrainSearch), Select: h.OpenTrainSearch},
		{Label: l.Title(screen.KindMyTrips), Select: h.OpenMyTrips},
		{Label: l.Title(screen.KindProfile), Select: h.OpenProfile},
	}
	for _, c := range Categories {
		items = append(items, Item{Label: c.Title, Detail: c.Description, Select: func() { h.OpenCategory(c) }})
	}
	return items
}

// CitySearch filters destinations as the user types. Queries are debounced
// and only the latest one is applied. A signed in user also gets
// personalized recommendations.
type CitySearch struct {
	base
	Query           *value.Value[string]
	Results         *value.Value[[]model.City]
	Recommendations *value.Value[model.Recommendations]

	search *lifecycle.Debouncer[[]model.City]
}

func newCitySearch(deps Deps, scope *lifecycle.Scope) *CitySearch {
	c := &CitySearch{
		base:            newBase(screen.KindCitySearch, deps, scope),
		Query:           value.New(""),
		Results:         value.New[[]model.City](nil),
		Recommendations: value.New(model.Recommendations{}),
	}
	c.search = lifecycle.NewDebouncer(scope, deps.SearchDebounce, c.applyResults)
	c.LoadRecommendations()
	watch(&c.base, c.Query, c.trigger)
	return c
}

// LoadRecommendations fetches suggestions for the session user. Without a
// user or a recommendation service it does nothing.
func (c *CitySearch) LoadRecommendations() {
	recs := c.deps.Backend.Recommendations
	user := c.deps.Session.User()
	if recs == nil || user == "" {
		return
	}
	load(&c.base, "recommendations", func(ctx context.Context) (model.Recommendations, error) {
		return recs.For(ctx, user)
	}, c.Recommendations.Set)
}

func (c *CitySearch) trigger(q string) {
	q = strings.TrimSpace(q)
	c.loading.Set(true)
	c.search.Trigger(func(ctx context.Context) ([]model.City, error) {
		return c.deps.Backend.Cities.Search(ctx, q)
	})
}

func (c *CitySearch) applyResults(cities []model.City, err error) {
	c.loading.Set(false)
	if err != nil {
		c.failure.Set(&TaskError{
			Op:      "search_cities",
			Err:     err,
			Message: c.deps.Localizer.Error(err),
			retry:   func() { c.trigger(c.Query.Get()) },
		})
		return
	}
	c.failure.Set(nil)
	c.Results.Set(cities)
}

func (c *CitySearch) Fields() []Field {
	return []Field{{Label: "City", Value: c.Query}}
}

// Submit re-runs the current query immediately after the debounce delay.
func (c *CitySearch) Submit() { c.trigger(c.Query.Get()) }

func (c *CitySearch) SelectCity(city model.City) {
	c.navigate(screen.CityDetails{CityID: fmt.Sprint(city.ID), CityName: city.City})
}

// SelectRecommended opens a recommended destination by name.
func (c *CitySearch) SelectRecommended(name string) {
	c.navigate(screen.CityDetails{CityName: name})
}

func (c *CitySearch) SelectState(state string) {
	c.navigate(screen.State{StateName: state})
}

// HandleBack clears a non-empty query instead of leaving the screen.
func (c *CitySearch) HandleBack() bool {
	if c.Query.Get() == "" {
		return false
	}
	c.Query.Set("")
	return true
}

func (c *CitySearch) Items() []Item {
	cities := c.Results.Get()
	items := make([]Item, 0, len(cities)*2)
	seen := map[string]bool{}
	for _, city := range cities {
		items = append(items, Item{Label: city.City, Detail: city.State, Select: func() { c.SelectCity(city) }})
	}
	for _, city := range cities {
		if city.State == "" || seen[city.State] {
			continue
		}
		seen[city.State] = true
		items = append(items, Item{Label: "Explore " + city.State, Select: func() { c.SelectState(city.State) }})
	}
	for _, name := range c.Recommendations.Get().Cities() {
		items = append(items, Item{Label: name, Detail: "Recommended", Select: func() { c.SelectRecommended(name) }})
	}
	return items
}

type CityDetails struct {
	base
	Config screen.CityDetails
	Info   *value.Value[model.CityInfo]
}

func newCityDetails(cfg screen.CityDetails, deps Deps, scope *lifecycle.Scope) *CityDetails {
	d := &CityDetails{
		base:   newBase(screen.KindCityDetails, deps, scope),
		Config: cfg,
		Info:   value.New(model.CityInfo{ID: cfg.CityID, Name: cfg.CityName}),
	}
	d.Refresh()
	return d
}

// Refresh loads the city details. Without an id the city is looked up by
// name first.
func (d *CityDetails) Refresh() {
	cities := d.deps.Backend.Cities
	load(&d.base, "city_details", func(ctx context.Context) (model.CityInfo, error) {
		id := d.Config.CityID
		if id == "" {
			found, err := cities.Search(ctx, d.Config.CityName)
			if err != nil {
				return model.CityInfo{}, err
			}
			if len(found) == 0 {
				return model.CityInfo{Name: d.Config.CityName}, nil
			}
			id = fmt.Sprint(found[0].ID)
		}
		return cities.Details(ctx, id)
	}, d.Info.Set)
}

func (d *CityDetails) Title() string {
	if d.Config.CityName != "" {
		return d.Config.CityName
	}
	return d.base.Title()
}

func (d *CityDetails) PlanFlight() { d.navigate(screen.FlightSearch{}) }
func (d *CityDetails) PlanTrain()  { d.navigate(screen.TrainSearch{}) }

func (d *CityDetails) Items() []Item {
	info := d.Info.Get()
	items := []Item{{Label: info.Name, Detail: info.Description}}
	for _, a := range info.Attractions {
		items = append(items, Item{Label: a})
	}
	return append(items,
		Item{Label: d.deps.Localizer.Title(screen.KindFlightSearch), Select: d.PlanFlight},
		Item{Label: d.deps.Localizer.Title(screen.KindTrainSearch), Select: d.PlanTrain},
	)
}

// State lists the destinations of one state.
type State struct {
	base
	Name   string
	Cities *value.Value[[]model.City]
}

func newState(cfg screen.State, deps Deps, scope *lifecycle.Scope) *State {
	s := &State{
		base:   newBase(screen.KindState, deps, scope),
		Name:   cfg.StateName,
		Cities: value.New[[]model.City](nil),
	}
	s.Refresh()
	return s
}

func (s *State) Refresh() {
	name := s.Name
	load(&s.base, "state_cities", func(ctx context.Context) ([]model.City, error) {
		return s.deps.Backend.Cities.InState(ctx, name)
	}, s.Cities.Set)
}

func (s *State) Title() string {
	if s.Name == "" {
		return s.base.Title()
	}
	return s.Name
}

func (s *State) SelectCity(city model.City) {
	s.navigate(screen.CityDetails{CityID: fmt.Sprint(city.ID), CityName: city.City})
}

func (s *State) Items() []Item {
	cities := s.Cities.Get()
	items := make([]Item, len(cities))
	for i, city := range cities {
		items[i] = Item{Label: city.City, Select: func() { s.SelectCity(city) }}
	}
	return items
}

type CategoryDetails struct {
	base
	Config screen.CategoryDetails
}

func newCategoryDetails(cfg screen.CategoryDetails, deps Deps, scope *lifecycle.Scope) *CategoryDetails {
	return &CategoryDetails{base: newBase(screen.KindCategoryDetails, deps, scope), Config: cfg}
}

func (c *CategoryDetails) Title() string {
	if c.Config.Title == "" {
		return c.base.Title()
	}
	return c.Config.Title
}

// SelectDestination opens a destination by name; its id is resolved by the
// details screen.
func (c *CategoryDetails) SelectDestination(name string) {
	c.navigate(screen.CityDetails{CityName: name})
}

func (c *CategoryDetails) Items() []Item {
	items := make([]Item, len(c.Config.Destinations))
	for i, name := range c.Config.Destinations {
		items[i] = Item{Label: name, Select: func() { c.SelectDestination(name) }}
	}
	return items
}
