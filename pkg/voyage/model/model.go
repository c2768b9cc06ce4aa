// Package model defines the data-transfer objects exchanged with the travel
// backend and carried as screen parameters.
package model

import "time"

// UserID identifies an authenticated traveler.
type UserID string

// FlightPoint is one end of a flight segment.
type FlightPoint struct {
	IATACode string    `json:"iataCode"`
	Time     time.Time `json:"time"`
	Terminal string    `json:"terminal,omitempty"`
}

// Flight is a single bookable flight offer.
type Flight struct {
	FlightNumber string      `json:"flightNumber"`
	AirlineCode  string      `json:"airlineCode"`
	Departure    FlightPoint `json:"departure"`
	Arrival      FlightPoint `json:"arrival"`
	Duration     string      `json:"duration"` // ISO-8601 duration as returned by the backend, e.g. PT2H10M
	Price        float64     `json:"price"`
	Currency     string      `json:"currency"`
}

// IsZero reports whether no flight has been selected.
func (f Flight) IsZero() bool {
	return f.FlightNumber == "" && f.AirlineCode == ""
}

// Accommodation is a hotel or rental listing.
type Accommodation struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Rating        float64  `json:"rating"`
	PricePerNight float64  `json:"pricePerNight"`
	Currency      string   `json:"currency"`
	Amenities     []string `json:"amenities"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	BookingURL    string   `json:"bookingUrl"`
	AirbnbURL     string   `json:"airbnbUrl"`
}

// Train is a train search result. Field names follow the backend payload.
type Train struct {
	Number          string `json:"train_no"`
	Name            string `json:"train_name"`
	FromStationCode string `json:"from_station_code"`
	FromStationName string `json:"from_station_name"`
	ToStationCode   string `json:"to_station_code"`
	ToStationName   string `json:"to_station_name"`
	DepartureTime   string `json:"from_departure_time"`
	ArrivalTime     string `json:"to_arrival_time"`
	Distance        int    `json:"distance"` // kilometres
}

// IsZero reports whether no train has been selected.
func (t Train) IsZero() bool {
	return t.Number == ""
}

// City is a destination city returned by the city search.
type City struct {
	ID       int64  `json:"id"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	CityCode int64  `json:"cityCode"`
}

// CityInfo is the detail payload shown for a single city.
type CityInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Attractions []string `json:"attractions,omitempty"`
}

// Trip is one entry in a traveler's trip history.
type Trip struct {
	ID          string    `json:"id"`
	UserID      UserID    `json:"userId"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	TotalCost   float64   `json:"totalCost"`
	Currency    string    `json:"currency"`
}

// Recommendations are the personalized suggestions for a traveler.
type Recommendations struct {
	NextCity    string   `json:"next_city_recommendation,omitempty"`
	Similar     []string `json:"similar_destinations,omitempty"`
	OtherHotels []string `json:"other_hotels,omitempty"`
	Deals       []string `json:"generic_deals,omitempty"`
	PackingTips []string `json:"generic_packing_tips,omitempty"`
}

// Cities returns the next city followed by the similar destinations,
// without blanks or repeats.
func (r Recommendations) Cities() []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range append([]string{r.NextCity}, r.Similar...) {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
