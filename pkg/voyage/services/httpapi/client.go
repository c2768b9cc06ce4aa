// Package httpapi implements the service interfaces against the travel
// backend's JSON API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "github.com/BrandonKowalski/certifiable" // Add CA certificates to the default trust store

	"github.com/BrandonKowalski/voyage/pkg/voyage/internal"
	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
	"github.com/BrandonKowalski/voyage/pkg/voyage/services"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the backend.
type APIError struct {
	Op     string
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("httpapi: %s: status %d: %s", e.Op, e.Status, e.Msg)
	}
	return fmt.Sprintf("httpapi: %s: status %d", e.Op, e.Status)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to the backend. It implements services.Auth,
// services.Flights, services.Hotels, services.Trains, services.Trips and
// services.Recommendations;
// Cities returns the city search.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithClient(baseURL, &http.Client{}, timeout)
}

func NewWithClient(baseURL string, client *http.Client, timeout time.Duration) *Client {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		timeout: timeout,
		logger:  internal.GetInternalLogger(),
	}
}

// Backend returns a services.Backend whose HTTP-backed members use c.
// Federated sign-in is platform specific and left to the caller.
func (c *Client) Backend(federated services.Federated) services.Backend {
	return services.Backend{
		Auth:            c,
		Federated:       federated,
		Flights:         c,
		Hotels:          c,
		Trains:          c,
		Cities:          c.Cities(),
		Trips:           c,
		Recommendations: c,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	UserID model.UserID `json:"userId"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (model.UserID, error) {
	var resp userResponse
	err := c.do(ctx, "sign_in", http.MethodPost, "/api/auth/signin", nil, nil, credentials{email, password}, &resp)
	if IsStatus(err, http.StatusUnauthorized) {
		return "", services.ErrInvalidCredentials
	}
	return resp.UserID, err
}

func (c *Client) SignUp(ctx context.Context, email, password string) (model.UserID, error) {
	var resp userResponse
	err := c.do(ctx, "sign_up", http.MethodPost, "/api/auth/signup", nil, nil, credentials{email, password}, &resp)
	return resp.UserID, err
}

func (c *Client) Search(ctx context.Context, q services.FlightQuery) ([]model.Flight, error) {
	params := url.Values{}
	params.Set("fromCity", q.FromCity)
	params.Set("toCity", q.ToCity)
	params.Set("date", q.Date.Format(time.DateOnly))
	params.Set("adults", fmt.Sprint(q.Adults))
	params.Set("children", fmt.Sprint(q.Children))
	params.Set("infants", fmt.Sprint(q.Infants))
	params.Set("cabinClass", q.CabinClass)

	var flights []model.Flight
	err := c.do(ctx, "search_flights", http.MethodGet, "/flights/search", params, nil, nil, &flights)
	return flights, err
}

func (c *Client) InCity(ctx context.Context, city string) ([]model.Accommodation, error) {
	var hotels []model.Accommodation
	err := c.do(ctx, "hotels", http.MethodGet, "/api/hotels", url.Values{"city": {city}}, nil, nil, &hotels)
	return hotels, err
}

func (c *Client) Stations(ctx context.Context, query string) ([]services.Station, error) {
	var stations []services.Station
	err := c.do(ctx, "stations", http.MethodGet, "/api/trains/stations", url.Values{"query": {query}}, nil, nil, &stations)
	return stations, err
}

func (c *Client) Between(ctx context.Context, from, to string) ([]model.Train, error) {
	var trains []model.Train
	err := c.do(ctx, "search_trains", http.MethodGet, "/api/trains/search", url.Values{"from": {from}, "to": {to}}, nil, nil, &trains)
	return trains, err
}

// Cities implements services.Cities. It is a separate type because the
// city search and the flight search share a method name.
func (c *Client) Cities() services.Cities {
	return cities{c}
}

type cities struct{ c *Client }

func (s cities) Search(ctx context.Context, query string) ([]model.City, error) {
	var out []model.City
	err := s.c.do(ctx, "search_cities", http.MethodGet, "/api/destinations", url.Values{"name": {query}}, nil, nil, &out)
	return out, err
}

func (s cities) Details(ctx context.Context, cityID string) (model.CityInfo, error) {
	var out model.CityInfo
	err := s.c.do(ctx, "city_details", http.MethodGet, "/api/destinations/"+url.PathEscape(cityID)+"/details", nil, nil, nil, &out)
	return out, err
}

func (s cities) InState(ctx context.Context, state string) ([]model.City, error) {
	var out []model.City
	err := s.c.do(ctx, "state_cities", http.MethodGet, "/api/destinations", url.Values{"state": {state}}, nil, nil, &out)
	return out, err
}

type tripResponse struct {
	ID json.Number `json:"id"`
}

func (c *Client) Save(ctx context.Context, user model.UserID, trip services.TripRequest) (string, error) {
	if user == "" {
		return "", services.ErrUnauthenticated
	}
	var resp tripResponse
	header := http.Header{"X-User-Id": {string(user)}}
	if err := c.do(ctx, "save_trip", http.MethodPost, "/api/trips", nil, header, trip, &resp); err != nil {
		return "", err
	}
	return resp.ID.String(), nil
}

func (c *Client) History(ctx context.Context, user model.UserID) ([]model.Trip, error) {
	if user == "" {
		return nil, services.ErrUnauthenticated
	}
	var trips []model.Trip
	err := c.do(ctx, "my_trips", http.MethodGet, "/api/my-trips", url.Values{"userId": {string(user)}}, nil, nil, &trips)
	return trips, err
}

type recommendationResponse struct {
	Recommendations model.Recommendations `json:"recommendations"`
	Success         bool                  `json:"success"`
}

// For fetches the recommendations for user. A response the backend marks
// unsuccessful yields empty recommendations.
func (c *Client) For(ctx context.Context, user model.UserID) (model.Recommendations, error) {
	if user == "" {
		return model.Recommendations{}, services.ErrUnauthenticated
	}
	var resp recommendationResponse
	if err := c.do(ctx, "recommendations", http.MethodGet, "/api/recommendations/"+url.PathEscape(string(user)), nil, nil, nil, &resp); err != nil {
		return model.Recommendations{}, err
	}
	if !resp.Success {
		return model.Recommendations{}, nil
	}
	return resp.Recommendations, nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, header http.Header, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) > c.timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("httpapi: %s: encode request: %w", op, err)
		}
		reqBody = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("httpapi: %s: %w", op, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("httpapi: %s: %w", op, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpapi: %s: read response: %w", op, err)
	}
	c.logger.Debug("backend call", "op", op, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var er errorResponse
		_ = json.Unmarshal(payload, &er)
		msg := er.Message
		if msg == "" {
			msg = er.Error
		}
		return &APIError{Op: op, Status: resp.StatusCode, Msg: msg}
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("httpapi: %s: decode response: %w", op, err)
	}
	return nil
}
