package app

import (
	"errors"
	"fmt"

	"github.com/BrandonKowalski/voyage/pkg/voyage/router"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
)

var (
	errNoFlight      = errors.New("hotel needs a selected flight")
	errNoTrain       = errors.New("hotel needs a selected train and coach")
	errNoHotel       = errors.New("itinerary needs a selected hotel")
	errNoTransport   = errors.New("itinerary needs a flight or a train")
	errNoDestination = errors.New("confirmation needs a destination")
)

// TripGuard rejects booking screens whose parameters are missing the
// choices made on the screens before them. Every other transition passes.
func TripGuard(_, next screen.Config) error {
	var err error
	switch c := next.(type) {
	case screen.Hotel:
		if c.SelectedFlight.IsZero() {
			err = errNoFlight
		}
	case screen.HotelForTrain:
		if c.SelectedTrain.IsZero() || c.SelectedCoach == "" {
			err = errNoTrain
		}
	case screen.TripItinerary:
		switch {
		case c.SelectedHotel.Name == "" && c.SelectedHotel.ID == "":
			err = errNoHotel
		case (c.SelectedFlight == nil || c.SelectedFlight.IsZero()) && (c.SelectedTrain == nil || c.SelectedTrain.IsZero()):
			err = errNoTransport
		}
	case screen.TripConfirmation:
		if c.Destination == "" {
			err = errNoDestination
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %w", router.ErrInvalidTransition, err)
	}
	return nil
}
