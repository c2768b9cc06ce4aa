package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BrandonKowalski/voyage/pkg/voyage/services"
)

func TestSignUpThenSignIn(t *testing.T) {
	svc := New().Services()
	ctx := context.Background()

	id, err := svc.Auth.SignUp(ctx, "Ravi@example.com", "hunter22")
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.Auth.SignIn(ctx, "ravi@example.com", "hunter22")
	if err != nil || got != id {
		t.Fatalf("sign in = %q, %v; want %q", got, err, id)
	}
	if _, err := svc.Auth.SignIn(ctx, "ravi@example.com", "nope"); !errors.Is(err, services.ErrInvalidCredentials) {
		t.Fatalf("err = %v", err)
	}
}

func TestTripsAreScopedToUser(t *testing.T) {
	svc := New().Services()
	ctx := context.Background()

	if _, err := svc.Trips.Save(ctx, "a", services.TripRequest{CityName: "Goa", TotalCost: 20000}); err != nil {
		t.Fatal(err)
	}
	a, _ := svc.Trips.History(ctx, "a")
	b, _ := svc.Trips.History(ctx, "b")
	if len(a) != 1 || a[0].Destination != "Goa" || len(b) != 0 {
		t.Fatalf("a = %v, b = %v", a, b)
	}
}

func TestLatencyHonoursCancellation(t *testing.T) {
	b := New()
	b.Latency = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := b.Services().Cities.Search(ctx, "goa"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestCitySearchIsCaseInsensitive(t *testing.T) {
	got, err := New().Services().Cities.Search(context.Background(), "  JAI ")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].City != "Jaipur" {
		t.Fatalf("got %v", got)
	}
}

func TestRecommendationsFollowHistory(t *testing.T) {
	svc := New().Services()
	ctx := context.Background()

	fresh, err := svc.Recommendations.For(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.NextCity != "Goa" || len(fresh.Similar) != 0 {
		t.Fatalf("without history = %+v", fresh)
	}

	if _, err := svc.Trips.Save(ctx, "a", services.TripRequest{CityName: "Jaipur"}); err != nil {
		t.Fatal(err)
	}
	rec, err := svc.Recommendations.For(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if rec.NextCity != "Goa" || len(rec.Similar) != 1 || rec.Similar[0] != "Udaipur" {
		t.Fatalf("after Jaipur = %+v", rec)
	}

	if _, err := svc.Recommendations.For(ctx, ""); !errors.Is(err, services.ErrUnauthenticated) {
		t.Fatalf("anonymous err = %v", err)
	}
}
