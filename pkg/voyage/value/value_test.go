package value_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/BrandonKowalski/voyage/pkg/voyage/value"
)

func TestSubscribeReceivesCurrentThenUpdates(t *testing.T) {
	v := value.New("a")

	var got []string
	unsubscribe := v.Subscribe(func(s string) { got = append(got, s) })

	v.Set("b")
	v.Update(func(s string) string { return s + "c" })
	unsubscribe()
	unsubscribe()
	v.Set("ignored")

	if want := []string{"a", "b", "bc"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if v.Len() != 0 {
		t.Fatalf("subscribers = %d", v.Len())
	}
	if v.Get() != "ignored" {
		t.Fatalf("Get = %q", v.Get())
	}
}

func TestUnsubscribeDuringNotification(t *testing.T) {
	v := value.New(0)

	var unsubscribe func()
	calls := 0
	unsubscribe = v.Subscribe(func(n int) {
		calls++
		if n == 1 {
			unsubscribe()
		}
	})

	v.Set(1)
	v.Set(2)

	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func ExampleValue() {
	query := value.New("")
	query.Subscribe(func(q string) { fmt.Printf("query=%q\n", q) })
	query.Set("goa")

	// Output:
	// query=""
	// query="goa"
}
