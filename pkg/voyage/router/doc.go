// Package router owns the back stack of screens.
//
// A Navigator holds an ordered list of entries. Each entry pairs a
// screen.Config with exactly one live child built for it by a FactoryFunc.
// Only the Navigator changes the shape of the stack; components ask for
// navigation through their parent and never touch it directly.
//
// # Basic Usage
//
//	nav, err := router.New(factory.Build, router.Options{
//	    Dispatcher: loop,
//	    Initial:    []screen.Config{screen.Home{}},
//	})
//	if err != nil {
//	    return err
//	}
//	defer nav.Close()
//
//	nav.Push(screen.CityDetails{CityID: "42", CityName: "Goa"})
//	nav.Pop()
//
// # Snapshots
//
// Every completed Push, Pop, Replace or Reset publishes exactly one Snapshot.
// Rejected operations publish nothing. Subscribe delivers snapshots
// synchronously on the UI thread; Observe yields them as an iterator with
// per-consumer buffering.
//
// # Lifecycle
//
// Each entry owns a lifecycle.Scope. The scope of the active entry is
// resumed and the scopes below it are paused. Popping, replacing or
// resetting an entry destroys its scope exactly once, which cancels any
// work the child started and releases what it acquired.
//
// # Saved State
//
// SaveState serializes the configurations (never the children). Restore
// rebuilds every child through the factory before the first snapshot.
package router
