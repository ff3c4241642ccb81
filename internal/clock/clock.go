// Package clock abstracts the current time so the edit/restore window checks
// stay deterministic under test.
package clock

import "time"

// Clock supplies the current instant. Services take exactly one reading per
// operation so every window check within an invocation agrees.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by the wall clock.
func System() Clock { return systemClock{} }
