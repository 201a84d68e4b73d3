// SPDX-License-Identifier: MPL-2.0

package watch

import "time"

type (
	// Clock is the time source of the pollers. Tests substitute a fake one.
	Clock interface {
		Now() time.Time
		After(d time.Duration) <-chan time.Time
	}

	// RealClock reads the system time.
	RealClock struct{}
)

// Now returns the current system time.
func (RealClock) Now() time.Time { return time.Now() }

// After returns a channel that receives once d has elapsed.
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
