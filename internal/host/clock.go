// Package host provides concrete implementations of the hub package's
// Clock and CallerResolver collaborator interfaces for running the engine
// as a real standalone process, standing in for the IC actor runtime the
// spec treats as out of scope. The RemoteCaller implementation lives in
// the httpcaller subpackage and the TypeTableEncoder in internal/idl.
package host

import "time"

// SystemClock implements hub.Clock using the wall clock. Time is exposed
// via a small interface rather than a direct time.Now() call so tests can
// substitute a fake.
type SystemClock struct{}

// Now returns the current time in nanoseconds since the Unix epoch.
func (SystemClock) Now() uint64 {
	return uint64(time.Now().UnixNano())
}
