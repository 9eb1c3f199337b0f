// Package clock provides a tiny time abstraction.
//
// Expiry windows, rate-limit windows and lockouts all read time through the
// Clocker interface instead of calling time.Now() directly. Tests swap in a
// Manual clock and advance it explicitly.
package clock
