// Package route loads the static per-route line geometry and station
// metadata consumed on every route switch.
package route
