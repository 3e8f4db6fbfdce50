// Package geometry splits raw route polylines into renderable segments.
package geometry
