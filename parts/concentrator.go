package parts

import "gonum.org/v1/gonum/spatial/r3"

// ConcentratorArray is a non-deployable multi-mirror collector that aims
// at a configurable target star rather than whatever the simulation
// currently designates as the primary sun. The vendor exposes its output
// through CollectionRate and suppresses itself when Failed.
type ConcentratorArray struct {
	// CollectionRate is the vendor's output in EC/s at reference distance.
	CollectionRate float64

	// TargetBody names the star the mirrors are trimmed for.
	TargetBody string

	SurfaceNormals []r3.Vec

	Failed bool
}
