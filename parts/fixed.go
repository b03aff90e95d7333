package parts

import "gonum.org/v1/gonum/spatial/r3"

// FixedPanel is a body-mounted panel with no deployment machinery and a
// single collecting surface. The vendor gates its own output with the
// Enabled flag, which the adapter clears during initialization.
type FixedPanel struct {
	// OutputRate is the vendor's output in EC/s at reference distance.
	OutputRate float64

	// Enabled gates the vendor's own update path.
	Enabled bool

	Normal r3.Vec

	Broken bool
}
