package parts

// Stable type identifiers for the collector components, as spelled in
// scenario files and adapter registrations.
const (
	TypeDeployable   = "deployable-tracking-array"
	TypeFixed        = "fixed-panel"
	TypeCurved       = "curved-array"
	TypeConcentrator = "concentrator-array"
)
