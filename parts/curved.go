package parts

import "gonum.org/v1/gonum/spatial/r3"

// Curved-array deploy tokens, as spelled by the vendor.
const (
	CurvedStateRetracted  = "RETRACTED"
	CurvedStateExtending  = "EXTENDING"
	CurvedStateExtended   = "EXTENDED"
	CurvedStateRetracting = "RETRACTING"
	CurvedStateBroken     = "BROKEN"
)

// Parameter keys the curved-array vendor exposes through its Params map.
const (
	CurvedParamChargeRate    = "chargeRate"
	CurvedParamDeployState   = "deployState"
	CurvedParamAnimationSecs = "animationDuration"
	CurvedParamRetractable   = "retractable"
)

// CurvedArray is a multi-surface wraparound array. The vendor does not
// expose typed fields; everything goes through a free-form parameter map
// and state is a string token. The adapter has to look fields up by name
// and treat missing ones as an initialization failure.
type CurvedArray struct {
	Params map[string]any

	// SurfaceNormals holds one facing per collecting segment in the
	// vehicle's local frame.
	SurfaceNormals []r3.Vec

	animRemaining float64
}

// NewCurvedArray builds an array with the vendor's default parameters.
func NewCurvedArray(chargeRate float64, normals []r3.Vec) *CurvedArray {
	return &CurvedArray{
		Params: map[string]any{
			CurvedParamChargeRate:    chargeRate,
			CurvedParamDeployState:   CurvedStateRetracted,
			CurvedParamAnimationSecs: 8.0,
			CurvedParamRetractable:   true,
		},
		SurfaceNormals: normals,
	}
}

// Lookup fetches a named parameter.
func (c *CurvedArray) Lookup(name string) (any, bool) {
	v, ok := c.Params[name]
	return v, ok
}

// Set stores a named parameter.
func (c *CurvedArray) Set(name string, value any) {
	if c.Params == nil {
		c.Params = make(map[string]any)
	}
	c.Params[name] = value
}

// DeployToken returns the current deploy-state token, or "" when unset.
func (c *CurvedArray) DeployToken() string {
	tok, _ := c.Params[CurvedParamDeployState].(string)
	return tok
}

// RequestDeploy begins the extend animation when retracted.
func (c *CurvedArray) RequestDeploy() {
	if c.DeployToken() != CurvedStateRetracted {
		return
	}
	c.Set(CurvedParamDeployState, CurvedStateExtending)
	c.animRemaining = c.animationSecs()
}

// RequestRetract begins the retract animation when extended.
func (c *CurvedArray) RequestRetract() {
	if c.DeployToken() != CurvedStateExtended {
		return
	}
	if retractable, _ := c.Params[CurvedParamRetractable].(bool); !retractable {
		return
	}
	c.Set(CurvedParamDeployState, CurvedStateRetracting)
	c.animRemaining = c.animationSecs()
}

// Animate advances the deploy animation by dt seconds.
func (c *CurvedArray) Animate(dt float64) {
	tok := c.DeployToken()
	if tok != CurvedStateExtending && tok != CurvedStateRetracting {
		return
	}
	c.animRemaining -= dt
	if c.animRemaining > 0 {
		return
	}
	c.animRemaining = 0
	if tok == CurvedStateExtending {
		c.Set(CurvedParamDeployState, CurvedStateExtended)
	} else {
		c.Set(CurvedParamDeployState, CurvedStateRetracted)
	}
}

func (c *CurvedArray) animationSecs() float64 {
	if secs, ok := c.Params[CurvedParamAnimationSecs].(float64); ok && secs > 0 {
		return secs
	}
	return 8.0
}
