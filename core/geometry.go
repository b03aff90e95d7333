package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/helioworks/solararray-simulator/model"
)

// ExposureEpsilon is the threshold below which alignment or occlusion is
// treated as zero for production purposes.
const ExposureEpsilon = 1e-4

// CosineAlignment returns the cosine-law alignment of a collecting surface
// with the sun: 1 when facing it directly, falling to 0 at 90° and beyond.
func CosineAlignment(normal, sunDir r3.Vec) float64 {
	nn := r3.Norm(normal)
	ns := r3.Norm(sunDir)
	if nn == 0 || ns == 0 {
		return 0
	}
	cos := r3.Dot(normal, sunDir) / (nn * ns)
	if cos <= 0 {
		return 0
	}
	if cos > 1 {
		cos = 1
	}
	return cos
}

// BestTrackedAlignment returns the best alignment a single-axis tracker
// can achieve: the magnitude of the sun direction's component
// perpendicular to the pivot axis.
func BestTrackedAlignment(pivotAxis, sunDir r3.Vec) float64 {
	an := r3.Norm(pivotAxis)
	sn := r3.Norm(sunDir)
	if an == 0 || sn == 0 {
		return 0
	}
	cos := r3.Dot(pivotAxis, sunDir) / (an * sn)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Sqrt(1 - cos*cos)
}

// MeanAlignment averages the cosine alignment over all collecting
// surfaces. Multi-surface collectors report the mean, not the max or sum.
func MeanAlignment(normals []r3.Vec, sunDir r3.Vec) float64 {
	if len(normals) == 0 {
		return 0
	}
	sum := 0.0
	for _, n := range normals {
		sum += CosineAlignment(n, sunDir)
	}
	return sum / float64(len(normals))
}

// rayHitsSphere reports whether the ray from origin along dir intersects
// the sphere. Only forward intersections count; a ray starting inside the
// sphere is blocked.
func rayHitsSphere(origin, dir r3.Vec, center r3.Vec, radius float64) bool {
	if radius <= 0 {
		return false
	}
	d := r3.Norm(dir)
	if d == 0 {
		return false
	}
	u := r3.Scale(1/d, dir)

	oc := r3.Sub(center, origin)
	if r3.Norm(oc) <= radius {
		return true
	}

	t := r3.Dot(oc, u)
	if t < 0 {
		return false // sphere is behind the surface
	}
	closest := r3.Sub(oc, r3.Scale(t, u))
	return r3.Norm(closest) <= radius
}

// RotateAbout rotates v by angle radians about the given axis.
func RotateAbout(v, axis r3.Vec, angle float64) r3.Vec {
	n := r3.Norm(axis)
	if n == 0 {
		return v
	}
	return r3.NewRotation(angle, r3.Scale(1/n, axis)).Rotate(v)
}

// firstBlocker returns the occluder blocking the sun from origin, if any.
// Occluders belonging to ownPartID are skipped: a collector never shades
// itself.
func firstBlocker(origin, sunDir r3.Vec, occluders []model.Occluder, ownPartID string) (model.Occluder, bool) {
	for _, occ := range occluders {
		if occ.PartID != "" && occ.PartID == ownPartID {
			continue
		}
		if rayHitsSphere(origin, sunDir, occ.CenterM, occ.Radius) {
			return occ, true
		}
	}
	return model.Occluder{}, false
}
