package geom

// All tolerance constants live here. Every package in the module compares
// against these values; nothing defines a local epsilon. Inconsistent
// tolerances between the topology rebuild and the move operations are the
// classic source of brush corruption, so changing one of these requires
// re-running the volume tests in pkg/csg.
const (
	// PointEpsilon is the distance below which two points are the same
	// vertex. Wide enough to absorb grid snapping error.
	PointEpsilon = 1e-3

	// PlaneEpsilon is the half-width of the "on plane" band used by
	// Classify. Points within this distance of a plane count as lying
	// on it.
	PlaneEpsilon = 1e-3

	// DistanceEpsilon is the tolerance for near-parallel plane detection
	// and linear solves.
	DistanceEpsilon = 1e-4

	// MinVolume is the smallest volume a solid may have before it is
	// considered degenerate.
	MinVolume = 1e-3
)
