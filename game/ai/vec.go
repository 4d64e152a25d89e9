package ai

import "math"

// Vec3 is a point or direction in world space. Y is up; the ground plane is XZ.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length, or the zero vector if v has no length.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-9 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Finite reports whether every component is a real number.
func (v Vec3) Finite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Flat drops the vertical component.
func (v Vec3) Flat() Vec3 { return Vec3{X: v.X, Z: v.Z} }

// Distance returns the straight-line distance between a and b.
func Distance(a, b Vec3) float64 { return b.Sub(a).Len() }

// AngleDeg returns the unsigned angle between a and b in degrees (0..180).
// Either vector being zero-length yields 0.
func AngleDeg(a, b Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la < 1e-9 || lb < 1e-9 {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c) * 180 / math.Pi
}

// Pose is a position plus the direction the owner is facing.
type Pose struct {
	Position Vec3
	Forward  Vec3
}

// Valid reports whether the pose can be used for geometry: finite values and a
// non-zero forward vector.
func (p Pose) Valid() bool {
	return p.Position.Finite() && p.Forward.Finite() && p.Forward.Len() > 1e-9
}
