package physics

import "math"

// Shape Class
const (
	SHAPE_CLASS_CIRCLE = iota
	SHAPE_CLASS_SEGMENT
	SHAPE_CLASS_POLY
	SHAPE_CLASS_NUM
)

// MassData is the mass, center of mass and rotational inertia about the body origin of a shape.
type MassData struct {
	Mass   float64
	Center Vector
	I      float64
}

// RayCastInput is the segment P1 + MaxFraction * (P2 - P1).
type RayCastInput struct {
	P1, P2      Vector
	MaxFraction float64
}

// RayCastOutput is the hit normal and the fraction along the ray where the hit occurred.
type RayCastOutput struct {
	Normal   Vector
	Fraction float64
}

// Shape is a convex collision shape in body local coordinates. Shapes are owned by fixtures,
// which clone the shape handed to them.
type Shape interface {
	Class() int
	Radius() float64
	ComputeBB(xf Transform) BB
	ComputeMass(density float64) MassData
	TestPoint(xf Transform, p Vector) bool
	RayCast(input RayCastInput, xf Transform) (RayCastOutput, bool)
	Clone() Shape

	distanceProxy() DistanceProxy
}

/// Area of a hollow circle.
func AreaForCircle(r1, r2 float64) float64 {
	return math.Pi * math.Abs(r1*r1-r2*r2)
}

/// Moment of inertia for a hollow circle.
/// r1 and r2 are the inner and outer diameters. A solid circle has an inner diameter of 0.
func MomentForCircle(m, r1, r2 float64, offset Vector) float64 {
	return m * (0.5*(r1*r1+r2*r2) + offset.LengthSq())
}

/// Moment of inertia for a solid box centered on the body.
func MomentForBox(m, width, height float64) float64 {
	return m * (width*width + height*height) / 12.0
}
