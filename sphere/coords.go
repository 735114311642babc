// Package sphere holds the coordinate conversions and the von Mises-Fisher
// density used to place toponym candidates on the unit sphere.
package sphere

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// LatToRadians maps latitude in degrees to colatitude in radians, so that
// the north pole sits at 0 and the south pole at pi.
func LatToRadians(lat float64) float64 {
	return (lat/-180 + 0.5) * math.Pi
}

// LongToRadians maps longitude in degrees to azimuth in radians.
func LongToRadians(long float64) float64 {
	return long / 180 * math.Pi
}

// GeographicToSpherical converts degrees latitude/longitude to
// colatitude/azimuth in radians.
func GeographicToSpherical(lat, long float64) (theta, phi float64) {
	return LatToRadians(lat), LongToRadians(long)
}

// SphericalToCartesian converts colatitude/azimuth to a cartesian unit
// vector.
func SphericalToCartesian(theta, phi float64) []float64 {
	return []float64{
		math.Sin(theta) * math.Cos(phi),
		math.Sin(theta) * math.Sin(phi),
		math.Cos(theta),
	}
}

// CartesianToSpherical converts a cartesian unit vector back to
// colatitude/azimuth.
func CartesianToSpherical(x []float64) (theta, phi float64) {
	return math.Acos(x[2]), math.Atan2(x[1], x[0])
}

// SphericalToGeographic converts colatitude/azimuth back to degrees
// latitude/longitude.
func SphericalToGeographic(theta, phi float64) (lat, long float64) {
	return (theta/-math.Pi)*180 + 90, (phi / math.Pi) * 180
}

// GeographicToCartesian converts degrees latitude/longitude to a cartesian
// unit vector.
func GeographicToCartesian(lat, long float64) []float64 {
	theta, phi := GeographicToSpherical(lat, long)
	return SphericalToCartesian(theta, phi)
}

// CartesianToGeographic converts a cartesian unit vector to degrees
// latitude/longitude.
func CartesianToGeographic(x []float64) (lat, long float64) {
	theta, phi := CartesianToSpherical(x)
	return SphericalToGeographic(theta, phi)
}

// Normalize returns mu scaled to unit length.
func Normalize(mu []float64) []float64 {
	out := make([]float64, len(mu))
	floats.AddScaled(out, 1/floats.Norm(mu, 2), mu)
	return out
}
