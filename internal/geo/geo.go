// Package geo provides the small set of spherical/ellipsoidal geometry
// helpers the location engine needs: geographic/geocentric latitude
// conversion and epicentral distance/azimuth between a source and a
// station. It plays the role astro.go plays for the digest2 solver this
// engine's structure is modeled on, generalized from heliocentric orbit
// geometry to geocentric earthquake geometry.
package geo

import (
	"math"

	"github.com/usgs-neic/go-locator/internal/locutil"
)

// GeoCentricColatitude converts a geographic latitude (degrees) to a
// geocentric colatitude (degrees, 0 at the north pole).
func GeoCentricColatitude(geographicLatDeg float64) float64 {
	if math.Abs(geographicLatDeg) >= 90 {
		// Avoid a tan() singularity at the poles.
		if geographicLatDeg > 0 {
			return 0
		}
		return 180
	}
	geocentricLat := locutil.RadToDeg(math.Atan(locutil.EllipticityFactor *
		math.Tan(locutil.DegToRad(geographicLatDeg))))
	return 90 - geocentricLat
}

// GeographicLatitude is the inverse of GeoCentricColatitude: given a
// geocentric colatitude (degrees), returns the geographic latitude
// (degrees).
func GeographicLatitude(coLatDeg float64) float64 {
	geocentricLat := 90 - coLatDeg
	if math.Abs(geocentricLat) >= 90 {
		return geocentricLat
	}
	geographicLat := locutil.RadToDeg(math.Atan(
		math.Tan(locutil.DegToRad(geocentricLat)) / locutil.EllipticityFactor))
	return geographicLat
}

// DistanceAzimuth computes the epicentral distance and azimuth (both in
// degrees) from a source at (srcCoLatDeg, srcLonDeg) [geocentric colatitude,
// longitude] to a station at geographic (staLatDeg, staLonDeg), using the
// spherical law of cosines. Azimuth is measured clockwise from north at the
// source.
func DistanceAzimuth(srcCoLatDeg, srcLonDeg, staLatDeg, staLonDeg float64) (distanceDeg, azimuthDeg float64) {
	staCoLatDeg := GeoCentricColatitude(staLatDeg)

	srcCoLat := locutil.DegToRad(srcCoLatDeg)
	staCoLat := locutil.DegToRad(staCoLatDeg)
	dLon := locutil.DegToRad(staLonDeg - srcLonDeg)

	sinSrc, cosSrc := math.Sincos(srcCoLat)
	sinSta, cosSta := math.Sincos(staCoLat)
	sinDLon, cosDLon := math.Sincos(dLon)

	cosDelta := cosSrc*cosSta + sinSrc*sinSta*cosDLon
	cosDelta = clamp(cosDelta, -1, 1)
	delta := math.Acos(cosDelta)

	var azimuth float64
	if delta > 1e-12 {
		sinDelta := math.Sin(delta)
		cosAz := (cosSta - cosSrc*cosDelta) / (sinSrc * sinDelta)
		cosAz = clamp(cosAz, -1, 1)
		azimuth = math.Acos(cosAz)
		if sinDLon < 0 {
			azimuth = 2*math.Pi - azimuth
		}
	}

	return locutil.RadToDeg(delta), locutil.RadToDeg(azimuth)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeLongitude wraps a longitude (degrees) into (-180, 180].
func NormalizeLongitude(lonDeg float64) float64 {
	for lonDeg <= -180 {
		lonDeg += 360
	}
	for lonDeg > 180 {
		lonDeg -= 360
	}
	return lonDeg
}
