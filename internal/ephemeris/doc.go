// Package ephemeris owns the time-series representation of instrument state.
//
// Responsibilities: caching timestamped position (X/Y/Z) and pointing
// (RA/DEC/TWIST) samples, fitting polynomials of a configured degree to
// those samples over a scaled time axis, and installing externally
// computed polynomial coefficients.
// Key types: Trajectory, Rotation.
//
// Dependency rule: ephemeris knows nothing about observations, solve
// settings, or parameter layouts. The bundle package drives it through
// the polynomial get/set contract only.
package ephemeris
