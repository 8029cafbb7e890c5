// Package bundle owns the observation parameter model of the adjustment.
//
// Responsibilities: grouping the images that share one instrument
// trajectory/rotation into an Observation, sizing the weight, correction
// and sigma vectors from the solve settings, converting a-priori sigmas
// into regularization weights, applying solver correction slices to the
// shared polynomial state, and formatting the adjusted-parameter report.
// Key types: Observation, SolveSettings, ParameterLayout.
//
// Dependency rule: bundle drives ephemeris through its polynomial
// get/set contract and knows nothing about persistence, plotting or the
// normal-equations solver that produces the correction vectors.
package bundle
