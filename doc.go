// Package locator implements the core of a seismic event location
// engine modeled on the USGS NEIC Locator: given a set of station arrival
// picks, it identifies each pick's seismic phase, locates the hypocenter
// by iterative robust regression, and reports a confidence error
// ellipsoid alongside summary quality statistics.
//
// The engine is organized as a set of internal packages wired together by
// locservice.Engine:
//
//	model        event/hypocenter/pick/station data types
//	internal/phaseid     figure-of-merit phase identification
//	internal/rankest     rank-sum (R-estimator) robust statistics
//	internal/decorrelate decorrelation of the residual design matrix
//	internal/linstep     bisection-based line search
//	internal/stepper     one hypocenter-refinement step
//	internal/locloop     the staged outer convergence loop
//	internal/ellipsoid   final confidence error ellipsoid
//	traveltime   travel-time lookup service interface
//	hydra        legacy fixed-column text I/O
//	locservice   JSON/HTTP orchestration
//
// This file also anchors the module's typed error kind (see Error and
// ErrorKind in errors.go), which every package above returns rather than
// a bare string or a panic.
package locator
