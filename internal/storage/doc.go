// Package storage persists runs on disk.
//
// Each run lives in its own directory under the store root:
//
//	<root>/<id>/metadata.json   run settings, parameters and metrics
//	<root>/<id>/trace.csv       one sim.Sample row per frame
package storage
