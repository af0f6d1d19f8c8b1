// Package pipeline orchestrates a slice run.
//
// A run checks its input and output roots, takes an exclusive lock on the
// output root, discovers groups, and processes each group through
// load, scan, extract and persist. A failing group is logged and recorded, and
// the run moves on. Independent groups may be processed by several workers;
// the scan of a single group is always sequential.
package pipeline
