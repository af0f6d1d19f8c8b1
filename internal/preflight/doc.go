// Package preflight provides the setup checks that run before any group is
// processed.
//
// A missing or unreadable input root, or an output root that cannot be
// created or written, aborts the run up front instead of failing every group
// one by one. Free-space reporting is informational only.
package preflight
