// Package fileutil holds small filesystem helpers shared by writers.
package fileutil
