// Package report renders diagnostic artifacts for a sliced group: a chart of
// row differences with the chosen cuts marked, and a PDF bundling the
// segments as pages.
package report
