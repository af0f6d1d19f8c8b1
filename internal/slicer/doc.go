// Package slicer finds the rows at which a tall image can be cut without
// bisecting visual content.
//
// A cut candidate is a row whose neighbour below differs from it by no more
// than Params.Threshold in every channel of every column. Strategies turn
// candidates into an ordered boundary list that starts at 0, ends at the
// buffer height, and strictly increases:
//
//   - Standard tracks the most recent candidate and promotes it once the
//     target segment height is reached, confirming it with the aura-margin
//     band check (and shifting it upward when the band below is busy).
//   - Central searches outward from each segment's target height for the
//     nearest candidate that sits in a uniform band.
//
// Strategies are pure functions of the buffer and parameters; they never
// suspend, allocate per-row state beyond the boundary list, or depend on time.
package slicer
