// Package manifest records slice runs in a SQLite ledger.
//
// A run row is written when processing starts and finalized with counts
// when it ends. Each group's boundaries and outcome, and every segment
// written, are recorded beneath it so `slasher history` can show what a run
// produced. The schema is applied from embedded, ordered migrations.
package manifest
