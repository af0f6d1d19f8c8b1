// Package textutil provides name handling for files and output groups.
//
// Group names come from source paths, which may carry separators, characters
// that are unsafe on some filesystems, or decomposed Unicode (common on macOS
// volumes). GroupName folds all of that into a single NFC-normalized path
// segment so that the same strip always lands in the same output directory.
package textutil
