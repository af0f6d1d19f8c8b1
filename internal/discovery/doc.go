// Package discovery walks an input root and groups image files into the
// logical strips the pipeline slices.
//
// In the default mode every decodable file is its own group. In folder mode
// all files sharing a parent directory form one group and are concatenated
// top to bottom in lexical order. Dotfiles and dot-directories are skipped.
package discovery
