// Package main hosts the slasher CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, applies flag overrides, and
// hands the work to internal/pipeline. Tables and summaries go to stdout;
// logs and progress go to stderr.
package main
