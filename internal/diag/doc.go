// Package diag is the diagnostic model for description loading and
// generation.
//
// Loaders report problems through a Reporter instead of failing on the first
// one, so a user fixing a description sees every finding of a run at once.
// A Diagnostic carries a severity, a stable code (DSC#### for description
// problems, GEN#### for generation), a message and the location in the
// description file: path, dotted TOML key and, when the decoder knows it,
// line and column.
//
// BagReporter collects into a Bag, which sorts and deduplicates so output is
// deterministic. Rendering lives in internal/diagfmt.
package diag
