// Package graphio reads and writes the binary graph file format.
//
// A file is a 16-byte header, the full node table, and optionally the UI
// metadata table. The format is fixed-size: every one of the MaxNodes slots
// is written whether in use or not, so the length depends only on whether
// the UI section is present.
//
// Decoding never trusts the payload before the checksum matches, never
// modifies the destination on error, and always finishes with Sanitize,
// which turns corrupt-but-parseable data into a valid graph and reports how
// many repairs it made.
//
// Serialize and Deserialize work on caller-owned buffers and keep no
// package state, so they are safe for concurrent use on distinct graphs.
package graphio
