// Package catalog discovers and reads the tabular data sources under a data
// root.
//
// A source is any .csv or .tsv file at any depth below the root. Sources have
// no persisted identity: every call walks the root again, so files added or
// removed between calls are picked up without coordination.
//
// # Schema-on-read
//
// Column names come from the header row. Column kinds are inferred from the
// cells actually read (see Load), so the same file can report a narrower kind
// when only its first row is sampled.
//
// # Name resolution
//
// Resolve maps a caller-supplied source name to a file:
//  1. exact match on the file name, with or without its extension
//  2. otherwise the first file whose stem contains the name, compared under
//     Unicode case folding
//
// Walk order is lexical, which makes "first" deterministic.
package catalog
