// Package store materializes one tabular source into an in-memory SQLite
// database and runs compiled filter queries against it.
//
// A Store lives for exactly one query. Nothing is persisted and no state is
// shared between calls, so concurrent investigations each get their own
// database.
//
// # Layout
//
// The source becomes a single table named "source" whose columns are
// positional (c0, c1, ...). Header names are not used as SQL identifiers
// because SQLite folds identifier case and headers may differ only by case.
// Columns carry no declared type, so every cell keeps the storage class it
// was bound with:
//
//   - Int binds as INTEGER, Float as REAL; the two compare numerically
//   - Bool binds as INTEGER 1/0 and is restored from the schema on scan
//   - String binds as TEXT and never equals a number
//   - Null binds as NULL and never satisfies "="
//
// # Ordering
//
// Rows are inserted in file order inside one transaction; every query
// orders by rowid, so results keep the source's natural row order.
package store
