// Package engine binds configuration to the investigation components.
//
// An Engine owns one query engine over the configured data root and builds
// the timeline fuser, cost analyzer and report assembler on top of it. Every
// operation is a single synchronous pass over the files on disk: nothing is
// cached between calls, so edits to the data directory are visible to the
// next call.
//
// Each externally triggered investigation step can be tagged with a trace id
// from NewTraceID. Production ids are UUIDv7, so they sort by creation time
// in logs.
//
// An Engine is immutable after New and safe for concurrent use.
package engine
