// Package ir provides the value types shared by every shiptrace component.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps ir the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - Records are schema-on-read: column names come from the backing file,
//     never from code
//   - Values are a closed set of scalars (Null, String, Int, Float, Bool)
//   - Records are immutable once read; accessors return copies
//   - All JSON tags use snake_case
//   - Failures are *Error values with stable codes, so callers can render
//     them as data
package ir
