// Package sheet is the row-store adapter used by the writers.
//
// A Backend exposes the handful of spreadsheet primitives the pipeline
// needs: sheet properties, loading a cell range, writing cells, growing the
// row count, and inserting or copying a column. Sheet wraps a Backend with a
// loaded cell cache and a staged change set, so callers can always inspect
// the pending diff before anything is committed.
//
// Rows and columns are 0-based throughout. Dates are stored as spreadsheet
// serial numbers, see SerialDate.
package sheet
