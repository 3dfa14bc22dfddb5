// Package records holds the row model shared by the reconciler and the data
// store adapters: Record, the (identifier, year) Pair dedup key, and the
// closed Status enum with its sheet labels.
//
// Input rows are normalized here before reconciliation. ForwardFill carries
// blank scheme names down from the nearest preceding value, and ParseInt
// applies the lenient numeric coercion used for spreadsheet cells.
package records
