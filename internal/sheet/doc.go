// Package sheet converts between raw worksheet grids and records.
//
// Table holds a header row plus string cells exactly as a store returned them.
// Records locates the configured headers, builds records with lenient
// integer parsing and forward-fills scheme names. BuildUpdate decides where
// the status column goes and which cells of revoked rows get highlighted,
// producing a StatusUpdate that every store backend understands.
package sheet
