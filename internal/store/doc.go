// Package store defines the data store boundary of a run and selects a
// backend from configuration.
//
// Backends live in subpackages: gsheets (Google Sheets API v4, the
// production store), csvfile (a local CSV export) and sqlitedb (a SQLite
// table). Each reads a sheet.Table and accepts a sheet.StatusUpdate; none of
// them know about search or classification.
package store
