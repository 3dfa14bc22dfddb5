// Package reconcile deduplicates (nomor, tahun) pairs across input rows, looks
// each unique pair up once through a rate gate, classifies the hits, and maps
// the resulting status back onto every row.
//
// Rows without a usable pair are never searched and always end up as
// "Tidak ditemukan". A lookup that exhausts its retries marks only its own
// pair as Error. BuildAlerts turns the reconciled rows into the sorted,
// deduplicated list handed to the notifier.
package reconcile
