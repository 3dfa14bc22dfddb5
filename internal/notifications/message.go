package notifications

import (
	"fmt"
	"strings"

	"skknicheck/internal/reconcile"
)

// Message is a rendered notification shared by every channel.
type Message struct {
	Subject  string
	Body     string
	Tags     []string
	Priority string
}

// RevokedMessage renders the weekly alert for revoked standards.
func RevokedMessage(alerts []reconcile.Alert) Message {
	lines := []string{"Berikut daftar SKKNI berstatus DICABUT yang masih terbuka:", ""}
	for _, a := range alerts {
		lines = append(lines, fmt.Sprintf("- %s, Nomor %d Tahun %d", a.SchemeName, a.Number, a.Year))
	}
	lines = append(lines,
		"",
		"Tindakan yang diharapkan:",
		"1. Verifikasi status di skkni.kemnaker.go.id.",
		"2. Sesuaikan dokumen/skema bila terdampak.",
		"",
		"Email ini otomatis terkirim.",
	)
	return Message{
		Subject:  fmt.Sprintf("[Pemberitahuan Monitor SKKNI] %d SKKNI baru terdeteksi DICABUT", len(alerts)),
		Body:     strings.Join(lines, "\n"),
		Tags:     []string{"skkni", "dicabut"},
		Priority: "high",
	}
}

func errorMessage(err error, stage string) Message {
	var b strings.Builder
	b.WriteString("Monitor SKKNI gagal")
	if stage = strings.TrimSpace(stage); stage != "" {
		b.WriteString(" pada tahap ")
		b.WriteString(stage)
	}
	b.WriteString(": ")
	if err != nil {
		b.WriteString(strings.TrimSpace(err.Error()))
	} else {
		b.WriteString("unknown")
	}
	return Message{
		Subject:  "[Monitor SKKNI] Run gagal",
		Body:     b.String(),
		Tags:     []string{"skkni", "error"},
		Priority: "high",
	}
}

func testMessage() Message {
	return Message{
		Subject:  "[Monitor SKKNI] Test",
		Body:     "Notification system test",
		Tags:     []string{"skkni", "test"},
		Priority: "low",
	}
}
