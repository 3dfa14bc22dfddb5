package classify

import (
	"regexp"
	"testing"

	"skknicheck/internal/records"
	"skknicheck/internal/search"
)

func TestClassifyTextFixtures(t *testing.T) {
	c := Default()
	cases := []struct {
		name string
		text string
		want records.Status
	}{
		{"revoked keyword", "Keputusan Menteri ini dicabut dan dinyatakan", records.StatusDicabut},
		{"negated active", "SKKNI Nomor 12 Tahun 2018 tidak berlaku lagi", records.StatusDicabut},
		{"negated active without space", "status: TIDAKBERLAKU", records.StatusDicabut},
		{"active", "SKKNI ini masih Berlaku sejak ditetapkan", records.StatusBerlaku},
		{"no keyword", "Standar Kompetensi Kerja Nasional Indonesia", records.StatusNotFound},
		{"empty", "", records.StatusNotFound},
		{"word boundary", "PEMBERLAKUAN standar", records.StatusNotFound},
		{"revoked inside word", "DICABUTNYA", records.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.ClassifyText(tc.text); got != tc.want {
				t.Fatalf("ClassifyText(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestNegatedActiveWinsOverActive(t *testing.T) {
	c := Default()
	texts := []string{
		"BERLAKU ... TIDAK BERLAKU",
		"tidak berlaku; sebelumnya berlaku",
		"Masih berlaku? Tidak Berlaku sejak 2020",
	}
	for _, text := range texts {
		if got := c.ClassifyText(text); got != records.StatusDicabut {
			t.Fatalf("ClassifyText(%q) = %v, want Dicabut", text, got)
		}
	}
}

func TestRuleOrderMatters(t *testing.T) {
	reversed := New(
		Rule{Pattern: regexp.MustCompile(`\bBERLAKU\b`), Status: records.StatusBerlaku},
		Rule{Pattern: regexp.MustCompile(`\bTIDAK\s*BERLAKU\b`), Status: records.StatusDicabut},
	)
	if got := reversed.ClassifyText("tidak berlaku"); got != records.StatusBerlaku {
		t.Fatalf("expected first matching rule to win, got %v", got)
	}
}

func TestClassifyIsPure(t *testing.T) {
	c := Default()
	inputs := []string{"tidak berlaku", "berlaku", "dicabut", "kosong"}
	first := make([]records.Status, len(inputs))
	for i, in := range inputs {
		first[i] = c.ClassifyText(in)
	}
	for i := len(inputs) - 1; i >= 0; i-- {
		if got := c.ClassifyText(inputs[i]); got != first[i] {
			t.Fatalf("ClassifyText(%q) changed between calls: %v then %v", inputs[i], first[i], got)
		}
	}
}

func TestClassifyJoinsTitleAndSnippet(t *testing.T) {
	results := []search.Result{
		{Title: "SKKNI 12 2018", Snippet: "standar kompetensi"},
		{Title: "Status", Snippet: "tidak"},
		{Title: "berlaku", Snippet: ""},
	}
	if got := Default().Classify(results); got != records.StatusDicabut {
		t.Fatalf("expected joined blob to classify as Dicabut, got %v", got)
	}
	if got := Default().Classify(nil); got != records.StatusNotFound {
		t.Fatalf("expected empty results to be not found, got %v", got)
	}
}

func TestZeroClassifier(t *testing.T) {
	var c Classifier
	if got := c.ClassifyText("DICABUT"); got != records.StatusNotFound {
		t.Fatalf("zero classifier should fall back to not found, got %v", got)
	}
}
