// ABOUTME: Tests for citation coverage validation
// ABOUTME: Verifies sentence splitting, anchor matching, and coverage math

package cite

import (
	"math"
	"testing"
)

func TestValidateNoCitations(t *testing.T) {
	report := Validate("A. B.", nil)

	if len(report.Details) != 2 {
		t.Fatalf("Expected 2 sentences, got %d", len(report.Details))
	}
	for _, d := range report.Details {
		if d.Covered {
			t.Errorf("Sentence %q should not be covered", d.Sentence)
		}
	}
	if report.CoveragePct != 0.0 {
		t.Errorf("Expected 0.0 coverage, got %v", report.CoveragePct)
	}
}

func TestValidateFullCoverage(t *testing.T) {
	report := Validate(
		"Per SOP-001::PROCEDURE, do X.",
		[]string{"SOP-001::PROCEDURE"},
	)

	if len(report.Details) != 1 {
		t.Fatalf("Expected 1 sentence, got %d", len(report.Details))
	}
	if !report.Details[0].Covered {
		t.Errorf("Sentence should be covered")
	}
	if report.CoveragePct != 100.0 {
		t.Errorf("Expected 100.0 coverage, got %v", report.CoveragePct)
	}
}

func TestValidateEmptyText(t *testing.T) {
	report := Validate("", []string{"SOP-001"})

	if len(report.Details) != 0 {
		t.Fatalf("Expected 0 sentences, got %d", len(report.Details))
	}
	if report.CoveragePct != 0.0 {
		t.Errorf("Expected 0.0 coverage, got %v", report.CoveragePct)
	}
	if report.Details == nil {
		t.Errorf("Details should be an empty slice, not nil")
	}
}

func TestValidateCaseInsensitiveMatch(t *testing.T) {
	report := Validate("follow sop-003 for cleanup.", []string{"SOP-003"})

	if !report.Details[0].Covered {
		t.Errorf("Lowercased anchor occurrence should count as covered")
	}
}

func TestValidateURLAnchorVerbatim(t *testing.T) {
	anchor := "https://example.com/SOP"
	report := Validate("See https://example.com/SOP for details.", []string{anchor})

	if !report.Details[0].Covered {
		t.Errorf("Verbatim URL anchor should count as covered")
	}
}

func TestValidatePartialCoverage(t *testing.T) {
	report := Validate(
		"First step uses SOP-001. Second step is unsourced. Third cites SOP-002.",
		[]string{"SOP-001", "SOP-002"},
	)

	if len(report.Details) != 3 {
		t.Fatalf("Expected 3 sentences, got %d", len(report.Details))
	}
	want := []bool{true, false, true}
	for i, w := range want {
		if report.Details[i].Covered != w {
			t.Errorf("Sentence %d covered = %v, want %v", i, report.Details[i].Covered, w)
		}
	}
	expected := 2.0 / 3.0 * 100
	if math.Abs(report.CoveragePct-expected) > 1e-9 {
		t.Errorf("Expected %.4f coverage, got %v", expected, report.CoveragePct)
	}
}

func TestValidateDuplicateCitationsCollapse(t *testing.T) {
	report := Validate("Uses SOP-001 once.", []string{"SOP-001", "SOP-001", "SOP-001"})

	if report.CoveragePct != 100.0 {
		t.Errorf("Duplicate anchors should not change coverage, got %v", report.CoveragePct)
	}
}

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "terminator mid text",
			text: "Do X. Then Y!  Finally Z?",
			want: []string{"Do X.", "Then Y!", "Finally Z?"},
		},
		{
			name: "no trailing whitespace keeps one sentence",
			text: "version 1.2 applies",
			want: []string{"version 1.2 applies"},
		},
		{
			name: "trailing terminator without whitespace",
			text: "Only one sentence.",
			want: []string{"Only one sentence."},
		},
		{
			name: "surrounding whitespace trimmed",
			text: "  padded text  ",
			want: []string{"padded text"},
		},
		{
			name: "whitespace only",
			text: "   \n\t ",
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitSentences(tc.text)
			if len(got) != len(tc.want) {
				t.Fatalf("Expected %d sentences, got %d: %q", len(tc.want), len(got), got)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("Sentence %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}
