package cleaner

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nkotake/seion/internal/boilerplate"
	"github.com/nkotake/seion/internal/pagetext"
	"github.com/nkotake/seion/internal/structural"
)

func emptySet() boilerplate.Set {
	return boilerplate.Detect(nil, boilerplate.DefaultConfig())
}

func TestStripPreamble(t *testing.T) {
	lines := []string{
		"PDFファイル: report.pdf",
		"ページ番号: 3",
		"==========",
		"本文の最初の行です。",
		"本文の二行目です。",
	}
	got := StripPreamble(lines, DefaultPreambleMarkers)
	want := []string{"本文の最初の行です。", "本文の二行目です。"}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStripPreamble_NoPreamblePassesThrough(t *testing.T) {
	lines := []string{"普通の本文です。", "二行目です。"}
	got := StripPreamble(lines, DefaultPreambleMarkers)
	if len(got) != 2 || got[0] != lines[0] || got[1] != lines[1] {
		t.Errorf("expected untouched lines, got %v", got)
	}
}

func TestClean_RemovesHeadingAndPageNumber(t *testing.T) {
	page := pagetext.Page{Index: 1, Lines: []string{
		"第一章",
		"",
		"本文の段落です。",
		"- 3 -",
	}}
	got := Clean(page, emptySet(), structural.NewClassifier(0), DefaultOptions())
	if got != "本文の段落です。" {
		t.Errorf("got %q", got)
	}
}

func TestClean_StripStructuralDisabledKeepsHeading(t *testing.T) {
	page := pagetext.Page{Index: 1, Lines: []string{
		"第一章",
		"",
		"本文の段落です。",
		"- 3 -",
	}}
	opts := DefaultOptions()
	opts.StripStructural = false
	got := Clean(page, emptySet(), structural.NewClassifier(0), opts)
	if !strings.Contains(got, "第一章") {
		t.Errorf("heading should survive with stripping disabled: %q", got)
	}
	if strings.Contains(got, "- 3 -") {
		t.Errorf("page number must always be removed: %q", got)
	}
}

func TestClean_EndToEndWithDetectedBoilerplate(t *testing.T) {
	var pages []pagetext.Page
	for i := 1; i <= 10; i++ {
		pages = append(pages, pagetext.Page{Index: i, Lines: []string{
			"技術資料 2024年1月5日",
			"",
			strings.Repeat("あ", i) + "で始まる 本文 です。",
			strings.Repeat("い", i) + "から続く本文です。",
			"",
			fmt.Sprintf("- %d -", i),
		}})
	}
	set := boilerplate.Detect(pages, boilerplate.DefaultConfig())
	cls := structural.NewClassifier(0)

	got := Clean(pages[4], set, cls, DefaultOptions())
	if strings.Contains(got, "技術資料") {
		t.Errorf("running header must be removed: %q", got)
	}
	if strings.Contains(got, "- 5 -") {
		t.Errorf("running footer must be removed: %q", got)
	}
	if !strings.Contains(got, "あああああで始まる本文です。") {
		t.Errorf("body must survive with gaps closed: %q", got)
	}
	if !strings.Contains(got, "いいいいいから続く本文です。") {
		t.Errorf("second body line must survive: %q", got)
	}
}

func TestClean_NoiseOnlyPageIsEmpty(t *testing.T) {
	page := pagetext.Page{Index: 2, Lines: []string{
		"第二章",
		"",
		"42",
	}}
	got := Clean(page, emptySet(), structural.NewClassifier(0), DefaultOptions())
	if got != "" {
		t.Errorf("expected empty result for a noise-only page, got %q", got)
	}
}
