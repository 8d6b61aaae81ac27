package boilerplate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nkotake/seion/internal/pagetext"
)

func TestSignature_DigitsGeneralized(t *testing.T) {
	a := Signature("- 12 -")
	b := Signature("- 347 -")
	if a != b {
		t.Errorf("expected page-number variants to share a signature: %q vs %q", a, b)
	}
	if !strings.Contains(a, "[NUM]") {
		t.Errorf("expected [NUM] placeholder, got %q", a)
	}
}

func TestSignature_DatesGeneralized(t *testing.T) {
	a := Signature("報告書 2024年3月15日")
	b := Signature("報告書 2023年12月1日")
	if a != b {
		t.Errorf("expected dated headers to share a signature: %q vs %q", a, b)
	}
	if !strings.Contains(a, "[DATE]") {
		t.Errorf("expected [DATE] placeholder, got %q", a)
	}
}

func TestSignature_WhitespaceCollapsed(t *testing.T) {
	if Signature("Page   3") != Signature("Page 3") {
		t.Error("expected internal whitespace to be normalized")
	}
}

func pageWith(index int, header, footer string, bodyLines ...string) pagetext.Page {
	lines := []string{header, ""}
	lines = append(lines, bodyLines...)
	lines = append(lines, "", footer)
	return pagetext.Page{Index: index, Lines: lines}
}

func TestDetect_RecurringHeaderAndFooter(t *testing.T) {
	var pages []pagetext.Page
	for i := 1; i <= 10; i++ {
		pages = append(pages, pageWith(i,
			"報告書 2024",
			fmt.Sprintf("- %d -", i),
			strings.Repeat("あ", i)+"で始まる本文の一行目です。",
			strings.Repeat("い", i)+"で始まる本文の二行目です。",
		))
	}

	set := Detect(pages, DefaultConfig())

	if !set.IsHeader(Signature("報告書 2024")) {
		t.Error("expected recurring top line to be classified as header")
	}
	if !set.IsFooter(Signature("- 5 -")) {
		t.Error("expected page-number footer to be detected via digit generalization")
	}
	if set.Contains(Signature("あで始まる本文の一行目です。")) {
		t.Error("body text must not be detected as boilerplate")
	}
}

func TestDetect_BelowThresholdRetained(t *testing.T) {
	// The candidate appears on 3 of 10 pages: below the 0.4 fraction.
	var pages []pagetext.Page
	for i := 1; i <= 10; i++ {
		header := "本文だけのページです。"
		if i <= 3 {
			header = "たまに出る行"
		}
		pages = append(pages, pageWith(i, header, "結びの行です。"))
	}

	set := Detect(pages, DefaultConfig())
	if set.Contains(Signature("たまに出る行")) {
		t.Error("a line below the occurrence threshold must not be boilerplate")
	}
}

func TestDetect_SinglePageYieldsNothing(t *testing.T) {
	page := pageWith(1, "ヘッダー", "- 1 -", "本文。")
	set := Detect([]pagetext.Page{page}, DefaultConfig())
	if set.Size() != 0 {
		t.Errorf("single page must yield an empty set, got %d signatures", set.Size())
	}
}

func TestDetect_TieClassifiedAsFooter(t *testing.T) {
	// The same line at the top of half the pages and the bottom of the
	// other half: position counts tie, and ties default to footer.
	var pages []pagetext.Page
	for i := 1; i <= 4; i++ {
		if i%2 == 0 {
			pages = append(pages, pagetext.Page{Index: i, Lines: []string{"運営事務局", "本文です。"}})
		} else {
			pages = append(pages, pagetext.Page{Index: i, Lines: []string{"本文です。", "運営事務局"}})
		}
	}

	set := Detect(pages, DefaultConfig())
	sig := Signature("運営事務局")
	if !set.IsFooter(sig) {
		t.Error("expected tie to classify as footer")
	}
	if set.IsHeader(sig) {
		t.Error("a signature must not be in both groups")
	}
}

func TestDetect_LongLinesIgnored(t *testing.T) {
	long := strings.Repeat("長い本文がそのまま繰り返されてしまったケースを想定した文章です。", 5)
	var pages []pagetext.Page
	for i := 1; i <= 6; i++ {
		pages = append(pages, pagetext.Page{Index: i, Lines: []string{long, "本文。"}})
	}

	set := Detect(pages, DefaultConfig())
	if set.Contains(Signature(long)) {
		t.Error("lines over the length cutoff must not become boilerplate")
	}
}

func TestDetect_TinyPageSetNeedsTwoOccurrences(t *testing.T) {
	// With 2 pages the floor of two occurrences applies: a line present on
	// both pages qualifies, a line on one page does not.
	pages := []pagetext.Page{
		{Index: 1, Lines: []string{"社内資料", "一ページ目の本文。", "固有の結び"}},
		{Index: 2, Lines: []string{"社内資料", "二ページ目の本文。", "別の結び"}},
	}

	set := Detect(pages, DefaultConfig())
	if !set.Contains(Signature("社内資料")) {
		t.Error("a line on both of two pages should qualify")
	}
	if set.Contains(Signature("固有の結び")) {
		t.Error("a line on a single page must not qualify")
	}
}
