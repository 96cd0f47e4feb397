package pagetext

import (
	"strings"
	"testing"
)

func TestJoinPagesRoundTrip(t *testing.T) {
	pages := []string{
		"First page content.",
		"Second page content.",
		"Third page content.",
	}
	text := JoinPages(pages)

	got := SplitPages(text)
	if len(got) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(got))
	}
	for i, p := range got {
		if p != pages[i] {
			t.Errorf("page %d: got %q, want %q", i+1, p, pages[i])
		}
	}
}

func TestPageOffsets(t *testing.T) {
	text := "page one text\n\n--- Page 2 ---\n\npage two text"
	offsets := PageOffsets(text)

	if len(offsets) != 2 {
		t.Fatalf("expected 2 offsets, got %d: %v", len(offsets), offsets)
	}
	if offsets[0] != 0 {
		t.Errorf("first offset should be 0, got %d", offsets[0])
	}
	if !strings.HasPrefix(text[offsets[1]:], "page two") {
		t.Errorf("second offset points at %q", text[offsets[1]:])
	}
}

func TestPageOffsetsNoMarkers(t *testing.T) {
	offsets := PageOffsets("just one page of text")
	if len(offsets) != 1 || offsets[0] != 0 {
		t.Fatalf("expected [0], got %v", offsets)
	}
}

func TestPageNumberAt(t *testing.T) {
	offsets := []int{0, 100, 250}

	tests := []struct {
		pos  int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{200, 2},
		{250, 3},
		{9999, 3},
	}
	for _, tt := range tests {
		if got := PageNumberAt(offsets, tt.pos); got != tt.want {
			t.Errorf("PageNumberAt(%d) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestParseMarkerNumber(t *testing.T) {
	if n := ParseMarkerNumber("--- Page 7 ---"); n != 7 {
		t.Errorf("expected 7, got %d", n)
	}
	if n := ParseMarkerNumber("Page 7"); n != 0 {
		t.Errorf("expected 0 for non-marker, got %d", n)
	}
}

func TestFromTextPassthrough(t *testing.T) {
	in := "line one\nline two"
	out, err := FromFile(strings.NewReader(in), "scan.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != in {
		t.Errorf("got %q, want %q", out, in)
	}
}

func TestFromFileUnsupported(t *testing.T) {
	if _, err := FromFile(strings.NewReader("x"), "file.xyz"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
