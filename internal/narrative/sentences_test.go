package narrative

import "testing"

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"One sentence.", 1},
		{"One. Two!", 2},
		{"One. Two? Three.", 3},
		{"Trailing fragment without punctuation", 1},
		{"One. Trailing fragment", 2},
	}
	for _, c := range cases {
		if got := SplitSentences(c.in); len(got) != c.want {
			t.Errorf("SplitSentences(%q) = %v (%d), want %d", c.in, got, len(got), c.want)
		}
	}
}

func TestSplitSentencesAddsTerminalPeriod(t *testing.T) {
	got := SplitSentences("A fragment")
	if len(got) != 1 || got[0] != "A fragment." {
		t.Fatalf("got %v", got)
	}
}

func TestNormalizeSectionExactCount(t *testing.T) {
	fallback := "Pad one. Pad two. Pad three."
	cases := []struct {
		name    string
		primary string
	}{
		{"empty", ""},
		{"one", "Only sentence."},
		{"two", "First. Second."},
		{"three", "First. Second. Third."},
		{"five", "A. B. C. D. E."},
	}
	for _, c := range cases {
		out := NormalizeSection(c.primary, fallback, 3)
		if n := len(SplitSentences(out)); n != 3 {
			t.Errorf("%s: got %d sentences: %q", c.name, n, out)
		}
		if out == "" {
			t.Errorf("%s: empty output", c.name)
		}
	}
}

func TestNormalizeSectionPadsFromFallbackThenFiller(t *testing.T) {
	out := NormalizeSection("Primary point.", "Pad one.", 3)
	sentences := SplitSentences(out)
	if sentences[0] != "Primary point." {
		t.Fatalf("primary sentence lost: %v", sentences)
	}
	if sentences[1] != "Pad one." {
		t.Fatalf("fallback sentence not used: %v", sentences)
	}
	if sentences[2] != fillerSentences[0] {
		t.Fatalf("filler not used: %v", sentences)
	}
}

func TestNormalizeSectionEmptyEverything(t *testing.T) {
	out := NormalizeSection("", "", 3)
	if n := len(SplitSentences(out)); n != 3 {
		t.Fatalf("got %d sentences: %q", n, out)
	}
}

func TestNormalizeResultAppliesToAllSections(t *testing.T) {
	res := NormalizeResult(Result{Strengths: "One."}, Result{
		Strengths:        "FA. FB. FC.",
		ImprovementAreas: "FD. FE. FF.",
		Recommendations:  "FG. FH. FI.",
	})
	for name, section := range map[string]string{
		"strengths":       res.Strengths,
		"improvement":     res.ImprovementAreas,
		"recommendations": res.Recommendations,
	} {
		if n := len(SplitSentences(section)); n != 3 {
			t.Errorf("%s: %d sentences: %q", name, n, section)
		}
	}
}
