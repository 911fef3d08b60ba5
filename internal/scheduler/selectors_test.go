package scheduler

import "testing"

func TestParseSelector(t *testing.T) {
	cases := []struct {
		in   string
		want Selector
	}{
		{"lint", Selector{HookID: "lint"}},
		{"backend/", Selector{ProjectPath: "backend"}},
		{"backend/:lint", Selector{ProjectPath: "backend", HookID: "lint"}},
		{":lint", Selector{ProjectPath: "", HookID: "lint"}},
	}
	for _, c := range cases {
		got := ParseSelector(c.in)
		if got != c.want {
			t.Errorf("ParseSelector(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestSelectorMatchesDescendants(t *testing.T) {
	sel := ParseSelector("backend/")
	if !sel.Matches("backend", "lint") {
		t.Error("expected project selector to match its own hooks")
	}
	if !sel.Matches("backend/api", "lint") {
		t.Error("expected project selector to match a descendant project")
	}
	if sel.Matches("frontend", "lint") {
		t.Error("expected project selector not to match an unrelated project")
	}
}

func TestSelectionSkipOverridesInclude(t *testing.T) {
	s := Selection{
		Include: []Selector{ParseSelector("backend/")},
		Skip:    []Selector{ParseSelector("backend/legacy/")},
	}
	if !s.Allows("backend", "lint") {
		t.Error("expected backend to be allowed")
	}
	if s.Allows("backend/legacy", "lint") {
		t.Error("expected backend/legacy to be skipped despite matching include")
	}
}

func TestSelectionEmptyIncludeAllowsEverythingNotSkipped(t *testing.T) {
	s := Selection{Skip: []Selector{ParseSelector("noisy-hook")}}
	if !s.Allows("backend", "lint") {
		t.Error("expected an unrelated hook to be allowed with no include selectors")
	}
	if s.Allows("backend", "noisy-hook") {
		t.Error("expected the skipped hook id to be skipped in every project")
	}
}

func TestParseSelectors(t *testing.T) {
	got := ParseSelectors("lint, backend/ ,")
	if len(got) != 2 {
		t.Fatalf("ParseSelectors returned %d selectors, want 2", len(got))
	}
}
