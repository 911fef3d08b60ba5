package autoupdate

import (
	"context"
	"testing"
	"time"

	"github.com/astrophena/prek/internal/gitutil"
)

func tagAt(name string, daysAgo int, now time.Time) gitutil.TagInfo {
	return gitutil.TagInfo{Name: name, Commit: name + "-sha", Created: now.AddDate(0, 0, -daysAgo)}
}

func TestFilterCooldownExcludesRecentTags(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tags := []gitutil.TagInfo{
		tagAt("v1.0.0", 30, now),
		tagAt("v1.1.0", 3, now),
	}
	got := filterCooldown(tags, 7, now)
	if len(got) != 1 || got[0].Name != "v1.0.0" {
		t.Fatalf("got %v, want only v1.0.0", got)
	}
}

func TestFilterCooldownZeroMeansNoFilter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tags := []gitutil.TagInfo{tagAt("v1.0.0", 0, now)}
	got := filterCooldown(tags, 0, now)
	if len(got) != 1 {
		t.Fatalf("got %v, want all tags kept", got)
	}
}

func TestPickTagPrefersSemverSimilarity(t *testing.T) {
	now := time.Now()
	tags := []gitutil.TagInfo{
		tagAt("v1.0.0", 10, now),
		tagAt("v1.2.0", 5, now),
		tagAt("v1.1.0", 8, now),
	}
	got := pickTag(tags, "v1.0.0")
	if got.Name != "v1.2.0" {
		t.Fatalf("pickTag = %q, want v1.2.0", got.Name)
	}
}

func TestPickTagFallsBackToNewestWhenNonSemver(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tags := []gitutil.TagInfo{
		tagAt("release-old", 30, now),
		tagAt("release-new", 1, now),
	}
	got := pickTag(tags, "release-old")
	if got.Name != "release-new" {
		t.Fatalf("pickTag = %q, want release-new (newest by date)", got.Name)
	}
}

func TestOptionsAllowedFiltersRepoList(t *testing.T) {
	opts := Options{RepoFilter: []string{"https://example.com/a"}}
	if !opts.allowed("https://example.com/a") {
		t.Fatal("expected filtered URL to be allowed")
	}
	if opts.allowed("https://example.com/b") {
		t.Fatal("expected unlisted URL to be excluded")
	}
	if !(Options{}).allowed("anything") {
		t.Fatal("empty filter should allow everything")
	}
}

func TestResolverCachesPerURL(t *testing.T) {
	r := NewResolver(nil, Options{})
	r.cache["https://example.com/a"] = cacheEntry{rev: "v2.0.0"}
	u, err := r.Resolve(context.Background(), "https://example.com/a", "v1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if u.NewRev != "v2.0.0" || !u.Changed {
		t.Fatalf("u = %+v, want cached v2.0.0/changed", u)
	}
}
