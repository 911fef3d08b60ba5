// Package autoupdate implements the "bump every repo to its newest
// tag" operation: for each unique remote repo URL, fetch its tags into
// the store's mirror cache, filter by cooldown, pick the tag most
// similar to the currently pinned rev, and rewrite the config file in
// place.
package autoupdate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/astrophena/prek/internal/config"
	"github.com/astrophena/prek/internal/gitutil"
	"github.com/astrophena/prek/internal/langs"
	"github.com/astrophena/prek/internal/store"
)

// RemoteRepoRevs returns the (url -> currently pinned rev) map of every
// remote repo referenced by cfg, one entry per unique URL.
func RemoteRepoRevs(cfg *config.Config) map[string]string {
	revs := make(map[string]string)
	for _, repo := range cfg.Repos {
		if repo.Kind != config.RepoRemote {
			continue
		}
		if _, ok := revs[repo.URL]; !ok {
			revs[repo.URL] = repo.Rev
		}
	}
	return revs
}

// Options configures a run of auto-update.
type Options struct {
	// BleedingEdge, if set, pins each repo to its default branch tip
	// commit instead of the newest eligible tag.
	BleedingEdge bool
	// Freeze, if set, stores the resolved commit SHA instead of the tag
	// name, so the config pins an exact commit even if the tag moves.
	Freeze bool
	// CooldownDays excludes tags younger than this many days, guarding
	// against updating to a release that's about to be yanked.
	CooldownDays int
	// RepoFilter, if non-empty, restricts updates to these repo URLs.
	RepoFilter []string
}

func (o Options) allowed(url string) bool {
	if len(o.RepoFilter) == 0 {
		return true
	}
	for _, u := range o.RepoFilter {
		if u == url {
			return true
		}
	}
	return false
}

// RepoUpdate reports the outcome of resolving one repo URL.
type RepoUpdate struct {
	URL     string
	OldRev  string
	NewRev  string
	Changed bool
}

// Resolver resolves each unique repo URL to its new pinned rev at most
// once per run, sharing mirror clones and tag lookups across every
// config file and project that references the same URL — the "each
// unique (repo_url) is checked once" rule.
type Resolver struct {
	Store *store.Store
	Opts  Options

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	rev string
	err error
}

// NewResolver returns a Resolver backed by s.
func NewResolver(s *store.Store, opts Options) *Resolver {
	return &Resolver{Store: s, Opts: opts, cache: make(map[string]cacheEntry)}
}

// Resolve returns the rev url should be pinned to, reusing the result
// of a prior Resolve call for the same url within this Resolver's
// lifetime. currentRev seeds the semver-similarity comparison and is
// echoed back unchanged (Changed: false) when url is filtered out by
// Options.RepoFilter.
func (r *Resolver) Resolve(ctx context.Context, url, currentRev string) (RepoUpdate, error) {
	if !r.Opts.allowed(url) {
		return RepoUpdate{URL: url, OldRev: currentRev, NewRev: currentRev}, nil
	}

	r.mu.Lock()
	if e, ok := r.cache[url]; ok {
		r.mu.Unlock()
		if e.err != nil {
			return RepoUpdate{}, e.err
		}
		return RepoUpdate{URL: url, OldRev: currentRev, NewRev: e.rev, Changed: e.rev != currentRev}, nil
	}
	r.mu.Unlock()

	rev, err := r.resolveOnce(ctx, url, currentRev)

	r.mu.Lock()
	r.cache[url] = cacheEntry{rev: rev, err: err}
	r.mu.Unlock()

	if err != nil {
		return RepoUpdate{}, fmt.Errorf("autoupdate: resolving %s: %w", url, err)
	}
	return RepoUpdate{URL: url, OldRev: currentRev, NewRev: rev, Changed: rev != currentRev}, nil
}

func (r *Resolver) resolveOnce(ctx context.Context, url, currentRev string) (string, error) {
	mirrorDir := r.Store.PathFor(store.KindRepo, store.MirrorKey(url))
	lock, err := r.Store.LockExclusive(store.KindRepo, store.MirrorKey(url))
	if err != nil {
		return "", err
	}
	defer lock.Unlock()

	repo, err := gitutil.CloneMirror(ctx, url, mirrorDir)
	if err != nil {
		return "", err
	}

	if r.Opts.BleedingEdge {
		return repo.DefaultBranchTip(ctx)
	}

	tags, err := repo.Tags(ctx)
	if err != nil {
		return "", err
	}
	eligible := filterCooldown(tags, r.Opts.CooldownDays, time.Now())
	if len(eligible) == 0 {
		return currentRev, nil
	}

	best := pickTag(eligible, currentRev)

	if r.Opts.Freeze {
		return best.Commit, nil
	}
	return best.Name, nil
}

// FileResult reports the repo updates applied (or, in a dry run,
// merely computed) for one config file.
type FileResult struct {
	Path    string
	Repos   []RepoUpdate
	Written bool
}

// Run auto-updates every remote repo referenced by the config files at
// paths, deduplicating identical repo URLs across all of them so a
// shared URL is fetched and resolved exactly once regardless of how
// many project configs pin it. Set dryRun to compute results without
// touching any file on disk.
func Run(ctx context.Context, s *store.Store, paths []string, opts Options, dryRun bool) ([]FileResult, error) {
	resolver := NewResolver(s, opts)
	results := make([]FileResult, 0, len(paths))

	for _, path := range paths {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("autoupdate: loading %s: %w", path, err)
		}

		updates := make(map[string]RepoUpdate)
		for url, rev := range RemoteRepoRevs(cfg) {
			u, err := resolver.Resolve(ctx, url, rev)
			if err != nil {
				return nil, err
			}
			updates[url] = u
		}

		fr := FileResult{Path: path}
		for _, u := range updates {
			fr.Repos = append(fr.Repos, u)
		}
		if !dryRun {
			written, err := RewriteFile(path, updates)
			if err != nil {
				return nil, err
			}
			fr.Written = written
		}
		results = append(results, fr)
	}
	return results, nil
}

// filterCooldown drops tags younger than minDays. A non-positive
// minDays imposes no cooldown.
func filterCooldown(tags []gitutil.TagInfo, minDays int, now time.Time) []gitutil.TagInfo {
	if minDays <= 0 {
		return tags
	}
	cutoff := now.AddDate(0, 0, -minDays)
	var out []gitutil.TagInfo
	for _, t := range tags {
		if !t.Created.After(cutoff) {
			out = append(out, t)
		}
	}
	return out
}

// pickTag chooses the newest semver tag via langs.BestBySimilarity
// (which does not weigh closeness to current), falling back to the
// newest tag by creation date when none of the tags parses as semver.
func pickTag(tags []gitutil.TagInfo, current string) gitutil.TagInfo {
	byName := make(map[string]gitutil.TagInfo, len(tags))
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		byName[t.Name] = t
		names = append(names, t.Name)
	}

	if best := langs.BestBySimilarity(current, names); best != "" {
		return byName[best]
	}

	newest := tags[0]
	for _, t := range tags[1:] {
		if t.Created.After(newest.Created) {
			newest = t
		}
	}
	return newest
}
