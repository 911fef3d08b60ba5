package langs

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/mod/semver"
)

// VersionDefault and VersionSystem are the sentinel version-request
// values recognized by NormalizeVersion: VersionDefault selects
// whatever toolchain a language backend treats as its default, and
// VersionSystem pins to the toolchain already present on PATH.
const (
	VersionDefault = "default"
	VersionSystem  = "system"
)

// NormalizeVersion canonicalizes a version-request string for use in an
// env key: "default" and "system" pass through unchanged; anything else
// is passed through semver.Canonical when it parses as one, so that
// "1.2" and "v1.2.0" hash identically.
func NormalizeVersion(request string) string {
	if request == "" || request == "\x00" {
		return "default"
	}
	if request == "default" || request == "system" {
		return request
	}
	v := request
	if v[0] != 'v' {
		v = "v" + v
	}
	if semver.IsValid(v) {
		return semver.Canonical(v)
	}
	return request
}

// BestBySimilarity returns the newest of candidates by semver ordering
// (a leading "v" is optional), or "" when none of them parses as semver.
// current is not consulted: closeness to it does not affect the result.
// Used by internal/autoupdate.
func BestBySimilarity(current string, candidates []string) string {
	valid := make([]string, 0, len(candidates))
	for _, c := range candidates {
		v := c
		if v == "" {
			continue
		}
		if v[0] != 'v' {
			v = "v" + v
		}
		if semver.IsValid(v) {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		return ""
	}

	best := valid[0]
	for _, c := range valid[1:] {
		if semverLess(best, c) {
			best = c
		}
	}
	return best
}

func semverLess(a, b string) bool {
	va, vb := a, b
	if va[0] != 'v' {
		va = "v" + va
	}
	if vb[0] != 'v' {
		vb = "v" + vb
	}
	return semver.Compare(va, vb) < 0
}

// withBackoff retries fn with exponential backoff, used by the language
// backends around flaky network operations: toolchain downloads and
// dependency installs. It gives up after maxElapsed.
func withBackoff(ctx context.Context, maxElapsed time.Duration, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxElapsed
	return backoff.Retry(fn, backoff.WithContext(b, ctx))
}
