package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const envRecordFile = "prek-env.json"

// WriteEnvRecord writes rec to envDir, marking it as installed.
func WriteEnvRecord(envDir string, rec EnvRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(envDir, envRecordFile), data, 0o644)
}

// ReadEnvRecord reads back a record written by WriteEnvRecord, or returns
// an error satisfying os.IsNotExist if envDir has never been provisioned.
func ReadEnvRecord(envDir string) (*EnvRecord, error) {
	data, err := os.ReadFile(filepath.Join(envDir, envRecordFile))
	if err != nil {
		return nil, err
	}
	var rec EnvRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GCResult reports what GarbageCollect removed (or would remove, under
// dryRun).
type GCResult struct {
	RemovedRepos int
	RemovedEnvs  int
	FreedBytes   int64
}

// GarbageCollect removes store entries not referenced by liveRepoKeys /
// liveEnvKeys — the keys derived from the project graphs of the
// invocation that requested collection — plus any entry whose last-used
// marker is older than maxAge, regardless of liveness, since its
// referencing config may no longer exist on disk. With dryRun, nothing is
// removed; the result reports what would be.
func (s *Store) GarbageCollect(liveRepoKeys, liveEnvKeys map[string]bool, maxAge time.Duration, dryRun bool) (GCResult, error) {
	var result GCResult

	removeStale := func(dir string, live map[string]bool, onRemove func(int64)) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			path := filepath.Join(dir, e.Name())
			stale := !live[e.Name()]
			if !stale {
				if info, err := os.Stat(filepath.Join(path, ".last-used")); err == nil {
					stale = time.Since(info.ModTime()) > maxAge
				}
			}
			if !stale {
				continue
			}
			size := dirSize(path)
			if !dryRun {
				if err := os.RemoveAll(path); err != nil {
					return err
				}
			}
			onRemove(size)
		}
		return nil
	}

	if err := removeStale(s.reposDir(), liveRepoKeys, func(sz int64) {
		result.RemovedRepos++
		result.FreedBytes += sz
	}); err != nil {
		return result, err
	}
	if err := removeStale(s.envsDir(), liveEnvKeys, func(sz int64) {
		result.RemovedEnvs++
		result.FreedBytes += sz
	}); err != nil {
		return result, err
	}

	return result, nil
}

// Size walks the store and sums bytes per top-level bucket
// (repos/envs/toolchains); a thin du-style report, not budgeted for
// byte-for-byte parity with any reference tool.
func (s *Store) Size() map[string]int64 {
	return map[string]int64{
		"repos":      dirSize(s.reposDir()),
		"envs":       dirSize(s.envsDir()),
		"toolchains": dirSize(s.toolchainsDir()),
	}
}

func dirSize(root string) int64 {
	var total int64
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}

// Clean removes the entire store, equivalent to `rm -rf` on Path.
func (s *Store) Clean() error {
	return os.RemoveAll(s.Path)
}
