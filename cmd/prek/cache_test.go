package main

import (
	"testing"
	"time"

	"github.com/astrophena/prek/internal/cli/clitest"
)

func TestCacheDirPrintsPREKHome(t *testing.T) {
	home := t.TempDir()
	setup := func(t *testing.T) *cacheApp { return &cacheApp{maxAge: 30 * 24 * time.Hour} }

	clitest.Run(t, setup, map[string]clitest.Case[*cacheApp]{
		"dir": {
			Args:         []string{"dir"},
			Env:          map[string]string{"PREK_HOME": home},
			WantInStdout: home,
		},
		"size lists buckets": {
			Args:         []string{"size"},
			Env:          map[string]string{"PREK_HOME": home},
			WantInStdout: "repos\t",
		},
	})
}
