package main

import (
	"testing"

	"github.com/astrophena/prek/internal/cli/clitest"
)

func TestListBuiltinsPrintsSortedIDs(t *testing.T) {
	setup := func(t *testing.T) *listApp { return &listApp{builtins: true} }

	clitest.Run(t, setup, map[string]clitest.Case[*listApp]{
		"trailing-whitespace is a known builtin": {
			WantInStdout: "trailing-whitespace",
		},
		"check-yaml is a known builtin": {
			WantInStdout: "check-yaml",
		},
	})
}
