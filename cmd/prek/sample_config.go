package main

import (
	"context"
	"fmt"

	"github.com/astrophena/prek/internal/cli"
	"github.com/astrophena/prek/internal/config"
)

const sampleConfig = `[[repos]]
repo = "` + config.UpstreamHooksURL + `"
rev = "v5.0.0"

  [[repos.hooks]]
  id = "trailing-whitespace"

  [[repos.hooks]]
  id = "end-of-file-fixer"

  [[repos.hooks]]
  id = "check-yaml"

  [[repos.hooks]]
  id = "check-added-large-files"
`

// sampleConfigApp is `prek sample-config`: it prints a starter
// .prek.toml a new project can redirect into place.
type sampleConfigApp struct{}

func (a *sampleConfigApp) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	fmt.Fprint(env.Stdout, sampleConfig)
	return nil
}
