package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/astrophena/prek/internal/cli"
)

// commands maps a subcommand name to a constructor for its App, so each
// invocation gets a fresh, zero-valued command instance.
var commands = map[string]func() cli.App{
	"install":           func() cli.App { return &installApp{} },
	"install-hooks":     func() cli.App { return &installHooksApp{} },
	"uninstall":         func() cli.App { return &uninstallApp{} },
	"run":               func() cli.App { return &runApp{} },
	"list":              func() cli.App { return &listApp{} },
	"validate-config":   func() cli.App { return &validateConfigApp{} },
	"validate-manifest": func() cli.App { return &validateManifestApp{} },
	"sample-config":     func() cli.App { return &sampleConfigApp{} },
	"auto-update":       func() cli.App { return &autoUpdateApp{} },
	"cache":             func() cli.App { return &cacheApp{} },
	"try-repo":          func() cli.App { return &tryRepoApp{} },
	"util":              func() cli.App { return &utilApp{} },
	"hook-impl":         func() cli.App { return &hookImplApp{} },
}

func main() {
	if len(os.Args) < 2 {
		printTopUsage()
		os.Exit(2)
	}

	name := os.Args[1]
	if name == "-h" || name == "-help" || name == "--help" {
		printTopUsage()
		return
	}

	newApp, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "prek: unknown command %q\n\n", name)
		printTopUsage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	env := cli.OSEnv()
	env.Args = os.Args[2:]

	err := cli.Run(cli.WithEnv(ctx, env), newApp())
	if err == nil {
		return
	}
	if errors.Is(err, cli.ErrExitVersion) {
		return
	}
	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.code)
	}
	if cli.IsPrintableError(err) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

func printTopUsage() {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Fprintln(os.Stderr, "usage: prek <command> [flags]")
	fmt.Fprintln(os.Stderr, "\ncommands:")
	for _, n := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", n)
	}
}
