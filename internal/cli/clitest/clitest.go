// Package clitest provides a table-driven harness for testing [cli.App]
// implementations without spawning a subprocess.
package clitest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/astrophena/prek/internal/cli"
)

// Case describes one invocation of an App under test.
type Case[T cli.App] struct {
	// Args are the command-line arguments passed to the app, after flag
	// parsing has already happened (i.e. as env.Args would see them).
	Args []string
	// Stdin is fed to the app as standard input. Defaults to an empty reader.
	Stdin io.Reader
	// Env supplies environment variables visible to the app via Getenv.
	Env map[string]string

	// WantInStdout/WantInStderr assert that the given substring appears in
	// the corresponding stream.
	WantInStdout string
	WantInStderr string
	// WantNothingPrinted asserts that both streams are empty.
	WantNothingPrinted bool

	// WantErr asserts that the returned error satisfies errors.Is.
	WantErr error
	// WantErrType asserts that the returned error satisfies errors.As into
	// a value of the same type as WantErrType.
	WantErrType error

	// CheckFunc, if set, runs after the app returns, with the app value
	// itself so tests can assert on its mutated state.
	CheckFunc func(t *testing.T, app T)
}

// Run executes each case in cases as a subtest, constructing a fresh App
// via setup for every case.
func Run[T cli.App](t *testing.T, setup func(t *testing.T) T, cases map[string]Case[T]) {
	t.Helper()

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := setup(t)

			stdin := tc.Stdin
			if stdin == nil {
				stdin = strings.NewReader("")
			}

			var stdout, stderr bytes.Buffer
			env := &cli.Env{
				Args:   tc.Args,
				Stdin:  stdin,
				Stdout: &stdout,
				Stderr: &stderr,
				Getenv: func(key string) string { return tc.Env[key] },
			}
			ctx := cli.WithEnv(context.Background(), env)

			err := app.Run(ctx)

			if tc.WantErr != nil {
				if !errors.Is(err, tc.WantErr) {
					t.Fatalf("error = %v, want it to wrap %v", err, tc.WantErr)
				}
			} else if tc.WantErrType != nil {
				target := reflect.New(reflect.TypeOf(tc.WantErrType)).Interface()
				if !errors.As(err, target) {
					t.Fatalf("error = %v, want it to be of type %T", err, tc.WantErrType)
				}
			} else if err != nil {
				t.Fatalf("Run() returned unexpected error: %v", err)
			}

			if tc.WantNothingPrinted {
				if stdout.Len() != 0 || stderr.Len() != 0 {
					t.Fatalf("expected nothing printed, got stdout=%q stderr=%q", stdout.String(), stderr.String())
				}
			}
			if tc.WantInStdout != "" && !strings.Contains(stdout.String(), tc.WantInStdout) {
				t.Fatalf("stdout = %q, want it to contain %q", stdout.String(), tc.WantInStdout)
			}
			if tc.WantInStderr != "" && !strings.Contains(stderr.String(), tc.WantInStderr) {
				t.Fatalf("stderr = %q, want it to contain %q", stderr.String(), tc.WantInStderr)
			}

			if tc.CheckFunc != nil {
				tc.CheckFunc(t, app)
			}
		})
	}
}
