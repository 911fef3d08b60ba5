// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package syncx

import (
	"errors"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/astrophena/prek/internal/testutil"
)

func TestLazy(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var l Lazy[int]
		var count int
		var mu sync.Mutex

		f := func() int {
			mu.Lock()
			defer mu.Unlock()
			count++
			return count
		}

		v1 := l.Get(f)
		testutil.AssertEqual(t, v1, 1)

		v2 := l.Get(f)
		testutil.AssertEqual(t, v2, 1)

		testutil.AssertEqual(t, count, 1)

		var l2 Lazy[string]

		f2 := func() (string, error) {
			return "", errors.New("something went wrong")
		}

		notnil := func(err error) {
			if err == nil {
				t.Fatalf("err must not be nil")
			}
		}

		ev1, err := l2.GetErr(f2)
		testutil.AssertEqual(t, ev1, "")
		notnil(err)

		ev2, err := l2.GetErr(f2)
		testutil.AssertEqual(t, ev2, "")
		notnil(err)
	})
}
