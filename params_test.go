package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadParamsDefaults(t *testing.T) {
	withTempDir(t, func(dir string) {
		var p commandParams
		require.True(t, p.Read([]string{"cmd", "-resources", dir}))

		assert.Equal(t, "https://reqres.in", p.serviceURL)
		assert.Equal(t, dir, p.resourcesDir)
		assert.Equal(t, "", p.reportDir)
		assert.Nil(t, p.headers.Header())
		assert.False(t, p.filters.MustMatch.IsDefined())
		assert.False(t, p.debug)
	})
}

func TestReadParamsAll(t *testing.T) {
	withTempDir(t, func(dir string) {
		var p commandParams
		require.True(t, p.Read([]string{"cmd",
			"-url", "http://localhost:8000",
			"-resources", dir,
			"-header", "x-api-key: reqres-free-v1",
			"-header", "Accept:application/json",
			"-report-dir", "out",
			"-run", "^login/",
			"-skip", "avatar",
			"-debug",
		}))

		assert.Equal(t, "http://localhost:8000", p.serviceURL)
		assert.Equal(t, "reqres-free-v1", p.headers.Header().Get("X-Api-Key"))
		assert.Equal(t, "application/json", p.headers.Header().Get("Accept"))
		assert.Equal(t, "out", p.reportDir)
		assert.True(t, p.filters.MustMatch.AnyMatch("login/successful login returns token"))
		assert.True(t, p.filters.MustNotMatch.AnyMatch("users/single user/avatar matches reference image"))
		assert.True(t, p.debug)
	})
}

func TestReadParamsRejectsBadValues(t *testing.T) {
	withTempDir(t, func(dir string) {
		var p1 commandParams
		assert.False(t, p1.Read([]string{"cmd", "-resources", dir, "-url", "reqres.in"}))

		var p2 commandParams
		assert.False(t, p2.Read([]string{"cmd", "-resources", dir, "-header", "no-colon"}))

		var p3 commandParams
		assert.False(t, p3.Read([]string{"cmd", "-resources", dir, "-run", "("}))

		var p4 commandParams
		assert.False(t, p4.Read([]string{"cmd", "-resources", dir + "/missing"}))
	})
}

// withTempDir runs action with a new directory that is removed when the test ends.
func withTempDir(t *testing.T, action func(dir string)) {
	action(t.TempDir())
}
