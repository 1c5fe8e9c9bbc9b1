package reqrestests

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/apitests/reqres-contract-tests/apiclient"
	"github.com/apitests/reqres-contract-tests/framework"

	"github.com/stretchr/testify/require"
)

// Environment is the configuration shared by every test in the suite.
type Environment struct {
	// Client sends requests to the API under test.
	Client *apiclient.Client

	// ResourcesDir contains a "schemas" subdirectory of JSON Schema files and an "images"
	// subdirectory of reference images.
	ResourcesDir string

	// TempDir is where downloaded files are written. If empty, os.TempDir() is used.
	TempDir string
}

// T represents a test or subtest in the reqres test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is outside
// of the Go test runner, and with some extra features such as debug logging and attachments that are
// provided by the lower-level framework package.
//
// To make test assertions, pass the *T to the checks in the verify package, or to the assert and require
// packages as if it were a *testing.T. Request methods fail the test immediately if the request could
// not be made at all, so tests only need to check the response.
type T struct {
	context *framework.Context
	env     *Environment
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(&T{context: c, env: t.env})
	})
}

// Group runs a named group of subtests. Test filters apply to the tests inside the group, not
// to the group itself.
func (t *T) Group(name string, action func(*T)) {
	t.context.Group(name, func(c *framework.Context) {
		action(&T{context: c, env: t.env})
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Defer schedules a cleanup function to run at the end of this test, even if it fails.
func (t *T) Defer(f func()) {
	t.context.Defer(f)
}

func (t *T) ID() framework.TestID {
	return t.context.ID()
}

// Attach and DebugLogger make T usable as an apiclient.Recorder.
func (t *T) Attach(a framework.Attachment) {
	t.context.Attach(a)
}

func (t *T) DebugLogger() framework.Logger {
	return t.context.DebugLogger()
}

// BaseURL returns the base address of the API under test.
func (t *T) BaseURL() string {
	return t.env.Client.BaseURL()
}

// Request sends one request to the API under test and returns the response, whatever its
// status. The test fails and immediately exits if the request could not be sent.
func (t *T) Request(method, path string, options ...apiclient.RequestOption) *apiclient.Response {
	resp, err := t.env.Client.Request(context.Background(), t, method, path, options...)
	require.NoError(t, err, "%s %s failed", method, path)
	return resp
}

// Download saves the content of an absolute URL to a new temporary file, which is deleted at
// the end of the test, and returns the file path.
func (t *T) Download(fileURL string) string {
	path := t.TempPath(filepath.Ext(fileURL))
	_, err := t.env.Client.Download(context.Background(), t, fileURL, path)
	require.NoError(t, err, "download of %s failed", fileURL)
	return path
}

// TempPath returns a path for a temporary file that is unique to this call. If anything is
// created there, it is removed at the end of the test.
func (t *T) TempPath(extension string) string {
	dir := t.env.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "downloaded-"+uuid.NewString()+extension)
	t.Defer(func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			t.Debug("Could not remove temporary file %s: %s", path, err)
		}
	})
	return path
}

// SchemaPath returns the path of a JSON Schema file in the resources directory.
func (t *T) SchemaPath(name string) string {
	return filepath.Join(t.env.ResourcesDir, "schemas", name)
}

// ImagePath returns the path of a reference image in the resources directory.
func (t *T) ImagePath(name string) string {
	return filepath.Join(t.env.ResourcesDir, "images", name)
}
