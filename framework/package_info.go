// Package framework contains the low-level implementation of test harness infrastructure
// that is not specific to the API being tested.
//
// The general model is:
//
// 1. There is a notion of a test context which is similar to Go's *testing.T, allowing
// pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results. It works outside of the Go test runner, so the suite can be
// shipped as an ordinary executable.
//
// 2. Each test context captures its own debug output, which is only shown if requested,
// and can record attachments (such as a reproduction of an HTTP request) that are passed
// to a ReportSink.
//
// The domain-specific code that knows what is being tested provides a test API on top of
// the test context.
package framework
