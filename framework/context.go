package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
	sink       ReportSink
}

// Context is the state of a single test or subtest. It implements the TestingT interfaces of
// the testify assert and require packages, so those can be used for assertions.
type Context struct {
	env         *environment
	id          TestID
	group       bool
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	deferred    []func()
	attachments []Attachment
}

// Run starts a test run. The action receives the root Context, whose Run and Group methods
// should be used to start each named test. A nil filter runs everything; a nil testLogger or sink discards
// that output.
func Run(
	filter Filter,
	testLogger TestLogger,
	sink ReportSink,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	if sink == nil {
		sink = NullReportSink()
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
		sink:       sink,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil && !c.skipped {
			c.failed = true
			var addError error
			if _, ok := r.(*Context); ok {
				if len(c.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				c.errors = append(c.errors, addError)
				c.env.testLogger.TestError(c.id, addError)
			}
		}
		if len(c.id.Path) == 0 {
			return // the root context is not a test
		}
		if c.group && !c.failed {
			return // a group is only a container for its tests unless it fails by itself
		}
		c.env.results.add(TestResult{TestID: c.id, Errors: c.errors, Skipped: c.skipped && !c.failed}, c.failed)
	}()
	defer c.runDeferred()

	action(c)
}

// runDeferred calls the functions registered with Defer in reverse order. A panic in one
// of them is recorded as a test error, but does not stop the others from running.
func (c *Context) runDeferred() {
	for len(c.deferred) > 0 {
		f := c.deferred[len(c.deferred)-1]
		c.deferred = c.deferred[:len(c.deferred)-1]
		func() {
			defer func() {
				if r := recover(); r != nil {
					if _, ok := r.(*Context); ok {
						return
					}
					c.Errorf("unexpected panic in deferred cleanup: %+v", r)
				}
			}()
			f()
		}()
	}
}

func (c *Context) ID() TestID {
	return c.id
}

// Run runs a subtest. The subtest is skipped without calling the action if the filter
// excludes it.
func (c *Context) Run(name string, action func(*Context)) {
	c.runChild(name, false, action)
}

// Group runs a named group of subtests. The filter is not applied to the group itself but only
// to the tests started inside it, so a pattern that names any nested test can reach it. A group
// appears in the results only if it fails by itself, for instance by panicking.
func (c *Context) Group(name string, action func(*Context)) {
	c.runChild(name, true, action)
}

func (c *Context) runChild(name string, group bool, action func(*Context)) {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}

	c.env.testLogger.TestStarted(id)
	if !group && c.env.filter != nil && !c.env.filter(id) {
		c.env.results.add(TestResult{TestID: id, Skipped: true}, false)
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	c1 := &Context{
		id:    id,
		group: group,
		env:   c.env,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

// Errorf records a failure without stopping the test.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, err)
}

// FailNow stops the test immediately. Any failure messages should already have been
// recorded with Errorf.
func (c *Context) FailNow() {
	c.failed = true
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Defer schedules a cleanup function to run when the current test ends, whether it passed,
// failed, or was skipped.
func (c *Context) Defer(f func()) {
	c.deferred = append(c.deferred, f)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

// Attach records a diagnostic artifact for this test and passes it to the report sink. A
// sink error is noted in the debug log; it never fails the test.
func (c *Context) Attach(a Attachment) {
	c.attachments = append(c.attachments, a)
	if err := c.env.sink.Attach(c.id, a); err != nil {
		c.Debug("Could not save attachment %q: %s", a.Name, err)
	}
}

func (c *Context) Attachments() []Attachment {
	return append([]Attachment(nil), c.attachments...)
}
