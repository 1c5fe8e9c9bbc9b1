// Package verify contains stateless checks on API responses.
//
// Every check takes a TestingT, which is satisfied by *testing.T as well as by the test
// contexts of this project, and stops the test via FailNow if the check does not pass. If
// the TestingT can also write debug output, each check first logs a one-line description of
// what it is about to verify.
package verify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/apitests/reqres-contract-tests/apiclient"
	"github.com/apitests/reqres-contract-tests/imagecmp"

	"github.com/stretchr/testify/require"
)

// TestingT is the subset of *testing.T that the checks need.
type TestingT interface {
	require.TestingT
}

type debugger interface {
	Debug(format string, args ...interface{})
}

type tHelper interface {
	Helper()
}

// DateLayout is the prefix of an ISO-8601 timestamp that date checks compare: precision is
// one minute.
const DateLayout = "2006-01-02T15:04"

func step(t TestingT, format string, args ...interface{}) {
	if d, ok := t.(debugger); ok {
		d.Debug(format, args...)
	}
}

func helper(t TestingT) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
}

// requireJSON parses the response body or fails the test.
func requireJSON(t TestingT, resp *apiclient.Response) ldvalue.Value {
	helper(t)
	value, err := resp.JSON()
	require.NoError(t, err, "expected a JSON response, got %s", resp)
	return value
}

func requireObjectField(t TestingT, object ldvalue.Value, path, name string) ldvalue.Value {
	helper(t)
	if object.Type() != ldvalue.ObjectType {
		require.Fail(t, fmt.Sprintf("expected %s to be a JSON object", describePath(path)),
			"actual value: %s", object.JSONString())
	}
	value, ok := lookup(object, name)
	if !ok {
		require.Fail(t, fmt.Sprintf("response JSON has no property %q", joinPath(path, name)),
			"actual value of %s: %s", describePath(path), object.JSONString())
	}
	return value
}

func lookup(object ldvalue.Value, name string) (ldvalue.Value, bool) {
	for _, key := range object.Keys() {
		if key == name {
			return object.GetByKey(name), true
		}
	}
	return ldvalue.Null(), false
}

// toValue converts anything JSON-representable to a Value, going through its JSON encoding
// so that all Go numeric and slice types are handled the same way.
func toValue(v interface{}) ldvalue.Value {
	if value, ok := v.(ldvalue.Value); ok {
		return value
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ldvalue.String(fmt.Sprintf("<unencodable %T>", v))
	}
	return ldvalue.Parse(data)
}

func requireArray(t TestingT, value ldvalue.Value, path string) ldvalue.Value {
	helper(t)
	if value.Type() != ldvalue.ArrayType {
		require.Fail(t, fmt.Sprintf("expected %s to be a JSON array", describePath(path)),
			"actual value: %s", value.JSONString())
	}
	return value
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func describePath(path string) string {
	if path == "" {
		return "response JSON"
	}
	return fmt.Sprintf("%q", path)
}

func requireValueEqual(t TestingT, expected interface{}, actual ldvalue.Value, path string) {
	helper(t)
	expectedValue := toValue(expected)
	if !expectedValue.Equal(actual) {
		require.Fail(t, fmt.Sprintf("response JSON property %q has unexpected value", path),
			"expected: %s\nactual:   %s", expectedValue.JSONString(), actual.JSONString())
	}
}

// Code checks the HTTP status code.
func Code(t TestingT, resp *apiclient.Response, code int) {
	helper(t)
	step(t, "Verify response code is %d", code)
	require.Equal(t, code, resp.StatusCode, "unexpected response code; response was %s", resp)
}

// JSONField checks a top-level property of the JSON body. The expected value may be anything
// that can be represented in JSON; numbers compare equal regardless of Go numeric type.
func JSONField(t TestingT, resp *apiclient.Response, name string, value interface{}) {
	helper(t)
	step(t, "Verify response json contains %q = %v", name, value)
	body := requireJSON(t, resp)
	actual := requireObjectField(t, body, "", name)
	requireValueEqual(t, value, actual, name)
}

// DataField checks a property of the "data" object within the JSON body.
func DataField(t TestingT, resp *apiclient.Response, name string, value interface{}) {
	helper(t)
	step(t, "Verify response json contains \"data\" with %q = %v", name, value)
	body := requireJSON(t, resp)
	data := requireObjectField(t, body, "", "data")
	actual := requireObjectField(t, data, "data", name)
	requireValueEqual(t, value, actual, joinPath("data", name))
}

// TextContains checks that the raw body contains a substring.
func TextContains(t TestingT, resp *apiclient.Response, text string) {
	helper(t)
	step(t, "Verify response text contains <%s>", text)
	if !strings.Contains(resp.Text(), text) {
		require.Fail(t, fmt.Sprintf("response text does not contain %q", text), "response was %s", resp)
	}
}

// EmptyBody checks that the body is exactly an empty JSON object.
func EmptyBody(t TestingT, resp *apiclient.Response) {
	helper(t)
	step(t, "Verify response has no data")
	body := requireJSON(t, resp)
	if !body.Equal(ldvalue.ObjectBuild().Build()) {
		require.Fail(t, "expected response JSON to be {}", "actual value: %s", body.JSONString())
	}
}

// DateIsCurrent checks that a timestamp property was generated during the current minute,
// in UTC. It compares only the first 16 characters (YYYY-MM-DDTHH:MM), so it can fail
// spuriously if the minute changes between the request and the check.
func DateIsCurrent(t TestingT, resp *apiclient.Response, name string) {
	helper(t)
	DateMatches(t, resp, name, time.Now())
}

// DateMatches is the same as DateIsCurrent but compares against a specific time.
func DateMatches(t TestingT, resp *apiclient.Response, name string, now time.Time) {
	helper(t)
	step(t, "Verify %q contains current date", name)
	body := requireJSON(t, resp)
	actual := requireObjectField(t, body, "", name)
	if actual.Type() != ldvalue.StringType {
		require.Fail(t, fmt.Sprintf("response JSON property %q is not a string", name),
			"actual value: %s", actual.JSONString())
	}
	expected := now.UTC().Format(DateLayout)
	s := actual.StringValue()
	if len(s) > len(expected) {
		s = s[:len(expected)]
	}
	require.Equal(t, expected, s, "response JSON property %q (%s) was not generated at the current time",
		name, actual.StringValue())
}

// Count checks the number of items in the "data" array.
func Count(t TestingT, resp *apiclient.Response, amount int) {
	helper(t)
	step(t, "Verify amount of users shown is %d", amount)
	body := requireJSON(t, resp)
	data := requireArray(t, requireObjectField(t, body, "", "data"), "data")
	require.Equal(t, amount, data.Count(), "unexpected number of items in \"data\"")
}

// ListField checks, in order, the value of one property of every item in the "data" array.
// The expected values are given as a slice of anything JSON-representable.
func ListField(t TestingT, resp *apiclient.Response, name string, expected interface{}) {
	helper(t)
	step(t, "Verify presented %ss are correct in response json", name)
	ListValues(t, resp, func(item ldvalue.Value) ldvalue.Value {
		return requireObjectField(t, item, "data[]", name)
	}, expected)
}

// ListValues is like ListField but derives each item's value with a function, for instance
// to combine several properties.
func ListValues(
	t TestingT,
	resp *apiclient.Response,
	extract func(item ldvalue.Value) ldvalue.Value,
	expected interface{},
) {
	helper(t)
	body := requireJSON(t, resp)
	data := requireArray(t, requireObjectField(t, body, "", "data"), "data")
	actual := make([]interface{}, 0, data.Count())
	for i := 0; i < data.Count(); i++ {
		actual = append(actual, extract(data.GetByIndex(i)).AsArbitraryValue())
	}
	expectedValue := toValue(expected)
	if expectedValue.Type() != ldvalue.ArrayType {
		require.Fail(t, "expected values must be a slice", "got: %T", expected)
	}
	require.Equal(t, expectedValue.AsArbitraryValue(), actual, "values in \"data\" are not as expected")
}

// ImagesEqual checks that two image files decode to identical pixels.
func ImagesEqual(t TestingT, actualPath, referencePath string) {
	helper(t)
	step(t, "Verify avatar corresponds to a reference")
	equal, diff, err := imagecmp.FilesEqual(actualPath, referencePath)
	require.NoError(t, err, "could not compare images")
	if !equal {
		require.Fail(t, "image does not match reference",
			"%s differs from %s in area %s", actualPath, referencePath, diff)
	}
}
