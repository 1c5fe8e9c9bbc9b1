// Package reqrestests contains the acceptance tests for the reqres API and their supporting
// test API.
//
// Infrastructure that is not specific to this API, such as test contexts, filtering, and
// attachments, is in the lower-level framework package. Sending requests is done by the
// apiclient package, and checks on responses are in the verify package.
package reqrestests
