// Package apiclient sends requests to the API under test and records what was sent and
// received, so that a failed test can be reproduced by hand.
package apiclient
