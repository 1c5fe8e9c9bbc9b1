// Package servicedef describes the wire-level surface of the API under test: resource paths,
// request parameters, and request payloads.
package servicedef

import (
	"fmt"
	"net/url"
	"strconv"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const DefaultBaseURL = "https://reqres.in"

const (
	PathLogin = "/api/login"
	PathUsers = "/api/users"
)

// PathUser returns the resource path of a single user.
func PathUser(id interface{}) string {
	return fmt.Sprintf("%s/%v", PathUsers, id)
}

// AvatarPath returns the path of the image that the service links to as a user's avatar.
func AvatarPath(id int) string {
	return fmt.Sprintf("/img/faces/%d-image.jpg", id)
}

// LoginParams is the body of a login request. The service accepts it either form-encoded
// or as JSON.
type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p LoginParams) Form() url.Values {
	return url.Values{"email": {p.Email}, "password": {p.Password}}
}

// UserParams is the body of a request that creates or updates a user.
type UserParams struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

func (p UserParams) Form() url.Values {
	return url.Values{"name": {p.Name}, "job": {p.Job}}
}

// ListUsersParams are the pagination parameters for listing users. Undefined values are
// omitted from the query, leaving the service's defaults in effect.
type ListUsersParams struct {
	PerPage ldvalue.OptionalInt
	Page    ldvalue.OptionalInt
}

func (p ListUsersParams) Query() url.Values {
	q := url.Values{}
	if p.PerPage.IsDefined() {
		q.Set("per_page", strconv.Itoa(p.PerPage.IntValue()))
	}
	if p.Page.IsDefined() {
		q.Set("page", strconv.Itoa(p.Page.IntValue()))
	}
	return q
}
