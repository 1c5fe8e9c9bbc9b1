package reqrestests

import (
	"fmt"
	"net/http"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/apitests/reqres-contract-tests/apiclient"
	"github.com/apitests/reqres-contract-tests/servicedef"
	"github.com/apitests/reqres-contract-tests/verify"

	"github.com/stretchr/testify/require"
)

const totalUsers = 12

var registeredEmails = []string{
	"george.bluth@reqres.in",
	"janet.weaver@reqres.in",
	"emma.wong@reqres.in",
	"eve.holt@reqres.in",
	"charles.morris@reqres.in",
	"tracey.ramos@reqres.in",
	"michael.lawson@reqres.in",
	"lindsay.ferguson@reqres.in",
	"tobias.funke@reqres.in",
	"byron.fields@reqres.in",
	"george.edwards@reqres.in",
	"rachel.howell@reqres.in",
}

var newUser = servicedef.UserParams{Name: "morpheus", Job: "leader"}

func listUsers(t *T, params servicedef.ListUsersParams) *apiclient.Response {
	return t.Request(http.MethodGet, servicedef.PathUsers, apiclient.Query(params.Query()))
}

func getUser(t *T, id interface{}) *apiclient.Response {
	return t.Request(http.MethodGet, servicedef.PathUser(id))
}

func createUser(t *T, params servicedef.UserParams) *apiclient.Response {
	return t.Request(http.MethodPost, servicedef.PathUsers, apiclient.Form(params.Form()))
}

func fullName(item ldvalue.Value) ldvalue.Value {
	return ldvalue.String(fmt.Sprintf("%s %s",
		item.GetByKey("first_name").StringValue(), item.GetByKey("last_name").StringValue()))
}

func DoUserTests(t *T) {
	t.Group("list", doUserListTests)
	t.Group("single user", doSingleUserTests)
	t.Group("create", doUserChangeTests)
}

func doUserListTests(t *T) {
	t.Run("response schema", func(t *T) {
		resp := listUsers(t, servicedef.ListUsersParams{})

		verify.Code(t, resp, 200)
		verify.Schema(t, resp, t.SchemaPath("get_users_list_schema.json"))
	})

	t.Run("emails are correct when all users requested", func(t *T) {
		resp := listUsers(t, servicedef.ListUsersParams{PerPage: ldvalue.NewOptionalInt(totalUsers)})

		verify.Code(t, resp, 200)
		verify.JSONField(t, resp, "total", totalUsers)
		verify.Count(t, resp, totalUsers)
		verify.ListField(t, resp, "email", registeredEmails)
	})

	t.Run("names when pagination applied", func(t *T) {
		resp := listUsers(t, servicedef.ListUsersParams{
			PerPage: ldvalue.NewOptionalInt(4),
			Page:    ldvalue.NewOptionalInt(3),
		})

		verify.Code(t, resp, 200)
		verify.JSONField(t, resp, "total", totalUsers)
		verify.Count(t, resp, 4)
		verify.ListField(t, resp, "last_name", []string{"Funke", "Fields", "Edwards", "Howell"})
		verify.ListValues(t, resp, fullName,
			[]string{"Tobias Funke", "Byron Fields", "George Edwards", "Rachel Howell"})
	})

	t.Run("page size larger than number of users", func(t *T) {
		resp := listUsers(t, servicedef.ListUsersParams{PerPage: ldvalue.NewOptionalInt(20)})

		verify.Code(t, resp, 200)
		verify.JSONField(t, resp, "per_page", 20)
		verify.Count(t, resp, totalUsers)
	})
}

func doSingleUserTests(t *T) {
	t.Run("existing user data", func(t *T) {
		resp := getUser(t, 8)

		verify.Code(t, resp, 200)
		verify.DataField(t, resp, "id", 8)
		verify.DataField(t, resp, "email", "lindsay.ferguson@reqres.in")
		verify.DataField(t, resp, "first_name", "Lindsay")
		verify.DataField(t, resp, "last_name", "Ferguson")
		verify.DataField(t, resp, "avatar", t.BaseURL()+servicedef.AvatarPath(8))
	})

	t.Run("response schema", func(t *T) {
		resp := getUser(t, 8)

		verify.Code(t, resp, 200)
		verify.Schema(t, resp, t.SchemaPath("get_single_user.json"))
	})

	t.Run("avatar matches reference image", func(t *T) {
		resp := getUser(t, 7)
		verify.Code(t, resp, 200)

		body, err := resp.JSON()
		require.NoError(t, err)
		avatar := body.GetByKey("data").GetByKey("avatar").StringValue()
		require.NotEmpty(t, avatar, "user has no avatar URL")

		reference := t.ImagePath("7.jpeg")
		require.FileExists(t, reference,
			"reference image %s is missing; download it from %s (see resources/images/README.md)", reference, avatar)

		downloaded := t.Download(avatar)
		verify.ImagesEqual(t, downloaded, reference)
	})

	t.Run("non-existing user", func(t *T) {
		resp := getUser(t, 23)

		verify.Code(t, resp, 404)
		verify.EmptyBody(t, resp)
	})
}

func doUserChangeTests(t *T) {
	t.Run("create user", func(t *T) {
		resp := createUser(t, newUser)

		verify.Code(t, resp, 201)
		verify.Schema(t, resp, t.SchemaPath("post_create_user.json"))
		verify.JSONField(t, resp, "name", newUser.Name)
		verify.JSONField(t, resp, "job", newUser.Job)
		verify.DateIsCurrent(t, resp, "createdAt")
	})

	t.Run("update user", func(t *T) {
		params := servicedef.UserParams{Name: "morpheus", Job: "zion resident"}
		resp := t.Request(http.MethodPatch, servicedef.PathUser(2), apiclient.Form(params.Form()))

		verify.Code(t, resp, 200)
		verify.Schema(t, resp, t.SchemaPath("patch_update_user.json"))
		verify.JSONField(t, resp, "job", params.Job)
		verify.DateIsCurrent(t, resp, "updatedAt")
	})

	t.Run("add then remove user", func(t *T) {
		resp := createUser(t, newUser)
		verify.Code(t, resp, 201)

		body, err := resp.JSON()
		require.NoError(t, err)
		id := body.GetByKey("id")
		require.False(t, id.IsNull(), "created user has no id")

		var idText string
		if id.IsString() {
			idText = id.StringValue()
		} else {
			idText = id.JSONString()
		}

		respDel := t.Request(http.MethodDelete, servicedef.PathUser(idText))
		verify.Code(t, respDel, 204)
	})
}
