package reqrestests

import (
	"net/http"

	"github.com/apitests/reqres-contract-tests/apiclient"
	"github.com/apitests/reqres-contract-tests/servicedef"
	"github.com/apitests/reqres-contract-tests/verify"
)

const (
	registeredEmail    = "eve.holt@reqres.in"
	registeredPassword = "cityslicka"
	expectedLoginToken = "QpwL5tke4Pnpja7X4"
)

func login(t *T, params servicedef.LoginParams) *apiclient.Response {
	return t.Request(http.MethodPost, servicedef.PathLogin, apiclient.Form(params.Form()))
}

func DoLoginTests(t *T) {
	valid := servicedef.LoginParams{Email: registeredEmail, Password: registeredPassword}

	t.Run("response schema", func(t *T) {
		resp := login(t, valid)

		verify.Code(t, resp, 200)
		verify.Schema(t, resp, t.SchemaPath("post_login.json"))
	})

	t.Run("successful login returns token", func(t *T) {
		resp := login(t, valid)

		verify.Code(t, resp, 200)
		verify.JSONField(t, resp, "token", expectedLoginToken)
	})

	t.Run("JSON body is accepted", func(t *T) {
		resp := t.Request(http.MethodPost, servicedef.PathLogin, apiclient.JSON(valid))

		verify.Code(t, resp, 200)
		verify.JSONField(t, resp, "token", expectedLoginToken)
	})

	t.Run("user does not exist", func(t *T) {
		resp := login(t, servicedef.LoginParams{Email: "eve.holtNEW@reqres.in", Password: registeredPassword})

		verify.Code(t, resp, 400)
		verify.JSONField(t, resp, "error", "user not found")
	})

	t.Run("password is not provided", func(t *T) {
		resp := login(t, servicedef.LoginParams{Email: registeredEmail, Password: ""})

		verify.Code(t, resp, 400)
		verify.JSONField(t, resp, "error", "Missing password")
	})

	t.Run("malformed JSON body", func(t *T) {
		resp := t.Request(http.MethodPost, servicedef.PathLogin,
			apiclient.RawBody("application/json", `{"email": "eve.holt@reqres.in" "password: "pistol"}`))

		verify.Code(t, resp, 400)
		verify.TextContains(t, resp, "Bad Request")
	})
}
