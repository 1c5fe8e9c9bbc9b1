package reqrestests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/apitests/reqres-contract-tests/apiclient"
	"github.com/apitests/reqres-contract-tests/framework"
	"github.com/apitests/reqres-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUser struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

var fakeUsers = []fakeUser{
	{1, "george.bluth@reqres.in", "George", "Bluth", ""},
	{2, "janet.weaver@reqres.in", "Janet", "Weaver", ""},
	{3, "emma.wong@reqres.in", "Emma", "Wong", ""},
	{4, "eve.holt@reqres.in", "Eve", "Holt", ""},
	{5, "charles.morris@reqres.in", "Charles", "Morris", ""},
	{6, "tracey.ramos@reqres.in", "Tracey", "Ramos", ""},
	{7, "michael.lawson@reqres.in", "Michael", "Lawson", ""},
	{8, "lindsay.ferguson@reqres.in", "Lindsay", "Ferguson", ""},
	{9, "tobias.funke@reqres.in", "Tobias", "Funke", ""},
	{10, "byron.fields@reqres.in", "Byron", "Fields", ""},
	{11, "george.edwards@reqres.in", "George", "Edwards", ""},
	{12, "rachel.howell@reqres.in", "Rachel", "Howell", ""},
}

// fakeService is an in-process imitation of the parts of the reqres API that the suite uses.
type fakeService struct {
	avatar     []byte
	loginToken string
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	data, _ := json.Marshal(value)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func badRequest(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(400)
	_, _ = w.Write([]byte("<html><body><pre>Bad Request</pre></body></html>"))
}

func now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// readParams accepts either a form-encoded or a JSON body.
func readParams(r *http.Request) (map[string]string, bool) {
	params := make(map[string]string)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var m map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			return nil, false
		}
		for k, v := range m {
			if s, ok := v.(string); ok {
				params[k] = s
			}
		}
		return params, true
	}
	if err := r.ParseForm(); err != nil {
		return nil, false
	}
	for k := range r.PostForm {
		params[k] = r.PostForm.Get(k)
	}
	return params, true
}

func withAvatar(r *http.Request, u fakeUser) fakeUser {
	u.Avatar = "http://" + r.Host + servicedef.AvatarPath(u.ID)
	return u
}

func support() map[string]string {
	return map[string]string{"url": "https://reqres.in/#support-heading", "text": "Thanks for testing"}
}

func (f *fakeService) handleLogin(w http.ResponseWriter, r *http.Request) {
	params, ok := readParams(r)
	switch {
	case !ok:
		badRequest(w)
	case params["email"] == "":
		writeJSON(w, 400, map[string]string{"error": "Missing email or username"})
	case params["password"] == "":
		writeJSON(w, 400, map[string]string{"error": "Missing password"})
	case params["email"] != registeredEmail:
		writeJSON(w, 400, map[string]string{"error": "user not found"})
	default:
		writeJSON(w, 200, map[string]string{"token": f.loginToken})
	}
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

func (f *fakeService) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		perPage, page := queryInt(r, "per_page", 6), queryInt(r, "page", 1)
		data := []fakeUser{}
		for i := (page - 1) * perPage; i < page*perPage && i < len(fakeUsers); i++ {
			data = append(data, withAvatar(r, fakeUsers[i]))
		}
		writeJSON(w, 200, map[string]interface{}{
			"page":        page,
			"per_page":    perPage,
			"total":       len(fakeUsers),
			"total_pages": (len(fakeUsers) + perPage - 1) / perPage,
			"data":        data,
			"support":     support(),
		})
	case http.MethodPost:
		params, ok := readParams(r)
		if !ok {
			badRequest(w)
			return
		}
		writeJSON(w, 201, map[string]string{
			"name": params["name"], "job": params["job"], "id": "651", "createdAt": now(),
		})
	default:
		w.WriteHeader(405)
	}
}

func (f *fakeService) handleUser(w http.ResponseWriter, r *http.Request) {
	idText := strings.TrimPrefix(r.URL.Path, servicedef.PathUsers+"/")
	switch r.Method {
	case http.MethodGet:
		id, err := strconv.Atoi(idText)
		if err != nil || id < 1 || id > len(fakeUsers) {
			writeJSON(w, 404, map[string]string{})
			return
		}
		writeJSON(w, 200, map[string]interface{}{"data": withAvatar(r, fakeUsers[id-1]), "support": support()})
	case http.MethodPut, http.MethodPatch:
		params, ok := readParams(r)
		if !ok {
			badRequest(w)
			return
		}
		writeJSON(w, 200, map[string]string{"name": params["name"], "job": params["job"], "updatedAt": now()})
	case http.MethodDelete:
		w.WriteHeader(204)
	default:
		w.WriteHeader(405)
	}
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(servicedef.PathLogin, f.handleLogin)
	mux.HandleFunc(servicedef.PathUsers, f.handleUsers)
	mux.HandleFunc(servicedef.PathUsers+"/", f.handleUser)
	mux.Handle("/img/faces/", httphelpers.HandlerWithResponse(200,
		http.Header{"Content-Type": {"image/jpeg"}}, f.avatar))
	return mux
}

func makeImage(t *testing.T, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// makeResources copies the shipped schemas into dir and adds the reference image, if any.
func makeResources(t *testing.T, dir string, reference []byte) {
	schemasDir := filepath.Join(dir, "schemas")
	imagesDir := filepath.Join(dir, "images")
	require.NoError(t, os.MkdirAll(schemasDir, 0755))
	require.NoError(t, os.MkdirAll(imagesDir, 0755))

	entries, err := os.ReadDir(filepath.Join("..", "resources", "schemas"))
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join("..", "resources", "schemas", e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(schemasDir, e.Name()), data, 0644))
	}
	if reference != nil {
		require.NoError(t, os.WriteFile(filepath.Join(imagesDir, "7.jpeg"), reference, 0644))
	}
}

func runAgainstFake(t *testing.T, service *fakeService, reference []byte, filter framework.Filter) (
	framework.Results, *framework.CapturingReportSink) {
	var results framework.Results
	sink := &framework.CapturingReportSink{}
	withTempDir(t, func(dir string) {
		resources := filepath.Join(dir, "resources")
		tempDir := filepath.Join(dir, "tmp")
		require.NoError(t, os.MkdirAll(tempDir, 0755))
		makeResources(t, resources, reference)

		httphelpers.WithServer(service.handler(), func(server *httptest.Server) {
			env := &Environment{
				Client:       apiclient.NewClient(server.URL, http.Header{"X-Api-Key": {"reqres-free-v1"}}),
				ResourcesDir: resources,
				TempDir:      tempDir,
			}
			results = RunTestSuite(env, filter, nil, sink)
		})

		leftovers, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		assert.Len(t, leftovers, 0, "downloaded files were not removed")
	})
	return results, sink
}

func failedTestIDs(results framework.Results) []string {
	var ret []string
	for _, f := range results.Failures {
		ret = append(ret, f.TestID.String())
	}
	return ret
}

func TestSuitePassesAgainstConformingService(t *testing.T) {
	avatar := makeImage(t, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	service := &fakeService{avatar: avatar, loginToken: expectedLoginToken}

	results, sink := runAgainstFake(t, service, avatar, nil)

	for _, f := range results.Failures {
		for _, err := range f.Errors {
			t.Logf("%s: %s", f.TestID, err)
		}
	}
	require.True(t, results.OK(), "failures: %v", failedTestIDs(results))

	var ids []string
	for _, r := range results.Tests {
		ids = append(ids, r.TestID.String())
	}
	assert.Contains(t, ids, "login/successful login returns token")
	assert.Contains(t, ids, "users/list/names when pagination applied")
	assert.Contains(t, ids, "users/single user/avatar matches reference image")
	assert.Contains(t, ids, "users/create/add then remove user")

	var apiCurls, downloadCurls int
	for _, a := range sink.Attachments() {
		if a.Attachment.Name != "Curl" {
			continue
		}
		curl := string(a.Attachment.Data)
		if strings.Contains(curl, servicedef.AvatarPath(7)) {
			// avatar downloads go to an arbitrary URL, so default headers are not sent
			downloadCurls++
			assert.NotContains(t, curl, "X-Api-Key")
		} else {
			apiCurls++
			assert.Contains(t, curl, "X-Api-Key: reqres-free-v1")
		}
	}
	assert.NotZero(t, apiCurls)
	assert.Equal(t, 1, downloadCurls)
}

func TestSuiteReportsEachFailureIndependently(t *testing.T) {
	avatar := makeImage(t, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	reference := makeImage(t, color.RGBA{R: 0, G: 0, B: 255, A: 255})
	service := &fakeService{avatar: avatar, loginToken: "wrong-token"}

	results, _ := runAgainstFake(t, service, reference, nil)

	assert.ElementsMatch(t, []string{
		"login/successful login returns token",
		"login/JSON body is accepted",
		"users/single user/avatar matches reference image",
	}, failedTestIDs(results))
}

func TestSuiteReportsMissingReferenceImage(t *testing.T) {
	avatar := makeImage(t, color.White)
	service := &fakeService{avatar: avatar, loginToken: expectedLoginToken}

	results, _ := runAgainstFake(t, service, nil, nil)

	require.Equal(t, []string{"users/single user/avatar matches reference image"}, failedTestIDs(results))
	message := fmt.Sprint(results.Failures[0].Errors)
	assert.Contains(t, message, "reference image")
	assert.Contains(t, message, "is missing")
	assert.Contains(t, message, servicedef.AvatarPath(7))
}

func ranTestIDs(results framework.Results) []string {
	var ret []string
	for _, r := range results.Tests {
		if !r.Skipped {
			ret = append(ret, r.TestID.String())
		}
	}
	return ret
}

func runFiltered(t *testing.T, patterns ...string) framework.Results {
	avatar := makeImage(t, color.White)
	service := &fakeService{avatar: avatar, loginToken: expectedLoginToken}
	filters := framework.RegexFilters{}
	for _, p := range patterns {
		require.NoError(t, filters.MustMatch.Set(p))
	}
	results, _ := runAgainstFake(t, service, avatar, filters.AsFilter)
	require.True(t, results.OK(), "failures: %v", failedTestIDs(results))
	return results
}

func TestSuiteFilterByGroupPrefix(t *testing.T) {
	results := runFiltered(t, "^login/")

	ran := ranTestIDs(results)
	assert.Len(t, ran, 6)
	for _, id := range ran {
		assert.True(t, strings.HasPrefix(id, "login/"), id)
	}
	assert.Equal(t, 11, results.SkippedCount())
}

func TestSuiteFilterByLeafName(t *testing.T) {
	results := runFiltered(t, "non-existing user")

	assert.Equal(t, []string{"users/single user/non-existing user"}, ranTestIDs(results))
}

func TestSuiteFilterByNestedGroup(t *testing.T) {
	results := runFiltered(t, "single user/")

	assert.Equal(t, []string{
		"users/single user/existing user data",
		"users/single user/response schema",
		"users/single user/avatar matches reference image",
		"users/single user/non-existing user",
	}, ranTestIDs(results))
}

// withTempDir runs action with a new directory that is removed when the test ends.
func withTempDir(t *testing.T, action func(dir string)) {
	action(t.TempDir())
}
