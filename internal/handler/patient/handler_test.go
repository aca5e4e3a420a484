package patient

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/internal/service/event"
	"github.com/jwalitptl/hospital-api/internal/service/patient"
	"github.com/jwalitptl/hospital-api/pkg/blob"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type envelope struct {
	IsSuccess bool                `json:"isSuccess"`
	Message   string              `json:"message"`
	Data      json.RawMessage     `json:"data"`
	Errors    map[string][]string `json:"errors"`
	Error     string              `json:"error"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	blobs, err := blob.NewFSStore(afero.NewMemMapFs(), "/public/hms_files", "hms_files", nil)
	require.NoError(t, err)

	stores := memory.NewStores(memory.NewStore())
	svc := patient.NewService(stores.Patients, security.NewBcryptHasher(bcrypt.MinCost), blobs, event.NewEmitter(nil))

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(r *gin.Engine, method, path, contentType string, body []byte) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func janeJSON(email string) []byte {
	return []byte(`{"full_name":"Jane Doe","email":"` + email + `","password":"secret1","password_confirmation":"secret1"}`)
}

func dataField(t *testing.T, env envelope) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func TestCreatePatientJSON(t *testing.T) {
	r := setupRouter(t)

	w, env := do(r, http.MethodPost, "/api/v1/patients", "application/json", janeJSON("jane@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	assert.True(t, env.IsSuccess)
	assert.Equal(t, msgCreated, env.Message)

	data := dataField(t, env)
	assert.Equal(t, false, data["is_archived"])
	assert.NotZero(t, data["id"])
	assert.NotContains(t, data, "password")
	assert.NotContains(t, w.Body.String(), "secret1")
}

func TestCreatePatientValidationFailure(t *testing.T) {
	r := setupRouter(t)

	w, env := do(r, http.MethodPost, "/api/v1/patients", "application/json", []byte(`{"email":"not-an-email"}`))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	assert.False(t, env.IsSuccess)
	assert.Contains(t, env.Errors, "full_name")
	assert.Contains(t, env.Errors, "email")
	assert.Contains(t, env.Message, "more error")
	assert.Empty(t, env.Error)
}

func TestCreatePatientTypeMismatch(t *testing.T) {
	r := setupRouter(t)

	w, env := do(r, http.MethodPost, "/api/v1/patients", "application/json", []byte(`{"age":"old"}`))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Errors, "age")
}

func TestCreatePatientDuplicateEmail(t *testing.T) {
	r := setupRouter(t)

	w, _ := do(r, http.MethodPost, "/api/v1/patients", "application/json", janeJSON("jane@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(r, http.MethodPost, "/api/v1/patients", "application/json", janeJSON("jane@example.com"))
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, []string{patient.MsgEmailTaken}, env.Errors["email"])
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile(imageField, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestCreatePatientMultipartWithImage(t *testing.T) {
	r := setupRouter(t)

	body, ct := multipartBody(t, map[string]string{
		"full_name":             "Jane Doe",
		"email":                 "jane@example.com",
		"gender":                "Female",
		"password":              "secret1",
		"password_confirmation": "secret1",
	}, "avatar.png", pngHeader)

	w, env := do(r, http.MethodPost, "/api/v1/patients", ct, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := dataField(t, env)
	img, _ := data["profile_img"].(string)
	assert.True(t, strings.HasPrefix(img, "hms_files/patient_"), img)
	assert.Equal(t, "Female", data["gender"])
}

func TestCreatePatientMultipartBlankAgeIsNull(t *testing.T) {
	r := setupRouter(t)

	body, ct := multipartBody(t, map[string]string{
		"full_name":             "Jane Doe",
		"email":                 "jane@example.com",
		"age":                   "",
		"password":              "secret1",
		"password_confirmation": "secret1",
	}, "", nil)

	w, env := do(r, http.MethodPost, "/api/v1/patients", ct, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := dataField(t, env)
	require.Contains(t, data, "age")
	assert.Nil(t, data["age"])
}

func TestCreatePatientRejectsNonImage(t *testing.T) {
	r := setupRouter(t)

	body, ct := multipartBody(t, map[string]string{
		"full_name":             "Jane Doe",
		"email":                 "jane@example.com",
		"password":              "secret1",
		"password_confirmation": "secret1",
	}, "notes.txt", []byte("hello"))

	w, env := do(r, http.MethodPost, "/api/v1/patients", ct, body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotEmpty(t, env.Errors["profile_img"])
}

func TestGetPatientNotFound(t *testing.T) {
	r := setupRouter(t)

	for _, path := range []string{"/api/v1/patients/99", "/api/v1/patients/abc"} {
		w, env := do(r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.False(t, env.IsSuccess)
		assert.Equal(t, patient.MsgNotFound, env.Message)
	}
}

func TestArchiveHidesPatient(t *testing.T) {
	r := setupRouter(t)

	_, env := do(r, http.MethodPost, "/api/v1/patients", "application/json", janeJSON("jane@example.com"))
	path := "/api/v1/patients/" + jsonNumber(dataField(t, env)["id"].(float64))

	w, env := do(r, http.MethodDelete, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, msgArchived, env.Message)

	w, _ = do(r, http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(r, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(r, http.MethodGet, "/api/v1/patients", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestUpdatePatient(t *testing.T) {
	r := setupRouter(t)

	_, env := do(r, http.MethodPost, "/api/v1/patients", "application/json", janeJSON("jane@example.com"))
	path := "/api/v1/patients/" + jsonNumber(dataField(t, env)["id"].(float64))

	w, env := do(r, http.MethodPut, path, "application/json", []byte(`{"full_name":"Jane Smith","email":"jane@example.com","age":40}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, msgUpdated, env.Message)

	data := dataField(t, env)
	assert.Equal(t, "Jane Smith", data["full_name"])
	assert.Equal(t, float64(40), data["age"])

	w, _ = do(r, http.MethodPatch, "/api/v1/patients/12345", "application/json", []byte(`{"full_name":"X","email":"x@example.com"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(int64(f))
	return string(b)
}
