package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type sample struct {
	Name string `json:"name" form:"name"`
	Age  *int   `json:"age" form:"age"`
}

func newContext(method, contentType, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/", bytes.NewBufferString(body))
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}
	return c, w
}

func TestParseID(t *testing.T) {
	c, _ := newContext(http.MethodGet, "", "")
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, ok := ParseID(c, "missing")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"abc", "0", "-3"} {
		c, w := newContext(http.MethodGet, "", "")
		c.Params = gin.Params{{Key: "id", Value: raw}}
		_, ok := ParseID(c, "missing")
		assert.False(t, ok, raw)
		assert.Equal(t, http.StatusNotFound, w.Code, raw)
		assert.Contains(t, w.Body.String(), `"message":"missing"`)
	}
}

func TestBindEmptyBody(t *testing.T) {
	c, _ := newContext(http.MethodPost, "application/json", "")
	var s sample
	require.NoError(t, Bind(c, &s))
	assert.Empty(t, s.Name)
}

func TestBindTypeMismatch(t *testing.T) {
	c, _ := newContext(http.MethodPost, "application/json", `{"age":"old"}`)
	var s sample
	err := Bind(c, &s)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "age")
}

func TestBindMalformedJSON(t *testing.T) {
	c, _ := newContext(http.MethodPost, "application/json", `{"name":`)
	var s sample
	assert.True(t, apperrors.IsCode(BindJSON(c, &s), apperrors.ErrBadRequest))
}

func TestBindForm(t *testing.T) {
	c, _ := newContext(http.MethodPost, "application/x-www-form-urlencoded", "name=Jane&age=31")
	var s sample
	require.NoError(t, Bind(c, &s))
	assert.Equal(t, "Jane", s.Name)
	require.NotNil(t, s.Age)
	assert.Equal(t, 31, *s.Age)

	file, err := FormFile(c, "profile_img")
	assert.NoError(t, err)
	assert.Nil(t, file)
}

func TestBindBodyOverLimit(t *testing.T) {
	c, w := newContext(http.MethodPost, "application/json", `{"name":"Jane Doe"}`)
	c.Request.ContentLength = -1
	c.Request.Body = http.MaxBytesReader(w, c.Request.Body, 5)

	var s sample
	err := Bind(c, &s)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrTooLarge))
	assert.Equal(t, http.StatusRequestEntityTooLarge, httputil.StatusCode(err))
}
