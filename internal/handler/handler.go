package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

// Handler is implemented by every resource handler
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// ParseID reads the :id path parameter. Anything that is not a positive
// integer cannot name a record, so it is answered with notFound.
func ParseID(c *gin.Context, notFound string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.RespondWithError(c, apperrors.NotFound(notFound, err), "")
		return 0, false
	}
	return id, true
}

// Bind decodes the request body into obj according to its content type.
// An empty body decodes to the zero value so that schema validation can
// report the missing fields.
func Bind(c *gin.Context, obj interface{}) error {
	if c.Request.ContentLength == 0 && c.ContentType() == "" {
		return nil
	}
	err := c.ShouldBind(obj)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return bindError(err)
}

// BindJSON is Bind restricted to JSON bodies.
func BindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindWith(obj, binding.JSON)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return bindError(err)
}

func bindError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.TooLarge(fmt.Sprintf("Request body exceeds %d bytes.", maxErr.Limit), err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperrors.Validation(map[string][]string{
			typeErr.Field: {fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type)},
		})
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return apperrors.Validation(map[string][]string{
			"request": {fmt.Sprintf("%q is not a valid number", numErr.Num)},
		})
	}

	return apperrors.BadRequest("The request body could not be parsed.", err)
}

// FormFile returns the named multipart file, or nil when the request is not
// multipart or carries no such file.
func FormFile(c *gin.Context, name string) (*model.FileUpload, error) {
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil, nil
	}

	header, err := c.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperrors.BadRequest("The uploaded file could not be read.", err)
	}

	f, err := header.Open()
	if err != nil {
		return nil, apperrors.BadRequest("The uploaded file could not be read.", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.BadRequest("The uploaded file could not be read.", err)
	}
	return &model.FileUpload{Filename: header.Filename, Content: content}, nil
}
