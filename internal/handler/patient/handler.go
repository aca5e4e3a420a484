package patient

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/patient"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

const (
	msgCreated  = "Patient account created successfully!"
	msgUpdated  = "Patient profile updated successfully!"
	msgArchived = "Patient account archived successfully."

	msgCreateFailed  = "Failed to create patient account."
	msgListFailed    = "Failed to retrieve patients."
	msgGetFailed     = "Failed to retrieve patient."
	msgUpdateFailed  = "Failed to update patient profile."
	msgArchiveFailed = "Failed to archive patient account."

	imageField = "profile_img"
)

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.PATCH("/:id", h.UpdatePatient)
		// multipart clients cannot send files with PUT
		patients.POST("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.ArchivePatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := handler.Bind(c, &req); err != nil {
		httputil.RespondWithError(c, err, msgCreateFailed)
		return
	}
	clearBlankAge(c, &req.PatientProfile)

	image, err := handler.FormFile(c, imageField)
	if err != nil {
		httputil.RespondWithError(c, err, msgCreateFailed)
		return
	}

	created, err := h.service.CreatePatient(c.Request.Context(), &req, image)
	if err != nil {
		httputil.RespondWithError(c, err, msgCreateFailed)
		return
	}

	httputil.RespondWithCreated(c, msgCreated, created)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.ListPatients(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err, msgListFailed)
		return
	}

	httputil.RespondWithSuccess(c, "", patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParseID(c, patient.MsgNotFound)
	if !ok {
		return
	}

	p, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err, msgGetFailed)
		return
	}

	httputil.RespondWithSuccess(c, "", p)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.ParseID(c, patient.MsgNotFound)
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if err := handler.Bind(c, &req); err != nil {
		httputil.RespondWithError(c, err, msgUpdateFailed)
		return
	}
	clearBlankAge(c, &req.PatientProfile)

	image, err := handler.FormFile(c, imageField)
	if err != nil {
		httputil.RespondWithError(c, err, msgUpdateFailed)
		return
	}

	updated, err := h.service.UpdatePatient(c.Request.Context(), id, &req, image)
	if err != nil {
		httputil.RespondWithError(c, err, msgUpdateFailed)
		return
	}

	httputil.RespondWithSuccess(c, msgUpdated, updated)
}

func (h *Handler) ArchivePatient(c *gin.Context) {
	id, ok := handler.ParseID(c, patient.MsgNotFound)
	if !ok {
		return
	}

	if err := h.service.ArchivePatient(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err, msgArchiveFailed)
		return
	}

	httputil.RespondWithSuccess(c, msgArchived, nil)
}

// clearBlankAge treats a blank form age as absent. Form binding decodes an
// empty string into 0, while JSON clients send null.
func clearBlankAge(c *gin.Context, profile *model.PatientProfile) {
	switch c.ContentType() {
	case binding.MIMEMultipartPOSTForm, binding.MIMEPOSTForm:
	default:
		return
	}
	if v, ok := c.GetPostForm("age"); ok && strings.TrimSpace(v) == "" {
		profile.Age = nil
	}
}
