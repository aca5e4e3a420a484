package payment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/payment"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

const (
	msgCreated  = "Payment recorded successfully!"
	msgUpdated  = "Payment updated successfully!"
	msgArchived = "Payment archived successfully."

	msgCreateFailed  = "Failed to create payment record."
	msgListFailed    = "Failed to retrieve payments."
	msgGetFailed     = "Failed to retrieve payment record."
	msgUpdateFailed  = "Failed to update payment record."
	msgArchiveFailed = "Failed to archive payment record."
)

type Handler struct {
	service payment.PaymentService
}

func NewHandler(service payment.PaymentService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("", h.CreatePayment)
		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPayment)
		payments.PUT("/:id", h.UpdatePayment)
		payments.PATCH("/:id", h.UpdatePayment)
		payments.DELETE("/:id", h.ArchivePayment)
	}
}

func (h *Handler) CreatePayment(c *gin.Context) {
	var req model.CreatePaymentRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err, msgCreateFailed)
		return
	}

	created, err := h.service.CreatePayment(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err, msgCreateFailed)
		return
	}

	httputil.RespondWithCreated(c, msgCreated, created)
}

func (h *Handler) ListPayments(c *gin.Context) {
	payments, err := h.service.ListPayments(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err, msgListFailed)
		return
	}

	httputil.RespondWithSuccess(c, "", payments)
}

func (h *Handler) GetPayment(c *gin.Context) {
	id, ok := handler.ParseID(c, payment.MsgNotFound)
	if !ok {
		return
	}

	p, err := h.service.GetPayment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err, msgGetFailed)
		return
	}

	httputil.RespondWithSuccess(c, "", p)
}

func (h *Handler) UpdatePayment(c *gin.Context) {
	id, ok := handler.ParseID(c, payment.MsgNotFound)
	if !ok {
		return
	}

	var req model.UpdatePaymentRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err, msgUpdateFailed)
		return
	}

	updated, err := h.service.UpdatePayment(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err, msgUpdateFailed)
		return
	}

	httputil.RespondWithSuccess(c, msgUpdated, updated)
}

func (h *Handler) ArchivePayment(c *gin.Context) {
	id, ok := handler.ParseID(c, payment.MsgArchiveNotFound)
	if !ok {
		return
	}

	if err := h.service.ArchivePayment(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err, msgArchiveFailed)
		return
	}

	httputil.RespondWithSuccess(c, msgArchived, nil)
}
