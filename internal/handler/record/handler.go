package record

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vetdesk/clinic-api/internal/handler"
	"github.com/vetdesk/clinic-api/internal/middleware"
	"github.com/vetdesk/clinic-api/internal/model"
	"github.com/vetdesk/clinic-api/internal/rbac"
	"github.com/vetdesk/clinic-api/internal/service/record"
)

type Handler struct {
	svc *record.Service
}

func NewHandler(svc *record.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMw *middleware.AuthMiddleware) {
	records := r.Group("/records", authMw.Authenticate())
	{
		records.GET("/:id", h.Get)
		records.PUT("/:id", authMw.RequireCapability(rbac.CapUpdateRecord), h.Update)
		records.GET("/:id/audit", authMw.RequireCapability(rbac.CapUpdateRecord), h.AuditTrail)
		// Code issuance and relock act on the caller's session, not a
		// specific record; the diagnosis lock is session-scoped.
		records.POST("/diagnosis/access-code", authMw.RequireCapability(rbac.CapUpdateRecord), h.RequestAccessCode)
		records.POST("/diagnosis/relock", authMw.RequireCapability(rbac.CapUpdateRecord), h.Relock)
	}

	pets := r.Group("/pets", authMw.Authenticate())
	{
		pets.POST("/:id/records", authMw.RequireCapability(rbac.CapAddRecord), h.Create)
		pets.GET("/:id/records", h.ListForPet)
	}
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	petID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid pet id"))
		return
	}

	var req model.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.svc.CreateRecord(c.Request.Context(), actor, petID, &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid record id"))
		return
	}

	rec, err := h.svc.GetRecord(c.Request.Context(), id)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rec))
}

func (h *Handler) ListForPet(c *gin.Context) {
	petID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid pet id"))
		return
	}

	recs, err := h.svc.ListRecords(c.Request.Context(), petID)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(recs))
}

// Update applies a record update. If the payload changes the diagnosis the
// service decides whether the caller needs the enclosed access code; a
// rejected code fails the entire update.
func (h *Handler) Update(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid record id"))
		return
	}

	var req model.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.svc.UpdateRecord(c.Request.Context(), actor, id, &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) AuditTrail(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid record id"))
		return
	}

	entries, err := h.svc.AuditTrail(c.Request.Context(), actor, id)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}

// RequestAccessCode generates a fresh diagnosis access code for the caller's
// session and emails it to the configured approver. The code never appears
// in the response.
func (h *Handler) RequestAccessCode(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	if err := h.svc.RequestDiagnosisAccessCode(c.Request.Context(), actor); err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, handler.NewMessageResponse("access code sent to approver"))
}

func (h *Handler) Relock(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	if err := h.svc.RelockDiagnosis(c.Request.Context(), actor); err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("diagnosis edits relocked"))
}
