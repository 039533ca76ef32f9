package pet

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vetdesk/clinic-api/internal/handler"
	"github.com/vetdesk/clinic-api/internal/middleware"
	"github.com/vetdesk/clinic-api/internal/model"
	"github.com/vetdesk/clinic-api/internal/rbac"
	"github.com/vetdesk/clinic-api/internal/service/pet"
)

type Handler struct {
	svc *pet.Service
}

func NewHandler(svc *pet.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMw *middleware.AuthMiddleware) {
	pets := r.Group("/pets", authMw.Authenticate())
	{
		pets.POST("", authMw.RequireCapability(rbac.CapEditProfile), h.Create)
		pets.GET("", h.List)
		pets.GET("/:id", h.Get)
		pets.PUT("/:id", authMw.RequireCapability(rbac.CapEditProfile), h.Update)
		pets.DELETE("/:id", authMw.RequireCapability(rbac.CapEditProfile), h.Delete)
		pets.GET("/:id/owner-contact", h.GetOwnerContact)
		pets.POST("/:id/vaccinations", authMw.RequireCapability(rbac.CapAddVaccination), h.AddVaccination)
		pets.GET("/:id/vaccinations", h.ListVaccinations)
	}
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	var req model.CreatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.svc.CreatePet(c.Request.Context(), actor, &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	pets, err := h.svc.ListPets(c.Request.Context(), model.Pagination{Page: page, PageSize: pageSize})
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(pets))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid pet id"))
		return
	}

	p, err := h.svc.GetPet(c.Request.Context(), id)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid pet id"))
		return
	}

	var req model.UpdatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.svc.UpdatePet(c.Request.Context(), actor, id, &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid pet id"))
		return
	}

	if err := h.svc.DeletePet(c.Request.Context(), actor, id); err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("pet deleted"))
}

// GetOwnerContact exposes the owner's contact details to roles that may view
// them. The capability check lives in the service so denials are audited.
func (h *Handler) GetOwnerContact(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid pet id"))
		return
	}

	contact, err := h.svc.GetOwnerContact(c.Request.Context(), actor, id)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(contact))
}

func (h *Handler) AddVaccination(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid pet id"))
		return
	}

	var req model.CreateVaccinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	v, err := h.svc.AddVaccination(c.Request.Context(), actor, id, &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(v))
}

func (h *Handler) ListVaccinations(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid pet id"))
		return
	}

	vs, err := h.svc.ListVaccinations(c.Request.Context(), id)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(vs))
}
