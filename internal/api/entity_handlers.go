package api

import (
	"net/http"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/repository"
	"github.com/Tsitronov/frutti-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// registerEntityRoutes mounts list/create/update/delete for one entity under /<name>
func registerEntityRoutes[T repository.Record](group *gin.RouterGroup, h *Handler, svc service.EntityService[T]) {
	e := &entityHandler[T]{Handler: h, svc: svc}
	path := "/" + svc.Name()

	group.GET(path, e.list)
	group.POST(path, e.create)
	group.PUT(path+"/:id", e.update)
	group.DELETE(path+"/:id", e.delete)
}

type entityHandler[T repository.Record] struct {
	*Handler
	svc service.EntityService[T]
}

func (e *entityHandler[T]) list(c *gin.Context) {
	rows, err := e.svc.List(c.Request.Context())
	if err != nil {
		e.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (e *entityHandler[T]) create(c *gin.Context) {
	var rec T
	if err := c.ShouldBindJSON(&rec); err != nil {
		e.respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err)
		return
	}

	created, err := e.svc.Create(c.Request.Context(), rec)
	if err != nil {
		e.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

func (e *entityHandler[T]) update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		e.respondError(c, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}

	var rec T
	if err := c.ShouldBindJSON(&rec); err != nil {
		e.respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err)
		return
	}

	updated, err := e.svc.Update(c.Request.Context(), id, rec)
	if err != nil {
		e.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (e *entityHandler[T]) delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		e.respondError(c, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}

	if err := e.svc.Delete(c.Request.Context(), id); err != nil {
		e.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
