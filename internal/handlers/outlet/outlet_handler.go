// internal/handlers/outlet/outlet_handler.go
package outlet

import (
	"errors"
	"net/http"

	"crm-service/internal/domain/outlet"
	xerrors "crm-service/internal/pkg/errors"
	"crm-service/internal/pkg/response"
	service "crm-service/internal/service/outlet"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OutletHandler struct {
	outletService *service.OutletService
	logger        *zap.Logger
}

func NewOutletHandler(outletService *service.OutletService, logger *zap.Logger) *OutletHandler {
	return &OutletHandler{
		outletService: outletService,
		logger:        logger,
	}
}

func (h *OutletHandler) CreateOutlet(c *gin.Context) {
	var req outlet.CreateOutletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.outletService.CreateOutlet(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, "failed to create outlet", err)
		return
	}

	response.Success(c, http.StatusCreated, "outlet created successfully", result)
}

func (h *OutletHandler) GetOutlet(c *gin.Context) {
	result, err := h.outletService.GetOutlet(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "failed to get outlet", err)
		return
	}

	response.Success(c, http.StatusOK, "outlet retrieved", result)
}

func (h *OutletHandler) ListOutlets(c *gin.Context) {
	var filters outlet.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.outletService.ListOutlets(c.Request.Context(), filters)
	if err != nil {
		h.writeError(c, "failed to list outlets", err)
		return
	}

	response.Success(c, http.StatusOK, "outlets retrieved", result)
}

func (h *OutletHandler) UpdateOutlet(c *gin.Context) {
	var req outlet.UpdateOutletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.outletService.UpdateOutlet(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.writeError(c, "failed to update outlet", err)
		return
	}

	response.Success(c, http.StatusOK, "outlet updated successfully", result)
}

func (h *OutletHandler) DeleteOutlet(c *gin.Context) {
	if err := h.outletService.DeleteOutlet(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, "failed to delete outlet", err)
		return
	}

	response.Success(c, http.StatusOK, "outlet deleted successfully", nil)
}

func (h *OutletHandler) GetStats(c *gin.Context) {
	stats, err := h.outletService.GetStats(c.Request.Context())
	if err != nil {
		h.writeError(c, "failed to get outlet stats", err)
		return
	}

	response.Success(c, http.StatusOK, "outlet stats retrieved", stats)
}

func (h *OutletHandler) writeError(c *gin.Context, message string, err error) {
	if errors.Is(err, xerrors.ErrNotFound) {
		response.NotFound(c, "outlet not found")
		return
	}

	status := xerrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(message, zap.Error(err))
		err = xerrors.ErrInternal
	}
	response.Error(c, status, message, err)
}
