// internal/handlers/xilnex/xilnex_handler.go
package xilnex

import (
	"context"
	"errors"
	"net/http"

	xerrors "crm-service/internal/pkg/errors"
	"crm-service/internal/pkg/response"
	service "crm-service/internal/service/xilnex"

	"github.com/gin-gonic/gin"
)

// Client is the part of the Xilnex client operators can drive directly.
type Client interface {
	Enabled() bool
	MissingCredentials() []string
	GetClient(ctx context.Context, externalID string) (*service.Result, error)
	DeleteClient(ctx context.Context, externalID string) (*service.Result, error)
}

type XilnexHandler struct {
	client Client
}

func NewXilnexHandler(client Client) *XilnexHandler {
	return &XilnexHandler{client: client}
}

func (h *XilnexHandler) Status(c *gin.Context) {
	missing := h.client.MissingCredentials()
	if missing == nil {
		missing = []string{}
	}
	response.Success(c, http.StatusOK, "xilnex status", gin.H{
		"enabled":            h.client.Enabled(),
		"missingCredentials": missing,
	})
}

// GetClient fetches an external client record (admin only).
func (h *XilnexHandler) GetClient(c *gin.Context) {
	result, err := h.client.GetClient(c.Request.Context(), c.Param("id"))
	h.respond(c, "xilnex client retrieved", result, err)
}

// DeleteClient removes an external client record, e.g. one orphaned by a
// failed local save (admin only).
func (h *XilnexHandler) DeleteClient(c *gin.Context) {
	result, err := h.client.DeleteClient(c.Request.Context(), c.Param("id"))
	h.respond(c, "xilnex client deleted", result, err)
}

func (h *XilnexHandler) respond(c *gin.Context, message string, result *service.Result, err error) {
	if err != nil {
		response.Error(c, xerrors.HTTPStatus(err), "xilnex request unavailable", err)
		return
	}
	if !result.Success {
		status := http.StatusBadGateway
		if result.StatusCode == http.StatusNotFound {
			status = http.StatusNotFound
		}
		response.Error(c, status, "xilnex request failed", errors.New(result.Error), result)
		return
	}

	response.Success(c, http.StatusOK, message, result)
}
