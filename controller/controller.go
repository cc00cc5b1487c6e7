package controller

import (
	"context"
	"net/http"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/songquanpeng/model-compare/common/helper"
	"github.com/songquanpeng/model-compare/model"
	"github.com/songquanpeng/model-compare/relay/adaptor/openai_compatible"
	"github.com/songquanpeng/model-compare/relay/comparison"
)

// Controller serves the JSON API over a workspace and an orchestrator.
type Controller struct {
	workspace    *model.Workspace
	orchestrator *comparison.Orchestrator
	// batchCtx parents every batch. Batches outlive the request that
	// started them and end when the server shuts down.
	batchCtx context.Context
}

func New(batchCtx context.Context, workspace *model.Workspace, orchestrator *comparison.Orchestrator) *Controller {
	return &Controller{
		workspace:    workspace,
		orchestrator: orchestrator,
		batchCtx:     batchCtx,
	}
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data":    data,
	})
}

// respondError maps err onto a status code and writes the failure envelope.
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	lg := gmw.GetLogger(c)
	if status >= http.StatusInternalServerError {
		lg.Error("request failed", zap.Int("status_code", status), zap.Error(err))
	} else {
		lg.Debug("request rejected", zap.Int("status_code", status), zap.Error(err))
	}

	c.JSON(status, gin.H{
		"success": false,
		"message": helper.MessageWithRequestId(err.Error(), c.GetString(helper.RequestIdKey)),
	})
}

func errorStatus(err error) int {
	var (
		invalid  *model.InvalidInputError
		fetchErr *openai_compatible.FetchError
	)
	switch {
	case errors.As(err, &invalid), comparison.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrProviderNotFound), errors.Is(err, model.ErrSlotNotFound):
		return http.StatusNotFound
	case errors.Is(err, comparison.ErrBatchRunning):
		return http.StatusConflict
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
