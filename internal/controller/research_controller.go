package controller

import (
	"errors"
	"time"

	"glucogard_backend/internal/service"
	"glucogard_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResearchController struct {
	ResearchService *service.ResearchService
}

func NewResearchController(researchService *service.ResearchService) *ResearchController {
	return &ResearchController{ResearchService: researchService}
}

// ExportRequest selects the export window, dates in YYYY-MM-DD
// swagger:model ExportRequest
type ExportRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// Export godoc
// @Summary Export anonymized screenings
// @Description Uploads all submissions completed in [from, to) to object storage
// @Tags research
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body ExportRequest true "Export window"
// @Success 200 {object} util.Response{data=service.ExportSummary}
// @Failure 400 {object} util.Response "Invalid window"
// @Failure 409 {object} util.Response "Object storage not configured"
// @Router /api/research/export [post]
func (c *ResearchController) Export(ctx *gin.Context) {
	var req ExportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		util.BadRequest(ctx, "from: expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		util.BadRequest(ctx, "to: expected YYYY-MM-DD")
		return
	}
	if !to.After(from) {
		util.BadRequest(ctx, "to must be after from")
		return
	}

	summary, err := c.ResearchService.Export(ctx.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, util.ErrExportNotConfigured) {
			util.Conflict(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, summary)
}
