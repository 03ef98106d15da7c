package controller

import (
	"glucogard_backend/internal/service"
	"glucogard_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// Patient godoc
// @Summary Patient home dashboard
// @Description Latest risk result, screening count and draft status
// @Tags dashboard
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.PatientDashboard}
// @Router /api/dashboard [get]
func (c *DashboardController) Patient(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	dash, err := c.DashboardService.PatientDashboard(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dash)
}

// Population godoc
// @Summary Population risk overview
// @Description Submission counts per risk category, for clinicians
// @Tags dashboard
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.PopulationOverview}
// @Failure 403 {object} util.Response "Clinician role required"
// @Router /api/dashboard/population [get]
func (c *DashboardController) Population(ctx *gin.Context) {
	overview, err := c.DashboardService.PopulationOverview()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}
