package controller

import (
	"errors"
	"strconv"

	"glucogard_backend/internal/questionnaire"
	"glucogard_backend/internal/repository"
	"glucogard_backend/internal/service"
	"glucogard_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ScreeningController exposes the adaptive questionnaire. The client carries
// the session state (current question, answers) in each request; drafts in
// Redis are the only server-side copy, and only until submission.
type ScreeningController struct {
	ScreeningService *service.ScreeningService
}

func NewScreeningController(screeningService *service.ScreeningService) *ScreeningController {
	return &ScreeningController{ScreeningService: screeningService}
}

// GetFlow godoc
// @Summary Active questionnaire definition
// @Description Returns every question so the client can render ahead
// @Tags screening
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/screening/flow [get]
func (c *ScreeningController) GetFlow(ctx *gin.Context) {
	flow := c.ScreeningService.Flow()
	util.Success(ctx, gin.H{
		"name":            flow.Name,
		"startQuestionId": flow.StartQuestionID,
		"questions":       flow.Questions,
	})
}

// Start godoc
// @Summary Start a screening session
// @Description Returns the first question and a fresh session id
// @Tags screening
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Failure 500 {object} util.Response "Flow configuration defect"
// @Router /api/screening/start [post]
func (c *ScreeningController) Start(ctx *gin.Context) {
	step, err := c.ScreeningService.Start(nil)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"sessionId": uuid.New().String(),
		"step":      step,
	})
}

// Advance godoc
// @Summary Next question for the current state
// @Tags screening
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.AdvanceRequest true "Current question, chosen option and answers so far"
// @Success 200 {object} util.Response{data=service.StepResponse}
// @Failure 400 {object} util.Response "Unknown option"
// @Failure 500 {object} util.Response "Flow configuration defect"
// @Router /api/screening/advance [post]
func (c *ScreeningController) Advance(ctx *gin.Context) {
	var req service.AdvanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	step, err := c.ScreeningService.Advance(&req)
	if err != nil {
		if errors.Is(err, util.ErrOptionNotFound) {
			util.BadRequest(ctx, "unknown option for question "+req.CurrentQuestionID)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, step)
}

// ValidateRequest checks one answer
// swagger:model ValidateRequest
type ValidateRequest struct {
	QuestionID string              `json:"questionId" binding:"required"`
	Value      questionnaire.Value `json:"value"`
}

// Validate godoc
// @Summary Validate a single answer
// @Description A failing answer is a 200 with the failure as data, not an error status
// @Tags screening
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body ValidateRequest true "Question id and candidate value"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "Invalid payload"
// @Failure 404 {object} util.Response "Unknown question"
// @Router /api/screening/validate [post]
func (c *ScreeningController) Validate(ctx *gin.Context) {
	var req ValidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	verr, err := c.ScreeningService.ValidateAnswer(req.QuestionID, req.Value)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"valid": verr == nil, "error": verr})
}

// Submit godoc
// @Summary Submit a finished screening
// @Description Scores the answers and stores the submission once per session id
// @Tags screening
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.SubmitRequest true "Session id and complete answers"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 400 {object} util.Response "Invalid or incomplete answers"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/screening/submit [post]
func (c *ScreeningController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.ScreeningService.Submit(ctx.Request.Context(), claims.UserID, &req)
	if err != nil {
		var answerErr *service.AnswerError
		switch {
		case errors.As(err, &answerErr):
			util.BadRequest(ctx, answerErr.Error())
		case errors.Is(err, util.ErrScreeningIncomplete):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, res)
}

// SaveDraft godoc
// @Summary Save an in-progress session
// @Tags screening
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body repository.ScreeningDraft true "Session state"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Invalid payload"
// @Router /api/screening/draft [put]
func (c *ScreeningController) SaveDraft(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var draft repository.ScreeningDraft
	if err := ctx.ShouldBindJSON(&draft); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if draft.SessionID == "" {
		util.BadRequest(ctx, "sessionId is required")
		return
	}

	if err := c.ScreeningService.SaveDraft(ctx.Request.Context(), claims.UserID, &draft); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetDraft godoc
// @Summary Resume a saved session
// @Tags screening
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=repository.ScreeningDraft}
// @Failure 404 {object} util.Response "No draft"
// @Router /api/screening/draft [get]
func (c *ScreeningController) GetDraft(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	draft, err := c.ScreeningService.ResumeDraft(ctx.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrDraftNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, draft)
}

// DeleteDraft godoc
// @Summary Discard a saved session
// @Tags screening
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/screening/draft [delete]
func (c *ScreeningController) DeleteDraft(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ScreeningService.DiscardDraft(ctx.Request.Context(), claims.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// History godoc
// @Summary Past screenings of the current user
// @Tags screening
// @Produce  json
// @Security BearerAuth
// @Param   page  query int false "Page, starting at 1"
// @Param   limit query int false "Page size, max 100"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/screening/history [get]
func (c *ScreeningController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	subs, total, err := c.ScreeningService.History(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: subs, Total: total, Page: page, Limit: limit})
}

// Latest godoc
// @Summary Most recent screening of the current user
// @Tags screening
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.ScreeningSubmission}
// @Failure 404 {object} util.Response "Never screened"
// @Router /api/screening/latest [get]
func (c *ScreeningController) Latest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sub, err := c.ScreeningService.Latest(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrSubmissionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, sub)
}
