package controller

import (
	"course_advisor_backend/internal/service"
	"course_advisor_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	Service *service.SessionService
}

func NewSessionController(svc *service.SessionService) *SessionController {
	return &SessionController{Service: svc}
}

// @Summary 创建测评会话
// @Tags 测评会话
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Router /api/sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.Service.CreateSession(claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, session)
}

// @Summary 提交单题作答
// @Tags 测评会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话ID"
// @Param body body service.SubmitAnswerRequest true "作答信息"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/answers [post]
func (c *SessionController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	sessionID, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	var req service.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.Service.SubmitAnswer(sessionID, claims.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// @Summary 更新答题进度
// @Tags 测评会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话ID"
// @Param body body service.UpdateProgressRequest true "进度信息"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/progress [put]
func (c *SessionController) UpdateProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	sessionID, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	var req service.UpdateProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.Service.UpdateProgress(sessionID, claims.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// @Summary 提交会话并生成推荐结果
// @Tags 测评会话
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/submit [post]
func (c *SessionController) SubmitSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	sessionID, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	results, err := c.Service.SubmitSession(sessionID, claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, results)
}

// @Summary 获取会话详情
// @Tags 测评会话
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	sessionID, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	session, err := c.Service.GetSession(sessionID, claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// @Summary 测评历史（按时间倒序）
// @Tags 测评会话
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/sessions [get]
func (c *SessionController) ListHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sessions, err := c.Service.ListHistory(claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, sessions)
}

func (c *SessionController) sessionID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		util.BadRequest(ctx, "invalid session id")
		return 0, false
	}
	return uint(id), true
}
