package controller

import (
	"course_advisor_backend/internal/service"
	"course_advisor_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type EvaluationController struct {
	Service *service.EvaluationService
}

func NewEvaluationController(svc *service.EvaluationService) *EvaluationController {
	return &EvaluationController{Service: svc}
}

// @Summary AI辅助评估
// @Tags AI评估
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.EvaluateRequest true "作答与学生信息"
// @Success 200 {object} util.Response
// @Router /api/evaluations/evaluate [post]
func (c *EvaluationController) Evaluate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.EvaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	req.UserID = claims.UserID

	res, err := c.Service.Evaluate(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, res)
}

// @Summary 直接保存评估记录（不调用AI）
// @Tags AI评估
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SaveEvaluationRequest true "评估内容"
// @Success 201 {object} util.Response
// @Router /api/evaluations [post]
func (c *EvaluationController) SaveEvaluation(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SaveEvaluationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	req.UserID = claims.UserID

	e, err := c.Service.SaveEvaluation(req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, e)
}

// @Summary 获取评估记录
// @Tags AI评估
// @Produce json
// @Security BearerAuth
// @Param id path string true "评估ID"
// @Success 200 {object} util.Response
// @Router /api/evaluations/{id} [get]
func (c *EvaluationController) GetEvaluation(ctx *gin.Context) {
	e, err := c.Service.GetEvaluation(ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, e)
}

// @Summary 当前用户的评估记录列表
// @Tags AI评估
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/evaluations/mine [get]
func (c *EvaluationController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	es, err := c.Service.ListByUser(claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, es)
}

// @Summary 评估记录列表（顾问/管理员）
// @Tags AI评估
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/admin/evaluations [get]
func (c *EvaluationController) ListEvaluations(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	es, total, err := c.Service.ListEvaluations(page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  es,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 删除评估记录
// @Tags AI评估
// @Produce json
// @Security BearerAuth
// @Param id path string true "评估ID"
// @Success 200 {object} util.Response
// @Router /api/admin/evaluations/{id} [delete]
func (c *EvaluationController) DeleteEvaluation(ctx *gin.Context) {
	if err := c.Service.DeleteEvaluation(ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
