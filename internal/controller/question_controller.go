package controller

import (
	"course_advisor_backend/internal/model"
	"course_advisor_backend/internal/service"
	"course_advisor_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	Service *service.QuestionService
}

func NewQuestionController(svc *service.QuestionService) *QuestionController {
	return &QuestionController{Service: svc}
}

// @Summary 创建题目
// @Tags 题库管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuestionRequest true "题目信息"
// @Success 201 {object} util.Response
// @Router /api/admin/questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.CreateQuestion(req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, q)
}

// @Summary 题目列表
// @Tags 题库管理
// @Produce json
// @Security BearerAuth
// @Param section query string false "小节"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/admin/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	section := model.SessionSection(ctx.Query("section"))

	qs, total, err := c.Service.ListQuestions(section, page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  qs,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 题目详情
// @Tags 题库管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := c.questionID(ctx)
	if !ok {
		return
	}

	q, err := c.Service.GetQuestion(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, q)
}

// @Summary 更新题目
// @Tags 题库管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body service.QuestionRequest true "题目信息"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	id, ok := c.questionID(ctx)
	if !ok {
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.UpdateQuestion(id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, q)
}

// @Summary 删除题目
// @Tags 题库管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id, ok := c.questionID(ctx)
	if !ok {
		return
	}

	if err := c.Service.DeleteQuestion(id); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// @Summary 学生端题目列表（不含计分权重）
// @Tags 题库管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/questions [get]
func (c *QuestionController) ListStudentQuestions(ctx *gin.Context) {
	qs, err := c.Service.ListStudentQuestions(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, qs)
}

func (c *QuestionController) questionID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		util.BadRequest(ctx, "invalid question id")
		return 0, false
	}
	return uint(id), true
}
