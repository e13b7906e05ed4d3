package controller

import (
	"errors"
	"fmt"
	"formflow_backend/internal/model"
	"formflow_backend/internal/service"
	"formflow_backend/internal/util"
	"formflow_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmissionController 提交列表、CSV 导出与删除门禁的 HTTP 入口
type SubmissionController struct {
	Submissions *service.SubmissionService
	Forms       *service.FormService
	Auth        *service.AuthService
}

func NewSubmissionController(submissions *service.SubmissionService, forms *service.FormService, auth *service.AuthService) *SubmissionController {
	return &SubmissionController{
		Submissions: submissions,
		Forms:       forms,
		Auth:        auth,
	}
}

// resolvePage 解析路径里的页面并做查看授权。失败时已写好响应，返回 nil
func (c *SubmissionController) resolvePage(ctx *gin.Context) *model.FormPage {
	pageID := util.MustParseUint(ctx.Param("id"))
	page, err := c.Forms.GetPage(pageID)
	if err != nil {
		if errors.Is(err, util.ErrPageNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return nil
	}

	claims := util.GetUserFromContext(ctx)
	if !c.Auth.CanViewSubmissions(claims, page) {
		util.Forbidden(ctx)
		return nil
	}
	return page
}

// ListSubmissions godoc
// @Summary 提交列表 / CSV 导出
// @Description 按日期窗口过滤页面的提交；action=CSV 时整窗导出为 CSV 流
// @Tags 表单提交
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "表单页ID"
// @Param date_from query string false "起始日期（月/日/年 或 ISO），含当天"
// @Param date_to query string false "截止日期，含整天"
// @Param p query int false "页码" default(1)
// @Param action query string false "CSV 表示导出"
// @Success 200 {object} util.Response{data=service.SubmissionListing}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/forms/{id}/submissions [get]
func (c *SubmissionController) ListSubmissions(ctx *gin.Context) {
	page := c.resolvePage(ctx)
	if page == nil {
		return
	}

	window := c.Submissions.BuildWindow(page.ID, ctx.Query("date_from"), ctx.Query("date_to"))

	if ctx.Query("action") == "CSV" {
		ctx.Header("Content-Type", "text/csv; charset=utf-8")
		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", page.Slug))
		ctx.Status(http.StatusOK)

		if err := c.Submissions.ExportCSV(window, ctx.Writer); err != nil {
			// 头已发出，写 JSON 错误体只会污染 CSV，只记录
			logger.Log.Error("CSV export aborted", zap.Error(err))
		}
		return
	}

	listing, err := c.Submissions.List(window, ctx.Query("p"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, listing)
}

// ConfirmDelete godoc
// @Summary 删除确认视图
// @Description GET 只返回待确认的提交内容，不做任何变更
// @Tags 表单提交
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "表单页ID"
// @Param sid path int true "提交ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/forms/{id}/submissions/{sid}/delete [get]
func (c *SubmissionController) ConfirmDelete(ctx *gin.Context) {
	page := c.resolvePage(ctx)
	if page == nil {
		return
	}

	claims := util.GetUserFromContext(ctx)
	if !c.Auth.CanDeleteSubmissions(claims, page) {
		util.Forbidden(ctx)
		return
	}

	submission, err := c.Submissions.FindForPage(page.ID, util.MustParseUint(ctx.Param("sid")))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, gin.H{
		"confirm":    true,
		"submission": submission,
	})
}

// DeleteSubmission godoc
// @Summary 删除一条提交
// @Description POST 执行删除；成功后重定向回提交列表
// @Tags 表单提交
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "表单页ID"
// @Param sid path int true "提交ID"
// @Success 302 {string} string "重定向到列表"
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/forms/{id}/submissions/{sid}/delete [post]
func (c *SubmissionController) DeleteSubmission(ctx *gin.Context) {
	page := c.resolvePage(ctx)
	if page == nil {
		return
	}

	claims := util.GetUserFromContext(ctx)
	if !c.Auth.CanDeleteSubmissions(claims, page) {
		util.Forbidden(ctx)
		return
	}

	if err := c.Submissions.Delete(page.ID, util.MustParseUint(ctx.Param("sid"))); err != nil {
		if errors.Is(err, util.ErrSubmissionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	ctx.Redirect(http.StatusFound, fmt.Sprintf("/api/forms/%d/submissions", page.ID))
}
