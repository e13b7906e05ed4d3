package controller

import (
	"errors"
	"fmt"
	"formflow_backend/internal/model"
	"formflow_backend/internal/service"
	"formflow_backend/internal/util"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// FormController 表单页索引、字段编辑与公共提交入口
type FormController struct {
	Forms   *service.FormService
	Auth    *service.AuthService
	Storage *service.StorageService
}

func NewFormController(forms *service.FormService, auth *service.AuthService, storage *service.StorageService) *FormController {
	return &FormController{
		Forms:   forms,
		Auth:    auth,
		Storage: storage,
	}
}

// ListPages godoc
// @Summary 表单页索引
// @Description 分页列出当前用户可查看提交的表单页
// @Tags 表单页
// @Produce json
// @Security ApiKeyAuth
// @Param p query int false "页码" default(1)
// @Success 200 {object} util.Response
// @Router /api/forms [get]
func (c *FormController) ListPages(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	// 管理员不限范围，编辑只看自己的页面
	var ownerID *uint
	if claims.Role != model.Admin {
		ownerID = &claims.UserID
	}

	pages, pagination, err := c.Forms.ListPages(ownerID, ctx.Query("p"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": pages, "pagination": pagination})
}

// CreatePage godoc
// @Summary 创建表单页
// @Tags 表单页
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.FormPageRequest true "页面信息"
// @Success 201 {object} util.Response
// @Router /api/forms [post]
func (c *FormController) CreatePage(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.FormPageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	page, err := c.Forms.CreatePage(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, page)
}

// GetPage godoc
// @Summary 表单页详情（含当前字段定义）
// @Tags 表单页
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "表单页ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/forms/{id} [get]
func (c *FormController) GetPage(ctx *gin.Context) {
	page, err := c.Forms.GetPage(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrPageNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	claims := util.GetUserFromContext(ctx)
	if !c.Auth.CanViewSubmissions(claims, page) {
		util.Forbidden(ctx)
		return
	}

	fields, err := c.Forms.PageRepo.FieldsByPage(page.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	page.Fields = fields

	// 详情页带上提交计数（提交面板入口显示用）
	count, err := c.Forms.SubmissionRepo.CountByPage(page.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"page": page, "submissionCount": count})
}

// AddField godoc
// @Summary 新增字段
// @Tags 表单页
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "表单页ID"
// @Param body body service.FormFieldRequest true "字段信息"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response "同页标签重复"
// @Router /api/forms/{id}/fields [post]
func (c *FormController) AddField(ctx *gin.Context) {
	var req service.FormFieldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	field, err := c.Forms.AddField(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPageNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrDuplicateLabel):
			util.Error(ctx, 409, "There is another field with this label, please change one of them.")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, field)
}

// UpdateField godoc
// @Summary 更新字段
// @Tags 表单页
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "表单页ID"
// @Param fid path int true "字段ID"
// @Param body body service.FormFieldRequest true "字段信息"
// @Success 200 {object} util.Response
// @Router /api/forms/{id}/fields/{fid} [put]
func (c *FormController) UpdateField(ctx *gin.Context) {
	var req service.FormFieldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	field, err := c.Forms.UpdateField(util.MustParseUint(ctx.Param("fid")), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrFieldNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrDuplicateLabel):
			util.Error(ctx, 409, "There is another field with this label, please change one of them.")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, field)
}

// DeleteField godoc
// @Summary 删除字段
// @Tags 表单页
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "表单页ID"
// @Param fid path int true "字段ID"
// @Success 200 {object} util.Response
// @Router /api/forms/{id}/fields/{fid} [delete]
func (c *FormController) DeleteField(ctx *gin.Context) {
	fid := util.MustParseUint(ctx.Param("fid"))
	if err := c.Forms.DeleteField(fid); err != nil {
		if errors.Is(err, util.ErrFieldNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"deleted": fid})
}

// Submit godoc
// @Summary 公共提交入口
// @Description 接收一次表单填写。JSON 体为答案映射；multipart 时文件部分
// @Description 经存储服务落盘，答案记录为文件 URL。不做字段渲染或校验。
// @Tags 表单提交
// @Accept json
// @Accept mpfd
// @Produce json
// @Param id path int true "表单页ID"
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/forms/{id}/submit [post]
func (c *FormController) Submit(ctx *gin.Context) {
	pageID := util.MustParseUint(ctx.Param("id"))

	answers := make(map[string]interface{})

	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		form, err := ctx.MultipartForm()
		if err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}

		for key, values := range form.Value {
			if len(values) == 1 {
				answers[key] = values[0]
			} else {
				answers[key] = values
			}
		}

		for key, files := range form.File {
			urls := make([]interface{}, 0, len(files))
			for _, fh := range files {
				src, err := fh.Open()
				if err != nil {
					util.BadRequest(ctx, err.Error())
					return
				}
				stored := fmt.Sprintf("submissions/%d/%s%s", pageID, model.GenerateUUID(), filepath.Ext(fh.Filename))
				url, err := c.Storage.Provider.Upload(ctx.Request.Context(), stored, src, fh.Size, fh.Header.Get("Content-Type"))
				src.Close()
				if err != nil {
					util.LogInternalError(ctx, err)
					return
				}
				urls = append(urls, url)
			}
			if len(urls) == 1 {
				answers[key] = urls[0]
			} else {
				answers[key] = urls
			}
		}
	} else {
		if err := ctx.ShouldBindJSON(&answers); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	submission, err := c.Forms.CreateSubmission(pageID, answers)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPageNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPageNotLive):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"id": submission.ID})
}
