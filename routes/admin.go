package routes

import (
	"rentline-server/models"
	"rentline-server/storage"
	"rentline-server/utils"

	"github.com/kataras/iris/v12"
)

// AdminListUsers: GET /api/admin/users — paginated account overview
func AdminListUsers(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("perPage", 50)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	query := storage.DB.Model(&models.User{})
	if role := ctx.URLParam("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&users).Error; err != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Something went wrong.")
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

// AdminListAuditLogs: GET /api/admin/audit-logs — the decision trail written
// by application status changes, newest first
func AdminListAuditLogs(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("perPage", 50)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	query := storage.DB.Model(&models.AuditLog{})
	if action := ctx.URLParam("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resourceType := ctx.URLParam("resourceType"); resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}

	var total int64
	query.Count(&total)

	var logs []models.AuditLog
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&logs).Error; err != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Something went wrong.")
		return
	}

	utils.JSONPage(ctx, logs, page, perPage, total)
}
