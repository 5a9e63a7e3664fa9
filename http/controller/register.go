package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-register-service/entity"
	"github.com/tnqbao/gau-register-service/http/controller/dto"
	"github.com/tnqbao/gau-register-service/query"
	"github.com/tnqbao/gau-register-service/utils"
)

func (ctrl *Controller) CreateRegister(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateRegisterRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Register] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	version := req.Version
	if version == "" {
		version = "0.0.1"
	}
	register := &entity.Register{
		UUID:        uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Version:     version,
		Folder:      req.Folder,
	}
	register.SetSchemaIDs(req.Schemas)

	if err := ctrl.Repository.RegisterRepo.Create(ctx, register); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Register] Failed to create register: %v", err)
		utils.JSON500(c, "Failed to create register")
		return
	}
	utils.JSON201(c, register)
}

func (ctrl *Controller) ListRegisters(c *gin.Context) {
	ctx := c.Request.Context()

	limit, offset := pageParams(c)
	registers, total, err := ctrl.Repository.RegisterRepo.FindAll(ctx, limit, offset)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Register] Failed to list registers: %v", err)
		utils.JSON500(c, "Failed to list registers")
		return
	}
	page := query.NewPagination(total, limit, offset, len(registers))
	utils.JSON200(c, gin.H{
		"results": registers,
		"total":   page.Total,
		"page":    page.Page,
		"pages":   page.Pages,
	})
}

func (ctrl *Controller) GetRegister(c *gin.Context) {
	ctx := c.Request.Context()

	register, err := ctrl.Repository.RegisterRepo.Find(ctx, c.Param("register"))
	if err != nil {
		ctrl.respondError(c, err, "register not found")
		return
	}
	utils.JSON200(c, register)
}

func (ctrl *Controller) UpdateRegister(c *gin.Context) {
	ctx := c.Request.Context()

	register, err := ctrl.Repository.RegisterRepo.Find(ctx, c.Param("register"))
	if err != nil {
		ctrl.respondError(c, err, "register not found")
		return
	}

	var req dto.UpdateRegisterRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Register] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	if req.Title != nil {
		register.Title = *req.Title
	}
	if req.Description != nil {
		register.Description = *req.Description
	}
	if req.Version != nil {
		register.Version = *req.Version
	} else {
		register.Version = utils.BumpPatch(register.Version)
	}
	if req.Folder != nil {
		register.Folder = *req.Folder
	}
	if req.Schemas != nil {
		register.SetSchemaIDs(*req.Schemas)
	}

	if err := ctrl.Repository.RegisterRepo.Update(ctx, register); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Register] Failed to update register: %v", err)
		utils.JSON500(c, "Failed to update register")
		return
	}
	ctrl.invalidateRegisterCache(c, register)
	utils.JSON200(c, register)
}

func (ctrl *Controller) DeleteRegister(c *gin.Context) {
	ctx := c.Request.Context()

	register, err := ctrl.Repository.RegisterRepo.Find(ctx, c.Param("register"))
	if err != nil {
		ctrl.respondError(c, err, "register not found")
		return
	}
	if err := ctrl.Repository.RegisterRepo.Delete(ctx, register); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Register] Failed to delete register: %v", err)
		utils.JSON500(c, "Failed to delete register")
		return
	}
	ctrl.invalidateRegisterCache(c, register)
	c.Status(204)
}

func (ctrl *Controller) GetRegisterStatistics(c *gin.Context) {
	ctx := c.Request.Context()

	register, err := ctrl.Repository.RegisterRepo.Find(ctx, c.Param("register"))
	if err != nil {
		ctrl.respondError(c, err, "register not found")
		return
	}
	stats := ctrl.Repository.ObjectRepo.GetStatistics(ctx, register.ID, 0)
	utils.JSON200(c, stats)
}

// invalidateRegisterCache drops every cache key the register can be
// resolved under, by id and by uuid.
func (ctrl *Controller) invalidateRegisterCache(c *gin.Context, register *entity.Register) {
	ctx := c.Request.Context()
	keys := []string{
		"register:" + c.Param("register"),
		"register:" + strconv.FormatUint(register.ID, 10),
		"register:" + register.UUID,
	}
	if err := ctrl.Infra.Redis.Delete(ctx, keys...); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Register] Failed to invalidate cache: %v", err)
	}
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit = 20
	if raw := c.Query("_limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if raw := c.Query("_offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	if raw := c.Query("_page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 1 {
			offset = (parsed - 1) * limit
		}
	}
	return limit, offset
}
