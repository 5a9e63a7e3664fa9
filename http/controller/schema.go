package controller

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-register-service/entity"
	"github.com/tnqbao/gau-register-service/http/controller/dto"
	"github.com/tnqbao/gau-register-service/query"
	"github.com/tnqbao/gau-register-service/utils"
	"gorm.io/datatypes"
)

func (ctrl *Controller) CreateSchema(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateSchemaRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Schema] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	version := req.Version
	if version == "" {
		version = "0.0.1"
	}
	hardValidation := true
	if req.HardValidation != nil {
		hardValidation = *req.HardValidation
	}
	schema := &entity.Schema{
		UUID:           uuid.NewString(),
		Title:          req.Title,
		Description:    req.Description,
		Version:        version,
		HardValidation: hardValidation,
	}
	if err := setSchemaDefinition(schema, req.Properties, req.Required); err != nil {
		utils.JSON400(c, "Invalid schema definition")
		return
	}

	if err := ctrl.Service.Validator.ValidateDefinition(schema); err != nil {
		ctrl.respondError(c, err, "schema not found")
		return
	}
	if err := ctrl.Repository.SchemaRepo.Create(ctx, schema); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Schema] Failed to create schema: %v", err)
		utils.JSON500(c, "Failed to create schema")
		return
	}
	utils.JSON201(c, schema)
}

func (ctrl *Controller) ListSchemas(c *gin.Context) {
	ctx := c.Request.Context()

	limit, offset := pageParams(c)
	schemas, total, err := ctrl.Repository.SchemaRepo.FindAll(ctx, limit, offset)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Schema] Failed to list schemas: %v", err)
		utils.JSON500(c, "Failed to list schemas")
		return
	}
	page := query.NewPagination(total, limit, offset, len(schemas))
	utils.JSON200(c, gin.H{
		"results": schemas,
		"total":   page.Total,
		"page":    page.Page,
		"pages":   page.Pages,
	})
}

func (ctrl *Controller) GetSchema(c *gin.Context) {
	ctx := c.Request.Context()

	schema, err := ctrl.Repository.SchemaRepo.Find(ctx, c.Param("schema"))
	if err != nil {
		ctrl.respondError(c, err, "schema not found")
		return
	}
	utils.JSON200(c, schema)
}

func (ctrl *Controller) UpdateSchema(c *gin.Context) {
	ctx := c.Request.Context()

	schema, err := ctrl.Repository.SchemaRepo.Find(ctx, c.Param("schema"))
	if err != nil {
		ctrl.respondError(c, err, "schema not found")
		return
	}

	var req dto.UpdateSchemaRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Schema] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	if req.Title != nil {
		schema.Title = *req.Title
	}
	if req.Description != nil {
		schema.Description = *req.Description
	}
	if req.Version != nil {
		schema.Version = *req.Version
	} else {
		schema.Version = utils.BumpPatch(schema.Version)
	}
	if req.HardValidation != nil {
		schema.HardValidation = *req.HardValidation
	}
	if req.Properties != nil || req.Required != nil {
		properties, perr := schema.PropertyMap()
		if perr != nil {
			utils.JSON500(c, "Failed to decode schema definition")
			return
		}
		required := schema.RequiredFields()
		if req.Properties != nil {
			properties = *req.Properties
		}
		if req.Required != nil {
			required = *req.Required
		}
		if err := setSchemaDefinition(schema, properties, required); err != nil {
			utils.JSON400(c, "Invalid schema definition")
			return
		}
	}

	if err := ctrl.Service.Validator.ValidateDefinition(schema); err != nil {
		ctrl.respondError(c, err, "schema not found")
		return
	}
	if err := ctrl.Repository.SchemaRepo.Update(ctx, schema); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Schema] Failed to update schema: %v", err)
		utils.JSON500(c, "Failed to update schema")
		return
	}
	ctrl.invalidateSchemaCache(c, schema)
	utils.JSON200(c, schema)
}

func (ctrl *Controller) DeleteSchema(c *gin.Context) {
	ctx := c.Request.Context()

	schema, err := ctrl.Repository.SchemaRepo.Find(ctx, c.Param("schema"))
	if err != nil {
		ctrl.respondError(c, err, "schema not found")
		return
	}
	if err := ctrl.Repository.SchemaRepo.Delete(ctx, schema); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Schema] Failed to delete schema: %v", err)
		utils.JSON500(c, "Failed to delete schema")
		return
	}
	ctrl.invalidateSchemaCache(c, schema)
	c.Status(204)
}

func (ctrl *Controller) invalidateSchemaCache(c *gin.Context, schema *entity.Schema) {
	ctx := c.Request.Context()
	keys := []string{
		"schema:" + c.Param("schema"),
		"schema:" + strconv.FormatUint(schema.ID, 10),
		"schema:" + schema.UUID,
	}
	if err := ctrl.Infra.Redis.Delete(ctx, keys...); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Schema] Failed to invalidate cache: %v", err)
	}
}

func setSchemaDefinition(schema *entity.Schema, properties map[string]*entity.Property, required []string) error {
	if properties == nil {
		properties = map[string]*entity.Property{}
	}
	if required == nil {
		required = []string{}
	}
	rawProperties, err := json.Marshal(properties)
	if err != nil {
		return err
	}
	rawRequired, err := json.Marshal(required)
	if err != nil {
		return err
	}
	schema.Properties = datatypes.JSON(rawProperties)
	schema.Required = datatypes.JSON(rawRequired)
	return nil
}
