package controller

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-register-service/config"
	"github.com/tnqbao/gau-register-service/entity"
	"github.com/tnqbao/gau-register-service/exception"
	"github.com/tnqbao/gau-register-service/infra"
	"github.com/tnqbao/gau-register-service/repository"
	"github.com/tnqbao/gau-register-service/service"
	"github.com/tnqbao/gau-register-service/utils"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Service    *service.Service
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository, svc *service.Service) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}
	if svc == nil {
		panic("Failed to initialize Service")
	}
	return &Controller{
		Config:     config,
		Infra:      infra,
		Repository: repo,
		Service:    svc,
	}
}

// scopeCacheTTL bounds how long register/schema lookups are served
// from Redis. Writes invalidate eagerly, the TTL only covers peers.
const scopeCacheTTL = 5 * time.Minute

// resolveScope loads the register and schema named in the route and
// checks the schema actually belongs to the register. Lookups go
// through Redis since every object request repeats them.
func (ctrl *Controller) resolveScope(c *gin.Context) (*service.Scope, bool) {
	ctx := c.Request.Context()

	register := &entity.Register{}
	registerKey := "register:" + c.Param("register")
	if err := ctrl.Infra.Redis.Get(ctx, registerKey, register); err != nil {
		register, err = ctrl.Repository.RegisterRepo.Find(ctx, c.Param("register"))
		if err != nil {
			ctrl.respondError(c, err, "register not found")
			return nil, false
		}
		if err := ctrl.Infra.Redis.Set(ctx, registerKey, register, scopeCacheTTL); err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Controller] Failed to cache register: %v", err)
		}
	}

	schema := &entity.Schema{}
	schemaKey := "schema:" + c.Param("schema")
	if err := ctrl.Infra.Redis.Get(ctx, schemaKey, schema); err != nil {
		schema, err = ctrl.Repository.SchemaRepo.Find(ctx, c.Param("schema"))
		if err != nil {
			ctrl.respondError(c, err, "schema not found")
			return nil, false
		}
		if err := ctrl.Infra.Redis.Set(ctx, schemaKey, schema, scopeCacheTTL); err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Controller] Failed to cache schema: %v", err)
		}
	}
	if !register.HasSchema(schema.ID) {
		utils.JSON404(c, "schema does not belong to this register")
		return nil, false
	}

	return &service.Scope{
		Register: register,
		Schema:   schema,
		UserID:   c.GetString("user_id"),
		UserName: c.GetString("user_name"),
		Session:  c.GetString("session"),
		Request:  c.GetHeader("X-Request-ID"),
	}, true
}

// respondError maps the shared error taxonomy onto HTTP statuses.
func (ctrl *Controller) respondError(c *gin.Context, err error, notFoundMessage string) {
	ctx := c.Request.Context()

	if ve, ok := exception.IsValidation(err); ok {
		utils.JSON422(c, "validation failed", ve.Issues)
		return
	}
	if le, ok := exception.IsLocked(err); ok {
		utils.JSON423(c, le.Error(), le.LockedBy)
		return
	}
	switch {
	case exception.IsNotFound(err):
		utils.JSON404(c, notFoundMessage)
	case errors.Is(err, exception.ErrNotAuthorized):
		utils.JSON403(c, "not authorized")
	case errors.Is(err, exception.ErrInvalidIdentifier):
		utils.JSON400(c, "invalid identifier")
	case errors.Is(err, exception.ErrUnsupportedFormat):
		utils.JSON400(c, "unsupported format")
	default:
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Controller] Unexpected error: %v", err)
		utils.JSON500(c, "internal server error")
	}
}
