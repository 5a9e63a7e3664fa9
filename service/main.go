package service

import (
	"github.com/tnqbao/gau-register-service/config"
	"github.com/tnqbao/gau-register-service/infra"
	"github.com/tnqbao/gau-register-service/repository"
)

type Service struct {
	Validator *Validator
	Audit     *AuditService
	Objects   *ObjectService
	Render    *RenderService
}

var serviceInstance *Service

func InitService(cfg *config.Config, infra *infra.Infra, repo *repository.Repository) *Service {
	if serviceInstance != nil {
		return serviceInstance
	}

	validator := NewValidator()
	audit := NewAuditService(infra, repo)

	serviceInstance = &Service{
		Validator: validator,
		Audit:     audit,
		Objects:   NewObjectService(cfg, infra, repo, validator, audit),
		Render:    NewRenderService(cfg, infra, repo),
	}
	return serviceInstance
}
