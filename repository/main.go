package repository

import (
	"time"

	"github.com/tnqbao/gau-register-service/config"
	"github.com/tnqbao/gau-register-service/infra"
	"github.com/tnqbao/gau-register-service/query"
)

type Repository struct {
	RegisterRepo   *RegisterRepository
	SchemaRepo     *SchemaRepository
	ObjectRepo     *ObjectRepository
	AuditTrailRepo *AuditTrailRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra, cfg *config.Config) *Repository {
	db := infra.Postgres.DB
	translator := query.NewPostgresTranslator()
	lockDuration := time.Duration(cfg.EnvConfig.Lock.DefaultDuration) * time.Second

	repository = &Repository{
		RegisterRepo:   NewRegisterRepository(db),
		SchemaRepo:     NewSchemaRepository(db),
		ObjectRepo:     NewObjectRepository(db, translator, lockDuration),
		AuditTrailRepo: NewAuditTrailRepository(db),
	}
	return repository
}
