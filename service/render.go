package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/tnqbao/gau-register-service/config"
	"github.com/tnqbao/gau-register-service/entity"
	"github.com/tnqbao/gau-register-service/infra"
	"github.com/tnqbao/gau-register-service/repository"
)

// RenderService turns stored objects into response documents: payload
// plus @self metadata, with optional field selection and relation
// expansion. Rendering never mutates the stored entity.
type RenderService struct {
	config     *config.Config
	infra      *infra.Infra
	repository *repository.Repository
}

func NewRenderService(cfg *config.Config, infra *infra.Infra, repo *repository.Repository) *RenderService {
	return &RenderService{config: cfg, infra: infra, repository: repo}
}

// RenderOptions select and shape the rendered document.
type RenderOptions struct {
	// Fields is an allow-list of payload keys. Empty means all.
	Fields []string
	// Unset removes payload keys after Fields is applied.
	Unset []string
	// Extend names payload fields whose relation values should be
	// replaced by the rendered related object. "@self."-prefixed terms
	// embed register, schema or statistics documents into @self.
	Extend []string
}

// RenderObject builds the response document for one object.
func (s *RenderService) RenderObject(ctx context.Context, scope *Scope, object *entity.ObjectEntity, opts RenderOptions) (map[string]interface{}, error) {
	return s.render(ctx, scope, object, opts, 0)
}

// RenderObjects renders a result page in order.
func (s *RenderService) RenderObjects(ctx context.Context, scope *Scope, objects []entity.ObjectEntity, opts RenderOptions) ([]map[string]interface{}, error) {
	rendered := make([]map[string]interface{}, 0, len(objects))
	for idx := range objects {
		doc, err := s.render(ctx, scope, &objects[idx], opts, 0)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, doc)
	}
	return rendered, nil
}

func (s *RenderService) render(ctx context.Context, scope *Scope, object *entity.ObjectEntity, opts RenderOptions, depth int) (map[string]interface{}, error) {
	payload, err := object.Payload()
	if err != nil {
		return nil, err
	}

	doc := map[string]interface{}{}
	if len(opts.Fields) > 0 {
		for _, field := range opts.Fields {
			if value, ok := payload[field]; ok {
				doc[field] = value
			}
		}
	} else {
		for field, value := range payload {
			doc[field] = value
		}
	}
	for _, field := range opts.Unset {
		delete(doc, field)
	}

	if len(opts.Extend) > 0 && depth < s.maxExtendDepth() {
		s.extendRelations(ctx, scope, doc, opts, depth)
	}

	doc["id"] = object.ID
	doc["uuid"] = object.UUID
	self := s.selfMetadata(object)
	s.extendSelf(ctx, scope, object, self, opts.Extend)
	doc["@self"] = self
	return doc, nil
}

// extendSelf embeds register, schema or statistics documents into the
// @self block for "@self."-prefixed extend terms. Terms that cannot be
// resolved leave the bare ids in place.
func (s *RenderService) extendSelf(ctx context.Context, scope *Scope, object *entity.ObjectEntity, self map[string]interface{}, extend []string) {
	for _, term := range extend {
		if !strings.HasPrefix(term, "@self.") {
			continue
		}
		switch strings.TrimPrefix(term, "@self.") {
		case "register":
			if register := s.resolveRegister(ctx, scope, object.RegisterID); register != nil {
				self["register"] = register
			}
		case "schema":
			if schema := s.resolveSchema(ctx, scope, object.SchemaID); schema != nil {
				self["schema"] = schema
			}
		case "stats":
			if s.repository != nil {
				self["stats"] = s.repository.ObjectRepo.GetStatistics(ctx, object.RegisterID, object.SchemaID)
			}
		}
	}
}

// resolveRegister prefers the scope's already-loaded register; related
// objects reached through extension may live in another one.
func (s *RenderService) resolveRegister(ctx context.Context, scope *Scope, registerID uint64) *entity.Register {
	if scope != nil && scope.Register != nil && scope.Register.ID == registerID {
		return scope.Register
	}
	if s.repository == nil {
		return nil
	}
	register, err := s.repository.RegisterRepo.Find(ctx, strconv.FormatUint(registerID, 10))
	if err != nil {
		return nil
	}
	return register
}

func (s *RenderService) resolveSchema(ctx context.Context, scope *Scope, schemaID uint64) *entity.Schema {
	if scope != nil && scope.Schema != nil && scope.Schema.ID == schemaID {
		return scope.Schema
	}
	if s.repository == nil {
		return nil
	}
	schema, err := s.repository.SchemaRepo.Find(ctx, strconv.FormatUint(schemaID, 10))
	if err != nil {
		return nil
	}
	return schema
}

func (s *RenderService) selfMetadata(object *entity.ObjectEntity) map[string]interface{} {
	self := map[string]interface{}{
		"id":       object.ID,
		"uuid":     object.UUID,
		"uri":      object.URI,
		"register": object.RegisterID,
		"schema":   object.SchemaID,
		"version":  object.Version,
		"created":  object.CreatedAt,
		"updated":  object.UpdatedAt,
	}
	if object.Folder != "" {
		self["folder"] = object.Folder
	}
	if object.Published != nil {
		self["published"] = object.Published
	}
	if object.Depublished != nil {
		self["depublished"] = object.Depublished
	}
	if object.Deleted != nil {
		self["deleted"] = object.Deleted
	}
	if issues := object.ValidationIssues(); len(issues) > 0 {
		self["validationErrors"] = issues
	}
	if lock := object.Lock(time.Now()); lock != nil {
		self["lock"] = lock
	}
	return self
}

// extendRelations replaces relation values in the document with the
// rendered related object. Values that cannot be resolved are left
// untouched so a broken relation never breaks the read.
func (s *RenderService) extendRelations(ctx context.Context, scope *Scope, doc map[string]interface{}, opts RenderOptions, depth int) {
	extendAll := false
	wanted := map[string]bool{}
	for _, field := range opts.Extend {
		if field == "all" || field == "*" {
			extendAll = true
			continue
		}
		wanted[field] = true
	}

	childOpts := RenderOptions{Extend: opts.Extend}
	for field, value := range doc {
		if field == "id" || field == "uuid" || field == "@self" {
			continue
		}
		if !extendAll && !wanted[field] {
			continue
		}
		switch typed := value.(type) {
		case string:
			if resolved := s.resolveRelation(ctx, scope, typed, childOpts, depth); resolved != nil {
				doc[field] = resolved
			}
		case []interface{}:
			expanded := make([]interface{}, len(typed))
			copy(expanded, typed)
			changed := false
			for idx, item := range typed {
				ref, ok := item.(string)
				if !ok {
					continue
				}
				if resolved := s.resolveRelation(ctx, scope, ref, childOpts, depth); resolved != nil {
					expanded[idx] = resolved
					changed = true
				}
			}
			if changed {
				doc[field] = expanded
			}
		}
	}
}

func (s *RenderService) resolveRelation(ctx context.Context, scope *Scope, reference string, opts RenderOptions, depth int) map[string]interface{} {
	identifier := reference
	if strings.HasPrefix(reference, "http://") || strings.HasPrefix(reference, "https://") {
		parts := strings.Split(strings.TrimRight(reference, "/"), "/")
		identifier = parts[len(parts)-1]
	}

	related, err := s.repository.ObjectRepo.FindAnywhere(ctx, identifier)
	if err != nil {
		return nil
	}
	rendered, err := s.render(ctx, scope, related, opts, depth+1)
	if err != nil {
		s.infra.Logger.WarningWithContextf(ctx, "failed to render related object %s: %v", identifier, err)
		return nil
	}
	return rendered
}

func (s *RenderService) maxExtendDepth() int {
	depth := s.config.EnvConfig.Render.MaxExtendDepth
	if depth <= 0 {
		depth = 3
	}
	return depth
}
