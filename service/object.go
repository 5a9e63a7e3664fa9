package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-register-service/config"
	"github.com/tnqbao/gau-register-service/entity"
	"github.com/tnqbao/gau-register-service/exception"
	"github.com/tnqbao/gau-register-service/infra"
	"github.com/tnqbao/gau-register-service/infra/produce"
	"github.com/tnqbao/gau-register-service/repository"
	"github.com/tnqbao/gau-register-service/utils"
)

// Scope carries the register/schema pair and the acting user for one
// request. Controllers resolve it from the route and the JWT claims.
type Scope struct {
	Register *entity.Register
	Schema   *entity.Schema
	UserID   string
	UserName string
	Session  string
	Request  string
}

// ObjectService implements the object lifecycle: save with validation
// and versioning, soft delete, publishing and revert.
type ObjectService struct {
	config     *config.Config
	infra      *infra.Infra
	repository *repository.Repository
	validator  *Validator
	audit      *AuditService
}

func NewObjectService(cfg *config.Config, infra *infra.Infra, repo *repository.Repository, validator *Validator, audit *AuditService) *ObjectService {
	return &ObjectService{
		config:     cfg,
		infra:      infra,
		repository: repo,
		validator:  validator,
		audit:      audit,
	}
}

// SaveOptions tune a single save call.
type SaveOptions struct {
	// Version overrides the automatic patch bump when set.
	Version string
	// Process labels the lock holder's process during the save.
	Process string
}

// SaveObject creates or updates an object within the scope. Validation
// runs against the scope's schema: hard validation rejects the payload,
// soft validation stores the issues on the object and saves anyway.
func (s *ObjectService) SaveObject(ctx context.Context, scope *Scope, identifier string, payload map[string]interface{}, opts SaveOptions) (*entity.ObjectEntity, error) {
	now := time.Now()

	// An explicit identifier must resolve. Updates never fall back to
	// creating a fresh object under a new uuid.
	var existing *entity.ObjectEntity
	if identifier != "" {
		found, err := s.repository.ObjectRepo.Find(ctx, scope.Register.ID, scope.Schema.ID, identifier, false)
		if err != nil {
			return nil, err
		}
		existing = found
	}

	if existing != nil {
		if info := existing.Lock(now); info != nil && info.LockedBy != scope.UserID {
			return nil, &exception.LockedError{LockedBy: info.LockedBy, Process: info.Process, Until: info.Until}
		}
	}

	verr := s.validator.ValidateObject(payload, scope.Schema)
	if !verr.Empty() && scope.Schema.HardValidation {
		return nil, verr
	}

	object := existing
	action := entity.ActionUpdate
	var old *entity.ObjectEntity
	if object == nil {
		object = &entity.ObjectEntity{
			UUID:       uuid.NewString(),
			RegisterID: scope.Register.ID,
			SchemaID:   scope.Schema.ID,
			Version:    "0.0.1",
		}
		action = entity.ActionCreate
	} else {
		// SetPayload below overwrites the fetched entity in place, so
		// the prior state for the audit diff is kept aside first.
		snapshot := *existing
		old = &snapshot
	}

	version := opts.Version
	if version == "" {
		if action == entity.ActionCreate {
			version = object.Version
		} else {
			version = utils.BumpPatch(object.Version)
		}
	}

	clean := stripReserved(payload)
	if err := object.SetPayload(clean); err != nil {
		return nil, err
	}
	object.Version = version
	object.URI = s.objectURI(scope, object.UUID)
	object.SetRelations(utils.ExtractRelations(clean))
	if err := object.SetValidationIssues(verr); err != nil {
		return nil, err
	}

	var err error
	if action == entity.ActionCreate {
		err = s.repository.ObjectRepo.Create(ctx, object)
	} else {
		err = s.repository.ObjectRepo.Update(ctx, object)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.audit.Record(ctx, scope, old, object, action); err != nil {
		s.infra.Logger.WarningWithContextf(ctx, "failed to record audit trail for object %s: %v", object.UUID, err)
	}
	s.publishEvent(ctx, scope, object, action)

	// A successful save releases the saver's own lock. The earlier lock
	// check guarantees any remaining lock belongs to the scope's user.
	// Release failure is logged and ignored, the lock expires anyway.
	if object.Lock(now) != nil {
		object.ClearLock()
		if err := s.repository.ObjectRepo.Update(ctx, object); err != nil {
			s.infra.Logger.WarningWithContextf(ctx, "failed to release lock on object %s after save: %v", object.UUID, err)
		}
	}

	return object, nil
}

// GetObject fetches one object by id or uuid within the scope.
func (s *ObjectService) GetObject(ctx context.Context, scope *Scope, identifier string, includeDeleted bool) (*entity.ObjectEntity, error) {
	return s.repository.ObjectRepo.Find(ctx, scope.Register.ID, scope.Schema.ID, identifier, includeDeleted)
}

// DeleteObject soft-deletes an object. The trail records the deletion
// so the object can be restored or reverted later.
func (s *ObjectService) DeleteObject(ctx context.Context, scope *Scope, identifier string) error {
	object, err := s.repository.ObjectRepo.Find(ctx, scope.Register.ID, scope.Schema.ID, identifier, false)
	if err != nil {
		return err
	}
	if info := object.Lock(time.Now()); info != nil && info.LockedBy != scope.UserID {
		return &exception.LockedError{LockedBy: info.LockedBy, Process: info.Process, Until: info.Until}
	}
	if err := s.repository.ObjectRepo.Delete(ctx, object); err != nil {
		return err
	}
	// The payload is untouched by a soft delete, so the entry carries
	// no field changes. Replaying across it keeps the content intact.
	if _, err := s.audit.Record(ctx, scope, object, object, entity.ActionDelete); err != nil {
		s.infra.Logger.WarningWithContextf(ctx, "failed to record audit trail for object %s: %v", object.UUID, err)
	}
	s.publishEvent(ctx, scope, object, entity.ActionDelete)
	return nil
}

// RestoreObject clears the soft-delete marker.
func (s *ObjectService) RestoreObject(ctx context.Context, scope *Scope, identifier string) (*entity.ObjectEntity, error) {
	object, err := s.repository.ObjectRepo.Find(ctx, scope.Register.ID, scope.Schema.ID, identifier, true)
	if err != nil {
		return nil, err
	}
	if object.Deleted == nil {
		return object, nil
	}
	if err := s.repository.ObjectRepo.Restore(ctx, object); err != nil {
		return nil, err
	}
	if _, err := s.audit.Record(ctx, scope, object, object, entity.ActionRestore); err != nil {
		s.infra.Logger.WarningWithContextf(ctx, "failed to record audit trail for object %s: %v", object.UUID, err)
	}
	s.publishEvent(ctx, scope, object, entity.ActionRestore)
	return object, nil
}

// DestroyObject removes an object permanently, trail included.
func (s *ObjectService) DestroyObject(ctx context.Context, scope *Scope, identifier string) error {
	object, err := s.repository.ObjectRepo.Find(ctx, scope.Register.ID, scope.Schema.ID, identifier, true)
	if err != nil {
		return err
	}
	if err := s.repository.ObjectRepo.Destroy(ctx, object); err != nil {
		return err
	}
	if _, err := s.repository.AuditTrailRepo.DeleteForObject(ctx, object.UUID); err != nil {
		s.infra.Logger.WarningWithContextf(ctx, "failed to remove audit trail for destroyed object %s: %v", object.UUID, err)
	}
	return nil
}

// PublishObject sets the publication window start. A zero time means
// publish immediately.
func (s *ObjectService) PublishObject(ctx context.Context, scope *Scope, identifier string, from time.Time) (*entity.ObjectEntity, error) {
	object, err := s.repository.ObjectRepo.Find(ctx, scope.Register.ID, scope.Schema.ID, identifier, false)
	if err != nil {
		return nil, err
	}
	if from.IsZero() {
		from = time.Now()
	}
	object.Published = &from
	object.Depublished = nil
	if err := s.repository.ObjectRepo.Update(ctx, object); err != nil {
		return nil, err
	}
	return object, nil
}

// DepublishObject closes the publication window. A zero time means
// depublish immediately.
func (s *ObjectService) DepublishObject(ctx context.Context, scope *Scope, identifier string, until time.Time) (*entity.ObjectEntity, error) {
	object, err := s.repository.ObjectRepo.Find(ctx, scope.Register.ID, scope.Schema.ID, identifier, false)
	if err != nil {
		return nil, err
	}
	if until.IsZero() {
		until = time.Now()
	}
	object.Depublished = &until
	if err := s.repository.ObjectRepo.Update(ctx, object); err != nil {
		return nil, err
	}
	return object, nil
}

// LockObject places or extends a lock for the scope's user.
func (s *ObjectService) LockObject(ctx context.Context, scope *Scope, identifier, process string, duration time.Duration) (*entity.ObjectEntity, error) {
	if scope.UserID == "" {
		return nil, exception.ErrNotAuthorized
	}
	return s.repository.ObjectRepo.LockObject(ctx, scope.Register.ID, scope.Schema.ID, identifier, scope.UserID, process, duration)
}

// UnlockObject releases the scope user's lock.
func (s *ObjectService) UnlockObject(ctx context.Context, scope *Scope, identifier string) (*entity.ObjectEntity, error) {
	if scope.UserID == "" {
		return nil, exception.ErrNotAuthorized
	}
	return s.repository.ObjectRepo.UnlockObject(ctx, scope.Register.ID, scope.Schema.ID, identifier, scope.UserID)
}

// RevertObject restores the object's payload to the state it had at
// the target point in its audit trail. The revert itself is a new
// versioned save, so it is auditable too.
func (s *ObjectService) RevertObject(ctx context.Context, scope *Scope, identifier string, target RevertTarget, overwriteVersion bool) (*entity.ObjectEntity, error) {
	if scope.UserID == "" {
		return nil, exception.ErrNotAuthorized
	}
	object, err := s.repository.ObjectRepo.Find(ctx, scope.Register.ID, scope.Schema.ID, identifier, false)
	if err != nil {
		return nil, err
	}
	if info := object.Lock(time.Now()); info != nil && info.LockedBy != scope.UserID {
		return nil, &exception.LockedError{LockedBy: info.LockedBy, Process: info.Process, Until: info.Until}
	}

	trail, err := s.repository.AuditTrailRepo.TrailForObject(ctx, object.UUID)
	if err != nil {
		return nil, err
	}
	payload, err := object.Payload()
	if err != nil {
		return nil, err
	}
	reverted, version, err := ReplayTrail(payload, trail, target)
	if err != nil {
		return nil, err
	}
	if !overwriteVersion {
		version = utils.BumpPatch(object.Version)
	}
	return s.SaveObject(ctx, scope, object.UUID, reverted, SaveOptions{Version: version})
}

func (s *ObjectService) objectURI(scope *Scope, objectUUID string) string {
	domain := s.config.EnvConfig.DomainName
	if domain == "" {
		return ""
	}
	return fmt.Sprintf("https://%s/api/registers/%d/schemas/%d/objects/%s", domain, scope.Register.ID, scope.Schema.ID, objectUUID)
}

func (s *ObjectService) publishEvent(ctx context.Context, scope *Scope, object *entity.ObjectEntity, action string) {
	if s.infra.Produce == nil {
		return
	}
	err := s.infra.Produce.ObjectService.PublishObjectEvent(ctx, produce.ObjectEventMessage{
		Action:     action,
		ObjectUUID: object.UUID,
		RegisterID: scope.Register.ID,
		SchemaID:   scope.Schema.ID,
		Version:    object.Version,
		UserID:     scope.UserID,
	})
	if err != nil {
		s.infra.Logger.WarningWithContextf(ctx, "failed to publish object event for %s: %v", object.UUID, err)
	}
}

// stripReserved copies the payload without server-managed keys.
func stripReserved(payload map[string]interface{}) map[string]interface{} {
	clean := make(map[string]interface{}, len(payload))
	for key, value := range payload {
		switch key {
		case "id", "uuid", "@self":
			continue
		}
		clean[key] = value
	}
	return clean
}
