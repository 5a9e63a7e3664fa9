package controller

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-register-service/http/controller/dto"
	"github.com/tnqbao/gau-register-service/query"
	"github.com/tnqbao/gau-register-service/service"
	"github.com/tnqbao/gau-register-service/utils"
)

// ListObjects returns a filtered, sorted, paginated page of objects,
// with facet buckets when the query asks for them.
func (ctrl *Controller) ListObjects(c *gin.Context) {
	ctx := c.Request.Context()

	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	q, err := query.ParseObjectQuery(c.Request.URL.RawQuery)
	if err != nil {
		utils.JSON400(c, "Invalid query parameters")
		return
	}

	objects, err := ctrl.Repository.ObjectRepo.FindAll(ctx, scope.Register.ID, scope.Schema.ID, q)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to list objects: %v", err)
		utils.JSON500(c, "Failed to list objects")
		return
	}
	total, err := ctrl.Repository.ObjectRepo.CountAll(ctx, scope.Register.ID, scope.Schema.ID, q)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to count objects: %v", err)
		utils.JSON500(c, "Failed to list objects")
		return
	}

	rendered, err := ctrl.Service.Render.RenderObjects(ctx, scope, objects, renderOptions(q))
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to render objects: %v", err)
		utils.JSON500(c, "Failed to render objects")
		return
	}

	page := query.NewPagination(total, q.Limit, q.Offset, len(objects))
	response := gin.H{
		"results": rendered,
		"total":   page.Total,
		"page":    page.Page,
		"pages":   page.Pages,
		"limit":   page.Limit,
		"offset":  page.Offset,
		"next":    page.HasNext(),
		"prev":    page.HasPrev(),
	}

	if len(q.Facets) > 0 {
		facets, err := ctrl.Repository.ObjectRepo.Facets(ctx, scope.Register.ID, scope.Schema.ID, q)
		if err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Object] Failed to compute facets: %v", err)
		} else {
			response["facets"] = facets
		}
	}
	if q.Facetable {
		response["facetable"] = ctrl.facetableFields(scope)
	}

	utils.JSON200(c, response)
}

// facetableFields lists the schema properties marked facetable.
func (ctrl *Controller) facetableFields(scope *service.Scope) []string {
	fields := []string{}
	properties, err := scope.Schema.PropertyMap()
	if err != nil {
		return fields
	}
	for name, property := range properties {
		if property != nil && property.Facetable != nil && *property.Facetable {
			fields = append(fields, name)
		}
	}
	return fields
}

func (ctrl *Controller) GetObject(c *gin.Context) {
	ctx := c.Request.Context()

	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	q, err := query.ParseObjectQuery(c.Request.URL.RawQuery)
	if err != nil {
		utils.JSON400(c, "Invalid query parameters")
		return
	}

	object, err := ctrl.Service.Objects.GetObject(ctx, scope, c.Param("id"), q.IncludeDeleted)
	if err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}
	rendered, err := ctrl.Service.Render.RenderObject(ctx, scope, object, renderOptions(q))
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to render object %s: %v", object.UUID, err)
		utils.JSON500(c, "Failed to render object")
		return
	}
	utils.JSON200(c, rendered)
}

func (ctrl *Controller) CreateObject(c *gin.Context) {
	ctrl.saveObject(c, "")
}

func (ctrl *Controller) UpdateObject(c *gin.Context) {
	ctrl.saveObject(c, c.Param("id"))
}

func (ctrl *Controller) saveObject(c *gin.Context, identifier string) {
	ctx := c.Request.Context()

	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	opts := service.SaveOptions{Version: c.Query("_version")}
	object, err := ctrl.Service.Objects.SaveObject(ctx, scope, identifier, payload, opts)
	if err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}
	rendered, err := ctrl.Service.Render.RenderObject(ctx, scope, object, service.RenderOptions{})
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to render object %s: %v", object.UUID, err)
		utils.JSON500(c, "Failed to render object")
		return
	}
	if identifier == "" {
		utils.JSON201(c, rendered)
	} else {
		utils.JSON200(c, rendered)
	}
}

func (ctrl *Controller) DeleteObject(c *gin.Context) {
	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	if err := ctrl.Service.Objects.DeleteObject(c.Request.Context(), scope, c.Param("id")); err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}
	c.Status(204)
}

func (ctrl *Controller) RestoreObject(c *gin.Context) {
	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	object, err := ctrl.Service.Objects.RestoreObject(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}
	utils.JSON200(c, object)
}

func (ctrl *Controller) DestroyObject(c *gin.Context) {
	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	if err := ctrl.Service.Objects.DestroyObject(c.Request.Context(), scope, c.Param("id")); err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}
	c.Status(204)
}

func (ctrl *Controller) PublishObject(c *gin.Context) {
	ctrl.setPublication(c, true)
}

func (ctrl *Controller) DepublishObject(c *gin.Context) {
	ctrl.setPublication(c, false)
}

func (ctrl *Controller) setPublication(c *gin.Context, publish bool) {
	ctx := c.Request.Context()

	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	var req dto.PublishObjectRequestDTO
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSON400(c, "Invalid request payload")
			return
		}
	}
	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			utils.JSON400(c, "Invalid date, expected RFC3339")
			return
		}
		date = parsed
	}

	var object interface{}
	var err error
	if publish {
		object, err = ctrl.Service.Objects.PublishObject(ctx, scope, c.Param("id"), date)
	} else {
		object, err = ctrl.Service.Objects.DepublishObject(ctx, scope, c.Param("id"), date)
	}
	if err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}
	utils.JSON200(c, object)
}

func (ctrl *Controller) LockObject(c *gin.Context) {
	ctx := c.Request.Context()

	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	var req dto.LockObjectRequestDTO
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSON400(c, "Invalid request payload")
			return
		}
	}

	duration := time.Duration(req.Duration) * time.Second
	object, err := ctrl.Service.Objects.LockObject(ctx, scope, c.Param("id"), req.Process, duration)
	if err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}
	utils.JSON200(c, gin.H{
		"object": object,
		"lock":   object.Lock(time.Now()),
	})
}

func (ctrl *Controller) UnlockObject(c *gin.Context) {
	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	object, err := ctrl.Service.Objects.UnlockObject(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}
	utils.JSON200(c, object)
}

// GetObjectAudit lists the audit trail of one object, newest first.
func (ctrl *Controller) GetObjectAudit(c *gin.Context) {
	ctx := c.Request.Context()

	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	object, err := ctrl.Service.Objects.GetObject(ctx, scope, c.Param("id"), true)
	if err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}
	q, err := query.ParseObjectQuery(c.Request.URL.RawQuery)
	if err != nil {
		utils.JSON400(c, "Invalid query parameters")
		return
	}

	entries, total, err := ctrl.Service.Audit.TrailPage(ctx, object.UUID, q)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Audit] Failed to list audit trail for %s: %v", object.UUID, err)
		utils.JSON500(c, "Failed to list audit trail")
		return
	}
	page := query.NewPagination(total, q.Limit, q.Offset, len(entries))
	utils.JSON200(c, gin.H{
		"results": entries,
		"total":   page.Total,
		"page":    page.Page,
		"pages":   page.Pages,
	})
}

// RevertObject rolls the object payload back to a point in its trail.
func (ctrl *Controller) RevertObject(c *gin.Context) {
	ctx := c.Request.Context()

	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	var req dto.RevertObjectRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request payload")
		return
	}
	target, err := service.ParseRevertTarget(req.Until)
	if err != nil {
		utils.JSON400(c, "Invalid revert target")
		return
	}

	object, err := ctrl.Service.Objects.RevertObject(ctx, scope, c.Param("id"), target, req.OverwriteVersion)
	if err != nil {
		ctrl.respondError(c, err, "no audit entry matches the revert target")
		return
	}
	rendered, err := ctrl.Service.Render.RenderObject(ctx, scope, object, service.RenderOptions{})
	if err != nil {
		utils.JSON500(c, "Failed to render object")
		return
	}
	utils.JSON200(c, rendered)
}

// GetObjectUses lists the objects this object references.
func (ctrl *Controller) GetObjectUses(c *gin.Context) {
	ctx := c.Request.Context()

	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	object, err := ctrl.Service.Objects.GetObject(ctx, scope, c.Param("id"), false)
	if err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}

	results := []gin.H{}
	for _, reference := range object.RelationURIs() {
		entry := gin.H{"reference": reference}
		if related, err := ctrl.Repository.ObjectRepo.FindAnywhere(ctx, trimReference(reference)); err == nil {
			entry["object"] = related
		}
		results = append(results, entry)
	}
	utils.JSON200(c, gin.H{"results": results, "total": len(results)})
}

// GetObjectUsedBy lists the objects whose relations reference this one.
func (ctrl *Controller) GetObjectUsedBy(c *gin.Context) {
	ctx := c.Request.Context()

	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	object, err := ctrl.Service.Objects.GetObject(ctx, scope, c.Param("id"), false)
	if err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}

	partial := c.Query("_partial") == "true"
	reference := object.UUID
	if partial && object.URI != "" {
		reference = object.URI
	}
	users, err := ctrl.Repository.ObjectRepo.FindByRelation(ctx, reference, partial)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to find relations to %s: %v", object.UUID, err)
		utils.JSON500(c, "Failed to find referencing objects")
		return
	}
	utils.JSON200(c, gin.H{"results": users, "total": len(users)})
}

func (ctrl *Controller) GetSchemaStatistics(c *gin.Context) {
	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	stats := ctrl.Repository.ObjectRepo.GetStatistics(c.Request.Context(), scope.Register.ID, scope.Schema.ID)
	utils.JSON200(c, stats)
}

func renderOptions(q *query.ObjectQuery) service.RenderOptions {
	return service.RenderOptions{
		Fields: q.Fields,
		Unset:  q.Unset,
		Extend: q.Extend,
	}
}

// trimReference reduces a relation URI to its trailing identifier.
func trimReference(reference string) string {
	for idx := len(reference) - 1; idx >= 0; idx-- {
		if reference[idx] == '/' {
			return reference[idx+1:]
		}
	}
	return reference
}
