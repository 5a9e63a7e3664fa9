package controller

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-register-service/utils"
)

// shareLinkExpiry bounds presigned download URLs.
const shareLinkExpiry = 24 * time.Hour

// AttachFile uploads one multipart file into the object's folder.
func (ctrl *Controller) AttachFile(c *gin.Context) {
	ctx := c.Request.Context()

	if ctrl.Infra.Files == nil {
		utils.JSON400(c, "File attachments are not enabled")
		return
	}
	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	object, err := ctrl.Service.Objects.GetObject(ctx, scope, c.Param("id"), false)
	if err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.JSON400(c, "Missing file upload")
		return
	}
	file, err := header.Open()
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[File] Failed to open upload: %v", err)
		utils.JSON500(c, "Failed to read upload")
		return
	}
	defer file.Close()

	handle, err := ctrl.Infra.Files.AddFile(ctx, object, header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[File] Failed to store %s for object %s: %v", header.Filename, object.UUID, err)
		utils.JSON500(c, "Failed to store file")
		return
	}
	utils.JSON201(c, handle)
}

// ListFiles returns the handles attached to the object.
func (ctrl *Controller) ListFiles(c *gin.Context) {
	ctx := c.Request.Context()

	if ctrl.Infra.Files == nil {
		utils.JSON200(c, gin.H{"results": []interface{}{}, "total": 0})
		return
	}
	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	object, err := ctrl.Service.Objects.GetObject(ctx, scope, c.Param("id"), false)
	if err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}

	files, err := ctrl.Infra.Files.ListFiles(ctx, object)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[File] Failed to list files for object %s: %v", object.UUID, err)
		utils.JSON500(c, "Failed to list files")
		return
	}
	utils.JSON200(c, gin.H{"results": files, "total": len(files)})
}

// DeleteFile removes one attachment by name.
func (ctrl *Controller) DeleteFile(c *gin.Context) {
	ctx := c.Request.Context()

	if ctrl.Infra.Files == nil {
		utils.JSON400(c, "File attachments are not enabled")
		return
	}
	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	object, err := ctrl.Service.Objects.GetObject(ctx, scope, c.Param("id"), false)
	if err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}

	if err := ctrl.Infra.Files.DeleteFile(ctx, object, c.Param("file")); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[File] Failed to delete %s for object %s: %v", c.Param("file"), object.UUID, err)
		utils.JSON500(c, "Failed to delete file")
		return
	}
	c.Status(204)
}

// ShareFile returns a time-limited download link for one attachment.
func (ctrl *Controller) ShareFile(c *gin.Context) {
	ctx := c.Request.Context()

	if ctrl.Infra.Files == nil {
		utils.JSON400(c, "File attachments are not enabled")
		return
	}
	scope, ok := ctrl.resolveScope(c)
	if !ok {
		return
	}
	object, err := ctrl.Service.Objects.GetObject(ctx, scope, c.Param("id"), false)
	if err != nil {
		ctrl.respondError(c, err, "object not found")
		return
	}

	path := ctrl.Infra.Files.ObjectFolder(object) + c.Param("file")
	link, err := ctrl.Infra.Files.CreateShareLink(ctx, path, shareLinkExpiry)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[File] Failed to create share link for %s: %v", path, err)
		utils.JSON500(c, "Failed to create share link")
		return
	}
	utils.JSON200(c, gin.H{"url": link, "expires": time.Now().Add(shareLinkExpiry)})
}
