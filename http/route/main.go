package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-register-service/http/controller"
	middlewares "github.com/tnqbao/gau-register-service/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)

	apiRoutes := r.Group("/api/v1")
	{
		apiRoutes.Use(middles.AuthMiddleware)

		registerRoutes := apiRoutes.Group("/registers")
		{
			registerRoutes.GET("/", ctrl.ListRegisters)
			registerRoutes.POST("/", middles.RequireAuth, ctrl.CreateRegister)
			registerRoutes.GET("/:register", ctrl.GetRegister)
			registerRoutes.PUT("/:register", middles.RequireAuth, ctrl.UpdateRegister)
			registerRoutes.DELETE("/:register", middles.RequireAuth, ctrl.DeleteRegister)
			registerRoutes.GET("/:register/statistics", ctrl.GetRegisterStatistics)
		}

		schemaRoutes := apiRoutes.Group("/schemas")
		{
			schemaRoutes.GET("/", ctrl.ListSchemas)
			schemaRoutes.POST("/", middles.RequireAuth, ctrl.CreateSchema)
			schemaRoutes.GET("/:schema", ctrl.GetSchema)
			schemaRoutes.PUT("/:schema", middles.RequireAuth, ctrl.UpdateSchema)
			schemaRoutes.DELETE("/:schema", middles.RequireAuth, ctrl.DeleteSchema)
		}

		objectRoutes := apiRoutes.Group("/registers/:register/schemas/:schema")
		{
			objectRoutes.GET("/statistics", ctrl.GetSchemaStatistics)

			objectRoutes.GET("/objects", ctrl.ListObjects)
			objectRoutes.POST("/objects", ctrl.CreateObject)
			objectRoutes.GET("/objects/:id", ctrl.GetObject)
			objectRoutes.PUT("/objects/:id", ctrl.UpdateObject)
			objectRoutes.DELETE("/objects/:id", ctrl.DeleteObject)
			objectRoutes.POST("/objects/:id/restore", ctrl.RestoreObject)
			objectRoutes.DELETE("/objects/:id/destroy", middles.RequireAuth, ctrl.DestroyObject)

			objectRoutes.POST("/objects/:id/publish", middles.RequireAuth, ctrl.PublishObject)
			objectRoutes.POST("/objects/:id/depublish", middles.RequireAuth, ctrl.DepublishObject)

			objectRoutes.POST("/objects/:id/lock", middles.RequireAuth, ctrl.LockObject)
			objectRoutes.POST("/objects/:id/unlock", middles.RequireAuth, ctrl.UnlockObject)

			objectRoutes.GET("/objects/:id/audit-trails", ctrl.GetObjectAudit)
			objectRoutes.POST("/objects/:id/revert", middles.RequireAuth, ctrl.RevertObject)

			objectRoutes.GET("/objects/:id/uses", ctrl.GetObjectUses)
			objectRoutes.GET("/objects/:id/used-by", ctrl.GetObjectUsedBy)

			objectRoutes.GET("/objects/:id/files", ctrl.ListFiles)
			objectRoutes.POST("/objects/:id/files", middles.RequireAuth, ctrl.AttachFile)
			objectRoutes.DELETE("/objects/:id/files/:file", middles.RequireAuth, ctrl.DeleteFile)
			objectRoutes.GET("/objects/:id/files/:file/share", ctrl.ShareFile)
		}
	}
	return r
}
