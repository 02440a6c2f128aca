package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/xiaomaimax/mes-system-sub006/internal/middlewares"
	"github.com/xiaomaimax/mes-system-sub006/internal/services/masterService"
	"github.com/xiaomaimax/mes-system-sub006/internal/services/planService"
	"github.com/xiaomaimax/mes-system-sub006/internal/services/schedulingService"
	"github.com/xiaomaimax/mes-system-sub006/internal/services/taskService"
	"github.com/xiaomaimax/mes-system-sub006/internal/utils"
)

func RegisterRoutes(router *gin.Engine) {
	router.Use(middlewares.CorsMiddleware())

	router.POST("/materials", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, masterService.CreateMaterial)
	})

	router.GET("/materials", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, masterService.GetMaterials)
	})

	router.POST("/devices", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, masterService.CreateDevice)
	})

	router.GET("/devices", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, masterService.GetDevices)
	})

	router.POST("/molds", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, masterService.CreateMold)
	})

	router.GET("/molds", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, masterService.GetMolds)
	})

	router.POST("/material-device-relations", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, masterService.CreateMaterialDeviceRelation)
	})

	router.POST("/material-mold-relations", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, masterService.CreateMaterialMoldRelation)
	})

	router.POST("/plans", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, planService.CreatePlan)
	})

	router.GET("/plans", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, planService.GetPlans)
	})

	router.POST("/plans/upload", func(c *gin.Context) {
		utils.ProcessRequestMultiPart(c, planService.UploadPlan)
	})

	router.POST("/scheduling/run", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, schedulingService.RunScheduling)
	})

	router.GET("/tasks", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, taskService.GetTasks)
	})

	router.POST("/tasks/complete", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, taskService.CompleteTask)
	})
}
