package server

import (
	"github.com/gin-gonic/gin"

	"github.com/digiclo/clothtagger/config"
)

func NewRouter() *gin.Engine {
	r := gin.Default()
	r.Use(CORS())
	r.MaxMultipartMemory = 32 << 20

	r.POST("/tag-image", TagImageHandler)
	r.POST("/remove-background", RemoveBackgroundHandler)
	dir := outputDir
	if dir == "" {
		dir = config.C().OutputDir
	}
	r.Static("/outputs", dir)
	r.GET("/health", HealthHandler)
	return r
}
