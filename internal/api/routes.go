package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, s *Server) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/layouts", s.layoutsHandler)
		api.POST("/render", s.renderHandler)
		api.GET("/offset", s.getOffsetHandler)
		api.PUT("/offset", s.putOffsetHandler)
		api.GET("/calibration", s.calibrationHandler)
	}
}

// NewRouter returns an engine with the API routes and gin's default
// middleware.
func NewRouter(s *Server) *gin.Engine {
	r := gin.Default()
	RegisterRoutes(r, s)
	return r
}
