package http

import "github.com/gin-gonic/gin"

// Register mounts the handlers on router.
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/health", h.Health)

	fs := router.Group("/api/fs")
	fs.GET("/children", h.ListChildren)
	fs.GET("/default-directory", h.DefaultDirectory)
	fs.GET("/find", h.Find)
}
