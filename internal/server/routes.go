package server

import "github.com/gin-gonic/gin"

// SetupRoutes wires the documented REST surface onto a gin engine.
func SetupRoutes(r *gin.Engine, store *Store, secret []byte) *gin.Engine {
	auth := NewAuthHandler(store, secret)
	leads := NewLeadHandler(store)

	// ---- public
	r.POST("/staff/login", auth.Login)

	// ---- protected
	protected := r.Group("/")
	protected.Use(AuthMiddleware(secret))
	{
		protected.GET("/lead", leads.List)
		protected.GET("/lead/status/:status", leads.ListByStatus)
		protected.GET("/lead/:id", leads.Get)
		protected.PUT("/lead/:id", leads.UpdateStatus)
		protected.POST("/lead/:id/followup", leads.AddFollowUp)
		protected.PATCH("/lead/:id/item/:itemId/toggle", leads.ToggleItem)
	}
	return r
}
