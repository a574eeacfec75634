package rest

import (
	"net/http"

	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/auth"
	"github.com/dmitrijs2005/userservice/internal/server/services"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with middleware and routes wired. The
// gate runs for every request; only routes behind RequireAuth reject
// anonymous callers.
func NewRouter(us *services.UserService, gate *auth.Gate, logger logging.Logger) *gin.Engine {
	r := gin.New()

	r.Use(Recovery(logger))
	r.Use(RequestID())
	r.Use(RequestLogger(logger))
	r.Use(Authenticate(gate))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handlers{users: us, logger: logger}

	api := r.Group("/api/user")
	{
		api.POST("/register", h.register)
		api.POST("/login", h.login)
		api.GET("/profile", RequireAuth(), h.profile)
	}

	r.NoRoute(func(c *gin.Context) {
		writeProblem(c, http.StatusNotFound, "Not Found", "No handler found for "+c.Request.Method+" "+c.Request.URL.Path, nil)
	})

	return r
}
