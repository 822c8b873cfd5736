package utils

import (
	"net/http"
	"net/http/pprof"

	"github.com/gin-gonic/gin"
)

// SetupProfilerEndpoints exposes pprof under /debug/pprof, behind a static bearer token. Nothing
// is exposed without a token.
func SetupProfilerEndpoints(r *gin.Engine, token string) {
	if token == "" {
		return
	}

	pp := r.Group("/debug/pprof")
	pp.Use(func(c *gin.Context) {
		if c.Request.Header.Get("authorization") != "Bearer "+token {
			c.AbortWithStatus(http.StatusUnauthorized)
		}
	})

	pp.GET("/profile", gin.WrapF(pprof.Profile))
	pp.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
	pp.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	pp.GET("/block", gin.WrapH(pprof.Handler("block")))
	pp.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
}
