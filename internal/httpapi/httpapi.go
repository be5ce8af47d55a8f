// vi: sw=4 ts=4:

/*

	Mnemonic:	httpapi
	Abstract:	The REST front end: a thin gin layer translating HTTP
				contract onto managers.Controller. Every request carries a
				request id and is access-logged through the shared zap
				logger, using the gin ecosystem's own middleware rather than
				hand-rolled wrapping.
	Date:		29 July 2026
*/

package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meshctl/controller/internal/managers"
)

// flowRequest is the body shape shared by every flowtable/complete route.
type flowRequest struct {
	SrcHost string `json:"src_host" binding:"required"`
	DstHost string `json:"dst_host" binding:"required"`
}

// flowResult is the {"result": "success"|"fail"} response envelope.
type flowResult struct {
	Result string `json:"result"`
}

// NewRouter builds the gin engine wired onto ctrl, logging access through
// logger.
func NewRouter(ctrl *managers.Controller, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.NewString()
	})))
	r.Use(ginzap.Ginzap(logger, "", true))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	grp := r.Group("/controller")
	grp.POST("/video/flowtable", admitHandler(ctrl, managers.Video))
	grp.POST("/other/flowtable", admitHandler(ctrl, managers.Other))
	grp.POST("/other/complete", completeHandler(ctrl))
	grp.GET("/other/flowtable", listHandler(ctrl))

	return r
}

func admitHandler(ctrl *managers.Controller, class managers.FlowClass) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req flowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request"})
			return
		}

		_, err := ctrl.Admit(c.Request.Context(), req.SrcHost, req.DstHost, class)
		if err != nil {
			c.JSON(http.StatusOK, flowResult{Result: "fail"})
			return
		}
		c.JSON(http.StatusOK, flowResult{Result: "success"})
	}
}

func completeHandler(ctrl *managers.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req flowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request"})
			return
		}

		err := ctrl.Complete(req.SrcHost, req.DstHost)
		// Completing an absent flow is treated as success at this boundary
		// (the idempotence decision); the core sentinel is still available
		// to callers that want to distinguish, via Controller.Complete directly.
		if err != nil && !errors.Is(err, managers.ErrUnknownFlow) {
			c.JSON(http.StatusOK, flowResult{Result: "fail"})
			return
		}
		c.JSON(http.StatusOK, flowResult{Result: "success"})
	}
}

// flowtableEntry is one row of the debug listing.
type flowtableEntry struct {
	SrcHost string   `json:"src_host"`
	DstHost string   `json:"dst_host"`
	Path    []string `json:"path"`
	Rate    float64  `json:"rate"`
}

func listHandler(ctrl *managers.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		recs := ctrl.Registry().All()
		out := make([]flowtableEntry, 0, len(recs))
		for _, r := range recs {
			out = append(out, flowtableEntry{SrcHost: r.Src, DstHost: r.Dst, Path: r.Path, Rate: r.Rate})
		}
		c.JSON(http.StatusOK, gin.H{"flows": out})
	}
}
