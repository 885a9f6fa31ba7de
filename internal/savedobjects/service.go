// Package savedobjects exposes a saved object repository over HTTP.
package savedobjects

import (
	"github.com/aevon-lab/metastore/internal/core/repository"
	"github.com/gin-gonic/gin"
)

const basePath = "/api/saved_objects"

type Service struct {
	repo             repository.Repository
	maxBodySizeBytes int
}

func NewService(repo repository.Repository, maxBodySizeMB int) *Service {
	if repo == nil {
		panic("savedobjects: repository must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		repo:             repo,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the saved objects API routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	g := r.Group(basePath)

	g.GET("/_find", s.HandleFind)
	g.POST("/_bulk_get", s.HandleBulkGet)
	g.POST("/_bulk_create", s.HandleBulkCreate)
	g.PUT("/_bulk_update", s.HandleBulkUpdate)
	g.POST("/_check_conflicts", s.HandleCheckConflicts)
	g.DELETE("/_namespace/:namespace", s.HandleDeleteByNamespace)

	g.POST("/:type", s.HandleCreate)
	g.POST("/:type/:id", s.HandleCreate)
	g.GET("/:type/:id", s.HandleGet)
	g.PUT("/:type/:id", s.HandleUpdate)
	g.DELETE("/:type/:id", s.HandleDelete)
	g.POST("/:type/:id/_increment/:field", s.HandleIncrementCounter)
	g.POST("/:type/:id/_add_to_namespaces", s.HandleAddToNamespaces)
	g.POST("/:type/:id/_delete_from_namespaces", s.HandleDeleteFromNamespaces)
}
