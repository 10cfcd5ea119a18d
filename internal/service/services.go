package service

import (
	"github.com/avelichko/revise/internal/adapter"
	"github.com/avelichko/revise/internal/logger"
	"github.com/avelichko/revise/internal/store"
)

// ClientServices aggregates the engine's service layer.
type ClientServices struct {
	Resources ResourceService
	SyncJob   SyncJob
}

func NewClientServices(kv store.KVStore, transport adapter.Transport, log *logger.Logger) *ClientServices {
	resources := NewResourceService(kv, transport, log)

	return &ClientServices{
		Resources: resources,
		SyncJob:   NewSyncJob(resources, log),
	}
}
