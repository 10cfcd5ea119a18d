// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anna Velichko

package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/avelichko/revise/internal/config"
	"github.com/avelichko/revise/internal/logger"
	"github.com/avelichko/revise/internal/migrate"
	"github.com/avelichko/revise/internal/mock"
	"github.com/avelichko/revise/internal/service"
	"github.com/avelichko/revise/internal/store"
)

func newTestApp(t *testing.T, ctrl *gomock.Controller) (*App, *mock.MockResourceService, *mock.MockSyncJob, store.KVStore) {
	t.Helper()

	resources := mock.NewMockResourceService(ctrl)
	job := mock.NewMockSyncJob(ctrl)
	kv := store.NewMemoryKV()

	app, err := NewApp(
		&service.ClientServices{Resources: resources, SyncJob: job},
		&store.ClientStorages{KV: kv},
		config.ClientWorkers{SyncInterval: time.Minute},
		logger.Nop(),
	)
	require.NoError(t, err)
	return app, resources, job, kv
}

func TestApp_Run_FullLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	app, resources, job, kv := newTestApp(t, ctrl)
	ctx, cancel := context.WithCancel(context.Background())

	resources.EXPECT().Sync(gomock.Any()).Return(nil)
	job.EXPECT().Start(gomock.Any(), time.Minute).Do(func(context.Context, time.Duration) {
		cancel() // startup complete, shut down
	})
	job.EXPECT().Stop()
	resources.EXPECT().Flush()

	require.NoError(t, app.Run(ctx))

	// migrations committed before the first sync
	version, ok := kv.GetItem(migrate.SchemaVersionKey)
	require.True(t, ok)
	assert.Equal(t, "3", version)
}

func TestApp_Run_InitialSyncFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	app, resources, job, _ := newTestApp(t, ctrl)
	ctx, cancel := context.WithCancel(context.Background())

	resources.EXPECT().Sync(gomock.Any()).Return(errors.New("offline"))
	job.EXPECT().Start(gomock.Any(), time.Minute).Do(func(context.Context, time.Duration) {
		cancel()
	})
	job.EXPECT().Stop()
	resources.EXPECT().Flush()

	require.NoError(t, app.Run(ctx))
}

func TestApp_Run_MigrationFailureAbortsStartup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	app, _, _, kv := newTestApp(t, ctrl)

	app.pipeline = migrate.NewPipeline(kv, logger.Nop(), migrate.Step{
		Version: 1,
		Name:    "broken",
		Apply: func(context.Context, store.KVStore, *logger.Logger) error {
			return errors.New("boom")
		},
	})

	err := app.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply data migrations")
}

func TestNewApp_RejectsNilDependencies(t *testing.T) {
	_, err := NewApp(nil, &store.ClientStorages{}, config.ClientWorkers{}, logger.Nop())
	assert.Error(t, err)

	_, err = NewApp(&service.ClientServices{}, nil, config.ClientWorkers{}, logger.Nop())
	assert.Error(t, err)
}
