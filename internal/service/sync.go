// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anna Velichko

package service

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/avelichko/revise/internal/adapter"
	"github.com/avelichko/revise/models"
)

// syncReadConcurrency bounds the forced-read fan-out. It matches the
// transport's bulk batch size, so a full wave of per-item reads closes a
// batch on size instead of waiting out the coalescer's idle window.
const syncReadConcurrency = 100

// syncTarget pairs one resource's remote location and local cache key with
// the manifest's marker for it.
type syncTarget struct {
	url    string
	key    string
	remote string
}

// Sync implements [ResourceService].
func (s *resourceService) Sync(ctx context.Context) error {
	s.pending.clear()
	s.outOfSync.Store(false)
	s.markers.Flush()

	manifest, ok := s.fetchManifest(ctx)
	if !ok {
		// no manifest means no opinion about remote state; local data
		// stands until the next reachable sync
		return nil
	}

	// Forced reads run concurrently so per-item detail and description
	// fetches land in the same coalescer window and ride one bulk call.
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(syncReadConcurrency)

	var refreshed atomic.Int64
	for _, target := range manifestTargets(manifest) {
		target := target
		local, _ := s.markers.Marker(target.key)
		if !markerNewer(target.remote, local) {
			continue
		}

		group.Go(func() error {
			if _, err := s.Read(groupCtx, target.url, target.key, ReadOptions{BypassCache: true}); err != nil {
				return err
			}
			refreshed.Add(1)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	s.log.Info().Int64("refreshed", refreshed.Load()).Msg("sync pass complete")
	return nil
}

// fetchManifest returns the remote marker manifest, or ok=false when it is
// unreachable. Anonymous and transport failures are expected offline states,
// not errors.
func (s *resourceService) fetchManifest(ctx context.Context) (models.Manifest, bool) {
	env, err := s.transport.Get(ctx, ManifestURL)
	if err != nil {
		s.log.Debug().Err(err).Msg("manifest unreachable, skipping forced reads")
		return models.Manifest{}, false
	}

	var manifest models.Manifest
	if err = json.Unmarshal([]byte(env.Data), &manifest); err != nil {
		s.log.Warn().Err(err).Msg("malformed manifest, skipping forced reads")
		return models.Manifest{}, false
	}
	return manifest, true
}

// manifestTargets flattens the manifest into one entry per resource.
func manifestTargets(m models.Manifest) []syncTarget {
	targets := make([]syncTarget, 0, 2+len(m.EventDetails)+len(m.EventDescriptions))

	targets = append(targets,
		syncTarget{url: SettingsURL, key: SettingsKey, remote: m.Settings},
		syncTarget{url: EventListURL, key: EventListKey, remote: m.EventList},
	)
	for _, stamp := range m.EventDetails {
		targets = append(targets, syncTarget{
			url:    adapter.EventDetailURL + "?id=" + stamp.ID,
			key:    EventDetailKey(stamp.ID),
			remote: stamp.UpdatedAt,
		})
	}
	for _, stamp := range m.EventDescriptions {
		targets = append(targets, syncTarget{
			url:    adapter.EventDescriptionURL + "?id=" + stamp.ID,
			key:    EventDescriptionKey(stamp.ID),
			remote: stamp.UpdatedAt,
		})
	}

	return targets
}
