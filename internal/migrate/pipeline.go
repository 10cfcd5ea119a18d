// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anna Velichko

// Package migrate applies one-shot transformations to previously persisted
// resource records. A single schema version integer tracks progress; each
// step runs at most once per installation, in ascending version order,
// before the engine's first sync touches the store.
package migrate

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/avelichko/revise/internal/logger"
	"github.com/avelichko/revise/internal/store"
)

// SchemaVersionKey is where the pipeline persists the version of the last
// committed step.
const SchemaVersionKey = "schema-version"

// Step is one versioned transformation. Versions start at 1 and increase
// monotonically. Apply must complete every record write before returning:
// the pipeline commits the version only after Apply returns nil, so a crash
// mid-step leaves the version unchanged and the step retries from the top on
// the next start. Steps are not required to be idempotent per record; the
// version counter is the only re-execution guard.
type Step struct {
	Version int
	Name    string
	Apply   func(ctx context.Context, kv store.KVStore, log *logger.Logger) error
}

// Pipeline runs an ordered set of steps against the local store.
type Pipeline struct {
	kv    store.KVStore
	log   *logger.Logger
	steps []Step
}

func NewPipeline(kv store.KVStore, log *logger.Logger, steps ...Step) *Pipeline {
	ordered := append([]Step(nil), steps...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Version < ordered[j].Version })

	return &Pipeline{kv: kv, log: log, steps: ordered}
}

// Run executes every step whose version is above the persisted one and
// reports whether any step actually ran. The first failing step stops the
// pipeline with the version unchanged, so the same step retries on the next
// start.
func (p *Pipeline) Run(ctx context.Context) (ran bool, err error) {
	current := p.currentVersion()

	for _, step := range p.steps {
		if step.Version <= current {
			continue
		}

		p.log.Info().Int("version", step.Version).Str("step", step.Name).Msg("applying migration step")
		if err = step.Apply(ctx, p.kv, p.log); err != nil {
			return ran, fmt.Errorf("migration step %d (%s): %w", step.Version, step.Name, err)
		}

		// the step's writes have settled; only now does the version move
		p.kv.SetItem(SchemaVersionKey, strconv.Itoa(step.Version))
		current = step.Version
		ran = true
	}

	return ran, nil
}

func (p *Pipeline) currentVersion() int {
	raw, ok := p.kv.GetItem(SchemaVersionKey)
	if !ok {
		return 0
	}

	version, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || version < 0 {
		p.log.Warn().Str("value", raw).Msg("unreadable schema version, starting from zero")
		return 0
	}
	return version
}
