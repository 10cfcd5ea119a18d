// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anna Velichko

// Package client implements the client application runtime.
//
// It wires the local store, migration pipeline, resource engine, and
// background synchronization into a single process lifecycle: migrations
// run first, then one full sync, then the periodic sync worker until the
// process context is cancelled.
package client
