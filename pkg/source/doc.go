// Package source exposes database tables as dumpable record collections.
//
// A Schema wraps a connected adapter, caches table metadata and derives
// associations from foreign keys plus the per-model overrides in
// ModelConfig. Table implements core.Batchable and core.AssociationAware,
// so it can be handed straight to dump.Dump.
package source
