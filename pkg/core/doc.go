// Package core defines the shared language of the seeddump system.
//
// This package contains:
//   - Domain entities (Record, Association, Batch, Options)
//   - Capability interfaces for record sources (Collection, Batchable,
//     Lister, AssociationAware) and values (GeometryLike)
//   - Store-facing types (AdapterConfig, TableMetadata, ForeignKey, Page)
//   - Value types adapters normalize into (Date, Decimal, Range, WKT)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
