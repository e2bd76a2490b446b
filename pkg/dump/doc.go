// Package dump serializes record collections into Ruby seed statements.
//
// A dump walks a collection in fixed-size batches, encodes every attribute
// with pkg/literal, optionally folds belongs-to foreign keys into reference
// tokens, and wraps the statements in either an individual-construction call
//
//	User.create!([
//	  {name: "alice", role_id: 2},
//	  {name: "bob", role_id: 1}
//	])
//
// or a bulk import call
//
//	User.import([:name, :role_id], [
//	  ["alice", 2],
//	  ["bob", 1]
//	])
//
// Collections are plain core.Lister slices or store-backed core.Batchable
// sources; association metadata is read from core.AssociationAware.
package dump
