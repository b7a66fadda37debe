// Package lstore implements a local, in-memory key-value store based on the
// store.IStore interface. It wraps a db.KVDB and persists it to a snapshot file.
//
// Lifecycle:
//
//   - NewLocalStore creates the database and immediately loads the snapshot file.
//     A missing file yields an empty store, any other read error is returned.
//
//   - Close writes the snapshot once and closes the database. Mutations after the
//     last Close are lost, as is everything since the start if the process crashes.
//
// Loading and saving take no store-wide lock, so neither may overlap with other
// operations. The server only closes the store after every connection worker has
// exited.
//
// Snapshot Writes:
//
//	By default the snapshot file is truncated and rewritten in place. With
//	Options.AtomicSave the snapshot is written to "<file>.tmp", synced and renamed
//	over the snapshot file, so a crash during the save leaves the previous snapshot
//	intact.
//
// The filesystem is an afero.Fs (the OS filesystem unless Options.Fs is set), which
// lets tests run against an in-memory filesystem.
package lstore
