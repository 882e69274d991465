// Package persistence stores MDIB snapshots so a provider can resume with
// the same sequence id and MDIB version after a restart.
//
// Snapshots are wrapped in a versioned Record and stored as JSON, either in
// a file (FileStore) or in Redis (RedisStore).
package persistence
