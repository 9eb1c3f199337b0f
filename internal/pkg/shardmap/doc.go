// Package shardmap provides a generic concurrent map with per-key atomic
// read-modify-write.
//
// Keys are spread over shards by murmur3; each shard has its own RWMutex.
package shardmap
