// Package storage persists the watch job's article snapshots on disk and
// archives run reports to S3-compatible object storage.
//
// Snapshots are JSON files in the data directory, one per prefecture filter
// plus snapshot.json for the unfiltered listing.
package storage
