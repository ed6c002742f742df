// Package article provides the types shared by the scraping and writing
// stages: classified news articles, the national daily summary and the
// per-prefecture update set.
//
// Articles carry a deterministic SHA1-based ID derived from their source URL,
// which lets the watch job diff successive listings through snapshots.
package article
