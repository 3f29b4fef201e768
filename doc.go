// Package mediaforge implements an asset-ingestion and preview-serving
// service for a content-addressed media store: it pulls batches of URLs
// from a coordinator, downloads and normalizes each asset into a
// WebP preview, stores it in an S3-compatible bucket, reports outcomes
// back to the coordinator, and serves stored previews over HTTP.
package mediaforge
