// Package workflow drives queued assembly jobs through the pipeline stages.
// A single worker loop claims the oldest ready item, hands it to the stage
// registered for its status, and advances it on success. Heartbeats mark
// items in flight so interrupted jobs can be reclaimed after a restart.
package workflow
