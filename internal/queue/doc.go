// Package queue persists assembly jobs in SQLite and defines their lifecycle
// statuses. Each job tracks one project directory through the pipeline, with
// intermediate artifacts stored as JSON columns so any stage can be resumed
// after a restart.
package queue
