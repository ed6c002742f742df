// Package server exposes the pipeline over HTTP and runs it on a cron
// schedule.
package server
