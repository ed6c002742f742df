// Package pipeline is the inbound interface of covid-jp-sync. A Service
// composes the NHK scraper, the reconciler, the sheet writers, the MHLW
// client and the notification sink into the operations the CLI, the HTTP
// server and the Lambda handler call.
package pipeline
