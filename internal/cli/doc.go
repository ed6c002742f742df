// Package cli implements the command-line interface for covid-jp-sync.
//
// The cli package provides the Cobra-based commands that run the pipeline
// once (nhk, nhk-batch, verify-sheet, mhlw-port, mhlw-recoveries, watch) or
// as a long-running server (serve). Output is text or JSON; every command
// that touches the workbook is a dry run unless --write is given.
package cli
