// Package notifier delivers run reports to chat and social channels.
//
// A report is the plain-text summary of one committed patient-sheet write.
// Implementations exist for Telegram, Twitter and a dry-run writer that
// prints what would have been sent.
package notifier
