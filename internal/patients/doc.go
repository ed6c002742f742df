// Package patients upserts daily per-prefecture rows into the patient
// sheets.
//
// Each prefecture with its own tab (Aichi, Chiba, Fukuoka, Hokkaido,
// Kanagawa, Osaka, Saitama, Tokyo) is written there; every other
// prefecture goes to "Patient Data". Only the trailing 100 rows of a sheet
// are searched. A row is identified by prefecture, announced date and
// status, and is updated in place when found. Otherwise the first row with
// an empty id in the window is reused, and failing that a row is appended.
package patients
