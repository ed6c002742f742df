// Package mhlw reads the health ministry's COVID-19 report pages.
//
// The index page links to two kinds of report: the daily situation report,
// whose attachment is a PDF table of cases and recoveries per prefecture,
// and the airport quarantine report, whose text states how many patients
// and asymptomatic carriers were found at the border.
package mhlw
