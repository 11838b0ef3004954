// Package exporter writes shaped forecast tables to the formats the
// reports are consumed in: an Excel workbook for download and CSV files
// for the reports directory.
package exporter
