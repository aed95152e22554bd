// Package preview implements the CSV file-to-preview pipeline.
//
// A file-input change event is handled by an [Orchestrator]:
//
//  1. [Reader] reads the selected file into a data URL.
//  2. A [TableParser] (by default [CSVParser]) turns the data URL into a [Table].
//  3. [SyncColumns] rebuilds the email-key dropdown from Table.Columns.
//  4. [SyncRange] resets the dual-handle slider to [0, rows] and mirrors
//     every slide into the start and stop fields.
//
// UI elements are passed in as [Handles]. The in-memory models in this
// package ([Select], [Slider], [Field], [Banner]) satisfy them and are what
// the web and terminal front ends render.
package preview
