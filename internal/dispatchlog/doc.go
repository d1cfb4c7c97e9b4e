// Package dispatchlog records every song released by a dispatch cycle.
//
// Two backends implement Log: JSONFile keeps a JSON array compatible with the
// {team, link, timestamp} file read by playlist consumers, and SQLite keeps
// the same rows in a table for larger events. Records are only ever appended.
package dispatchlog
