// Package normalize turns the raw date and time fragments published by each
// calendar source into calendar dates and UTC instants.
//
// Every function here is pure: it takes strings (and a year supplied by the caller)
// and returns values, never touching the network or markup. Date ranges that cannot
// be read yield empty endpoints; instants that cannot be read return an error so the
// caller can drop the session; clock times that are explicitly unannounced ("TBD",
// "TBC", "未定", empty) yield an Instant with TBD set.
package normalize
