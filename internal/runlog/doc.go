// Package runlog records command executions in a local SQLite database so
// `ankisync history` can show what past runs matched, planned, and applied.
package runlog
