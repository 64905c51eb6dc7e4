// Package ipa produces phonetic transcriptions of vocabulary items.
//
// The CLI client shells out to espeak once per item; there is no batch mode
// in the tool, so callers memoize results through the run-scoped Cache. The
// Transcriber interface keeps the invocation pluggable for tests and for
// alternative backends.
package ipa
