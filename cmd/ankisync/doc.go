// Command ankisync keeps derived note fields in an Anki collection in step
// with their source fields, transcribing vocabulary through espeak and
// applying the changes over the AnkiConnect HTTP interface.
package main
