// Package anki speaks the AnkiConnect request/response protocol.
//
// Every call posts a single {action, version, params} envelope to the
// loopback endpoint and decodes the {result, error} reply. A non-null error
// member surfaces as a StoreError; transport failures surface as an
// UnavailableError. The client performs no retries, matching the fail-fast
// policy of the callers.
package anki
