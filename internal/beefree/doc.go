// Package beefree wraps the Beefree HTML Importer API.
//
// The client is stateless apart from the credential and transport resolved at
// construction. Every call to Convert terminates in a Result: remote and
// transport failures are classified into a Failure value rather than returned
// as errors, so batch callers can inspect and aggregate them.
package beefree
