// Package sanitizer normalizes user supplied booking and room fields before
// validation and storage.
//
// Every function is idempotent and never fails: malformed input is returned
// in a form the validator will reject rather than being silently repaired.
package sanitizer
