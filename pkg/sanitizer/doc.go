// Package sanitizer normalises client input before validation and storage.
//
// All functions are idempotent and never fail: invalid input comes back
// empty or unchanged and is left for the validator to reject.
package sanitizer
