// Package sanitizer provides input normalization for user-supplied data.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions handle invalid input gracefully, typically by returning
// empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Phone numbers: Convert to E.164 format (+[country][number]) using a default region
//   - Emails: Trim and lowercase
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Facilities: Normalize names and emails, drop empties and duplicates
//   - Search terms: Escape for safe use inside a regular expression
package sanitizer
