// Package links validates submission text and normalizes team identifiers
// before they reach the staging buffer.
package links
