// Package protocol owns the hub wire contract.
//
// Ownership boundary:
// - command request shapes and validation
// - response envelope and status tags
// - job status and kill result names
package protocol
