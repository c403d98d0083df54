// Package session owns the client side of the hub control connection.
//
// Ownership boundary:
// - dial, TLS handshake, greeting acknowledgment
// - framed request/response exchange, one request in flight
// - transport error kinds
package session
