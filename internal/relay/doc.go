// Package relay owns the local endpoint for the hub's stream callbacks.
//
// Ownership boundary:
// - callback port-range listener
// - dual-connection accept in wire order
// - line-buffered concurrent readers and the prompt queue
package relay
