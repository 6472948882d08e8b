// Package api implements the HTTP REST API and WebSocket server for the
// gadget registry.
//
// This package provides:
//   - REST endpoints for gadget CRUD, decommissioning and status history
//   - The two-step self-destruct flow (request code, confirm with code)
//   - WebSocket hub broadcasting committed lifecycle events
//   - Bearer JWT authentication on everything except health, metrics and token issuance
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Errors
//
// Every failure is a JSON body {"status", "code", "message"}. Lifecycle and
// confirmation failures are 400s with stable messages, a missing gadget is a
// 404, a lost compare-and-set race is a 409, and an exhausted codename space
// is a 503 with code "codename_exhausted".
//
// # WebSocket
//
// Clients connect to /api/v1/ws with a token, then send
// {"type":"subscribe","payload":{"channels":["gadget.destroyed"]}}. The
// channel "*" receives every event; any other name outside the gadget event
// types is answered with an error frame. Adding "gadget_ids" to the payload
// limits delivery to those gadgets.
package api
