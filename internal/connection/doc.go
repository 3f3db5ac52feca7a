// Package connection implements the Connection Supervisor.
//
// One Supervisor owns one accepted WebSocket connection:
//   - Answers pings, records pongs as liveness
//   - Probes the peer every heartbeat interval and closes it after the client timeout
//   - Relays text/binary frames to the bound route handler (or echoes them)
//   - Writes handler replies sent to its outbox back to the peer
//
// Closing a connection never stops the handler it was bound to.
package connection
