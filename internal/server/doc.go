// Package server is the HTTP boundary of the gateway.
//
// A connection request is handled in this order:
//  1. session extraction (401 when the query carries no UUID)
//  2. route resolution through the registry (404 unknown route, 500 registry failure)
//  3. WebSocket upgrade and a connection.Supervisor for the rest of the connection
//
// Nothing is upgraded, and no supervisor exists, until the first two steps succeed.
package server
