// Package session extracts participant identity from an incoming connection request.
//
// Login happens via /ws?uuid=<v4 uuid>. There are no accounts: the UUID is an
// opaque token that identifies a participant for the lifetime of the process.
package session
