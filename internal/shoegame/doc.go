// Package shoegame is the wedding "shoe game" installed on the root route.
//
// The bride and groom each hold one shoe of their partner and answer
// questions about their relationship by raising the matching shoe. Guests
// vote on the answer from their phones; votes and the answer are revealed
// together on the presentation screen.
//
// Roles:
//   - guest: sees the question and votes for a shoe
//   - screen: sees questions and live vote counts
//   - moderator: advances questions and reveals the answer
//
// Questions are loaded at startup and cannot be changed through the game.
//
// Wire protocol (JSON text frames):
//
//	{"type":"hello","role":"moderator"}
//	{"type":"vote","shoe":"bride"}
//	{"type":"next"}
//	{"type":"reveal","shoe":"groom"}
package shoegame
