// Package model defines records shared between storage and route handlers.
package model
