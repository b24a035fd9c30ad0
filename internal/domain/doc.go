// Package domain contains the core entities of the moderation service:
// advertisements and moderation tasks. Entities carry their own validation
// and know nothing about persistence, transport, or scoring.
package domain
