// Package api contains the HTTP handlers for the moderation service, the
// request/response models, and the mapping from internal errors to HTTP
// status codes. Routing lives in cmd/server.
package api
