// Package store defines the persistence interfaces for the moderation
// service along with the sentinel errors implementations must return.
// Concrete implementations live in internal/platform/postgres; services
// and the worker depend only on the interfaces defined here.
package store
