// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces (repositories) defined in the internal/store package.
// It handles the details of query execution and data mapping between domain
// entities and database records, and translates driver errors into the
// sentinel errors the rest of the application matches on.
package postgres
