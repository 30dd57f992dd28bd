// Package store defines the persistence interfaces for tasks, tags,
// reminders and users, the shared error taxonomy, and the transaction
// helper used to compose multi-store writes atomically.
//
// Implementations live under internal/platform; the rest of the
// application depends only on these interfaces.
package store
