// Package api exposes the HTTP surface: request/response models, handlers
// for auth, tasks, tags, and reminders, error sanitization, and the router.
package api
