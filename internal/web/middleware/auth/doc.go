// Package auth provides the session middleware of the API.
//
// For every request it resolves the session cookie to a user id and loads that
// user's Subject from the database, so role and permission changes apply to the
// very next request. The Subject is stored in fiber.Locals under
// auth.LocalsSubject for the permission guards and handlers.
package auth
