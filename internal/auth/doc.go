// Package auth authenticates users of the local user directory.
//
// LocalProvider checks username and password against the users table, where
// passwords are stored as Argon2id hashes, and manages the accounts themselves.
// What an authenticated user may do is decided by package authz.
//
// Example usage:
//
//	provider, err := auth.NewLocalProvider(db)
//	user, err := provider.Authenticate(ctx, username, password)
//	sess, err := sessions.Create(user.ID, user.Username)
package auth
