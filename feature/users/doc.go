// Package users implements the user accounts resource.
//
// Anyone may register with POST /api/v1/users/. Listing and reading users requires
// HTTP Basic authentication, and a user may only update their own email and password;
// the username never changes. Passwords are stored as bcrypt hashes.
//
// The Service also serves as the authenticator for every protected route of the
// application (see core/middleware/auth).
package users
