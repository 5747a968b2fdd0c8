// Package auth implements the LearnEx authentication pipeline: credential
// hashing, bearer-token issuance and verification, cookie-based session
// transport, and the HTTP surface the browser client talks to.
//
// The flow, outside-in:
//   - http_controller.go exposes /api/auth/{register,login,verify,logout}
//     as thin adapters over the Authenticator.
//   - authenticator.go orchestrates the user store, the password hasher,
//     and the token service. Register/login/verify semantics live there;
//     controllers only map outcomes to status codes.
//   - token_service.go mints and validates HS256 JWTs carrying the user id.
//     A missing signing key is a configuration error: the constructor
//     refuses, so the process can never mint unsigned tokens.
//   - repo_users.go persists users through Bun. Uniqueness of email and
//     username is enforced by the schema; the repository maps driver
//     unique violations to ErrUserExists.
//
// The request-authenticating middleware lives in middleware/authware and
// deliberately avoids importing this package; middleware_helpers.go holds
// the glue. The in-browser session store and route guard are modeled by
// the client package.
package auth
