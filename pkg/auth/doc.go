// Package auth authenticates callers of the vision records API.
//
// A caller proves its ledger address with a signed bearer token (HS256 JWT).
// The token subject is the address; every mutating entry point runs as that
// address.
//
//	a, err := auth.NewAuthenticator(secret, "visionrecords")
//	token, err := a.Sign("GPROVIDER", time.Hour)
//	caller, err := a.Verify(token)
package auth
