package common

// AccessTokenQueryParam is the query-string fallback used to carry the
// access token when the Authorization header is absent.
const AccessTokenQueryParam = "access_token"
