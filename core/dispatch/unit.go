package dispatch

// Unit is the zero-information response used to unify void-request
// dispatch with response-bearing dispatch: internally a void-request is a
// request whose response type is Unit, so the request executor, the
// pipeline composer and the exception processor stay generic in the
// response type instead of needing a separate no-response code path.
type Unit struct{}
