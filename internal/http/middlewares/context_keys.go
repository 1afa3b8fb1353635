package middlewares

const (
	CtxRequestID = "request_id"
	CtxPrincipal = "auth.principal"
	CtxSessionID = "auth.sid"
)
