package http

const (
	KeyHeaderContentType          = "Content-Type"
	ValueHeaderApplicationJson    = "application/json"
	KeyHeaderAuthorization        = "Authorization"
	ValueHeaderBearerPrefix       = "Bearer "
	KeyHeaderIdempotencyKey       = "Idempotency-Key"
	KeyHeaderRequestID            = "X-Request-Id"
	ValueHeaderApplicationJsonUtf = "application/json; charset=utf-8"
)
