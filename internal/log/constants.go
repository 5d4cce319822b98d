package log

const (
	KeyAppName            = "app"
	KeyTag                = "tag"
	KeyProcess            = "process"
	KeyRequestID          = "requestId"
	KeyConfig             = "config"
	KeyEmail              = "email"
	KeyToken              = "token"
	KeyUserID             = "userId"
	KeyAddressID          = "addressId"
	KeyProductID          = "productId"
	KeyPromoCode          = "promoCode"
	KeyAttemptID          = "attemptId"
	KeyIdempotencyKey     = "idempotencyKey"
	KeyStage              = "stage"
	KeyPaymentMethod      = "paymentMethod"
	KeyPaymentIntentID    = "paymentIntentId"
	KeyPaymentOrphaned    = "paymentOrphaned"
	KeyOrderID            = "orderId"
	KeyCartItems          = "cartItems"
	KeyCartSummary        = "cartSummary"
	KeyStockChanges       = "stockChanges"
	KeyDeliveryZone       = "deliveryZone"
	KeyDeliveryFee        = "deliveryFee"
	KeyCacheKey           = "cacheKey"
	KeyDbURL              = "dbUrl"
	KeyPathValues         = "pathValues"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestIp          = "requesterIP"
	KeyRequestProcessedAt = "requestProcessedAt"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
)
