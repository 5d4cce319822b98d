package constants

const (
	AppMainGrocer      = "grocer"
	AppUserService     = "user-service"
	AppAddressService  = "address-service"
	AppCheckoutService = "checkout-service"

	AudienceUser = "user"
)
