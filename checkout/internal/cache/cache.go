package cache

// KeyCartByUserID is the session cart snapshot key, formatted with the user
// id.
const KeyCartByUserID = "checkout:carts:user_id:%s"
