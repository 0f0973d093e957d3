package errors

// User-facing messages, per HTTP method of the /users resource.
const (
	MsgInvalidBody        = "Invalid request body"
	MsgInvalidBodyPut     = "Invalid request body for PUT"
	MsgEmailRequired      = "Email is required"
	MsgUIDRequired        = "User ID (supabaseUid) is required"
	MsgIdentifierPut      = "User ID (supabaseUid) or email is required for PUT"
	MsgIdentifierGet      = "User ID (uid) or email is required as query parameter"
	MsgIdentifierDelete   = "User ID (uid) or email is required for DELETE"
	MsgAddressesInvalid   = "addresses must be an array of objects"
	MsgUserNotFound       = "User not found"
	MsgUserNotFoundPut    = "User not found to update"
	MsgUserNotFoundDelete = "User not found to delete"
	MsgConflict           = "User with this identifier already exists"
	MsgSaveFailed         = "Failed to save user data"
	MsgInternalGet        = "Internal server error in GET"
	MsgInternalPut        = "Internal server error in PUT"
	MsgInternalDelete     = "Internal server error in DELETE"
	MsgInternalError      = "Something went wrong on our end. Please try again later."
	MsgRateLimited        = "rate limit exceeded"
	MsgUnauthorized       = "authorization header required"
	MsgInvalidToken       = "invalid or expired ID token"
	MsgUserDeleted        = "User deleted successfully"
)
