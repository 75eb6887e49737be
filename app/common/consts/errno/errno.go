package errno

const (
	TokenEmpty = 40000 + iota
	AccessTokenExpired
	TokenInvalid
	PermissionDenied
)

const (
	InternalError = 50000 + iota
	InvalidParam
	OrderNotFound
	ProductNotFound
	MailTransportFailed
	StorageUnavailable
)
