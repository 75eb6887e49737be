package biz

import "time"

type CtxKey string

const (
	USER_KEY  CtxKey = "user_id"
	EMAIL_KEY CtxKey = "email"
	ROLE_KEY  CtxKey = "role"

	ACCESSTOKEN = "access_token"

	ROLE_ADMIN = "admin"
)

const (
	// DownloadTokenExpire is the lifetime of the link mailed to the customer.
	DownloadTokenExpire = time.Hour * 24
	// StorageURLExpire is the lifetime of the object-storage URL a download link redirects to.
	StorageURLExpire = time.Hour

	DecryptErrorSentinel = "ERROR-DECRYPTING-CODE"

	DownloadLimitKeyPrefix = "digimart:download:"
)
