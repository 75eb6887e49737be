package util

import (
	"context"
	"net/http"

	"DigiMart/app/common/consts/biz"
	"DigiMart/app/common/consts/errno"

	"github.com/zeromicro/x/errors"
)

// Identity is what the auth middleware learned about the caller.
type Identity struct {
	UserID int64
	Email  string
	Role   string
}

func UserIdFromCtx(ctx context.Context) (int64, error) {
	if ctx == nil {
		return 0, errors.New(int(errno.TokenEmpty), "missing context")
	}

	switch val := ctx.Value(biz.USER_KEY).(type) {
	case int64:
		return val, nil
	}

	return 0, errors.New(int(errno.TokenEmpty), "unauthorized")
}

// IdentityFromCtx never fails; guests get the zero Identity and false.
func IdentityFromCtx(ctx context.Context) (Identity, bool) {
	uid, err := UserIdFromCtx(ctx)
	if err != nil || uid <= 0 {
		return Identity{}, false
	}
	email, _ := ctx.Value(biz.EMAIL_KEY).(string)
	role, _ := ctx.Value(biz.ROLE_KEY).(string)
	return Identity{UserID: uid, Email: email, Role: role}, true
}

func InjectIdentity2Ctx(r *http.Request, id Identity) {
	ctx := context.WithValue(r.Context(), biz.USER_KEY, id.UserID)
	ctx = context.WithValue(ctx, biz.EMAIL_KEY, id.Email)
	ctx = context.WithValue(ctx, biz.ROLE_KEY, id.Role)
	*r = *r.WithContext(ctx)
}
