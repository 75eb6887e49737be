package middleware

import (
	stderrors "errors"
	"net/http"
	"strings"

	"DigiMart/app/common/authtoken"
	"DigiMart/app/common/consts/biz"
	"DigiMart/app/common/consts/errno"
	"DigiMart/app/common/util"

	"github.com/zeromicro/go-zero/rest/httpx"
	"github.com/zeromicro/x/errors"
)

type AuthMiddleware struct {
	secret   string
	optional bool
}

// NewAuthMiddleware rejects requests without a valid access token.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret}
}

// NewOptionalAuthMiddleware lets guests through and only attaches an identity
// when a valid token is present. Checkout uses it, guest orders are allowed.
func NewOptionalAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret, optional: true}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken := tokenFromRequest(r)
		if accessToken == "" {
			if m.optional {
				next(w, r)
				return
			}
			httpx.ErrorCtx(r.Context(), w, errors.New(int(errno.TokenEmpty), "token is null"))
			return
		}

		claims, err := authtoken.Parse(accessToken, m.secret)
		if err != nil {
			if m.optional {
				next(w, r)
				return
			}
			code := errno.TokenInvalid
			if stderrors.Is(err, authtoken.ErrTokenExpired) {
				code = errno.AccessTokenExpired
			}
			httpx.ErrorCtx(r.Context(), w, errors.New(code, err.Error()))
			return
		}

		util.InjectIdentity2Ctx(r, util.Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		})
		next(w, r)
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(biz.ACCESSTOKEN); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if headerToken := r.Header.Get(biz.ACCESSTOKEN); headerToken != "" {
		return headerToken
	}
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(bearer)
	}
	return ""
}
