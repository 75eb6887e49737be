package middleware

import (
	"net/http"

	"DigiMart/app/common/consts/errno"
	"DigiMart/app/common/util"

	"github.com/zeromicro/go-zero/rest/httpx"
	"github.com/zeromicro/x/errors"
)

// RoleMiddleware must run after AuthMiddleware.
type RoleMiddleware struct {
	roles map[string]struct{}
}

func NewRoleMiddleware(roles ...string) *RoleMiddleware {
	m := &RoleMiddleware{roles: make(map[string]struct{}, len(roles))}
	for _, role := range roles {
		m.roles[role] = struct{}{}
	}
	return m
}

func (m *RoleMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := util.IdentityFromCtx(r.Context())
		if !ok {
			httpx.ErrorCtx(r.Context(), w, errors.New(int(errno.TokenEmpty), "token is null"))
			return
		}
		if _, allowed := m.roles[id.Role]; !allowed {
			httpx.ErrorCtx(r.Context(), w, errors.New(int(errno.PermissionDenied), "permission denied"))
			return
		}
		next(w, r)
	}
}
