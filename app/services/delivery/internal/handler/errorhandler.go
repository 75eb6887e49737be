package handler

import (
	"context"
	"errors"
	"net/http"

	"DigiMart/app/common/consts/errno"
	"DigiMart/app/common/response"

	xerrors "github.com/zeromicro/x/errors"
)

// ErrorHandler renders coded errors as {code,msg}; uncoded errors are treated as bad input.
func ErrorHandler(_ context.Context, err error) (int, any) {
	var cm *xerrors.CodeMsg
	if !errors.As(err, &cm) {
		return http.StatusBadRequest, response.NewResponse(errno.InvalidParam, err.Error())
	}
	return statusOf(cm.Code), response.NewResponse(cm.Code, cm.Msg)
}

func statusOf(code int) int {
	switch code {
	case errno.TokenEmpty, errno.AccessTokenExpired, errno.TokenInvalid:
		return http.StatusUnauthorized
	case errno.PermissionDenied:
		return http.StatusForbidden
	case errno.ProductNotFound, errno.OrderNotFound:
		return http.StatusNotFound
	case errno.InternalError, errno.StorageUnavailable, errno.MailTransportFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
