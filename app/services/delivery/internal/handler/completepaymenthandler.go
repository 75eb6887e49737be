package handler

import (
	"errors"
	"net/http"

	"DigiMart/app/common/response"
	"DigiMart/app/services/delivery/internal/logic"
	"DigiMart/app/services/delivery/internal/svc"
	"DigiMart/app/services/delivery/internal/types"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func CompletePaymentHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CompletePaymentRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.WriteJsonCtx(r.Context(), w, http.StatusBadRequest, response.NewErrorBody("sessionId required", ""))
			return
		}

		l := logic.NewCompletePaymentLogic(r.Context(), svcCtx)
		resp, err := l.CompletePayment(&req)
		switch {
		case errors.Is(err, logic.ErrSessionRequired):
			httpx.WriteJsonCtx(r.Context(), w, http.StatusBadRequest, response.NewErrorBody("sessionId required", ""))
		case err != nil:
			httpx.WriteJsonCtx(r.Context(), w, http.StatusInternalServerError, response.NewErrorBody("Delivery failed", err.Error()))
		default:
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
