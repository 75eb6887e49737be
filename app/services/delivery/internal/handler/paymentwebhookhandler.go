package handler

import (
	"errors"
	"io"
	"net/http"

	"DigiMart/app/common/response"
	"DigiMart/app/services/delivery/internal/logic"
	"DigiMart/app/services/delivery/internal/svc"

	"github.com/zeromicro/go-zero/rest/httpx"
)

const maxWebhookBody = 1 << 20

// PaymentWebhookHandler answers every failure with 400 so the provider retries.
func PaymentWebhookHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			httpx.WriteJsonCtx(r.Context(), w, http.StatusBadRequest, response.NewErrorBody("Webhook handling failed", ""))
			return
		}

		l := logic.NewPaymentWebhookLogic(r.Context(), svcCtx)
		resp, err := l.PaymentWebhook(body)
		switch {
		case errors.Is(err, logic.ErrMissingSession):
			httpx.WriteJsonCtx(r.Context(), w, http.StatusBadRequest, response.NewErrorBody("Missing session id", ""))
		case err != nil:
			httpx.WriteJsonCtx(r.Context(), w, http.StatusBadRequest, response.NewErrorBody("Webhook handling failed", ""))
		default:
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
