package handler

import (
	"errors"
	"net/http"

	"DigiMart/app/services/delivery/internal/logic"
	"DigiMart/app/services/delivery/internal/svc"
	"DigiMart/app/services/delivery/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

const (
	invalidLinkMsg = "Invalid or expired link."
	tooManyMsg     = "Too many downloads for this link, try again later."
)

func RedeemDownloadHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RedeemDownloadRequest
		if err := httpx.Parse(r, &req); err != nil {
			http.Error(w, invalidLinkMsg, http.StatusUnauthorized)
			return
		}

		l := logic.NewRedeemDownloadLogic(r.Context(), svcCtx)
		url, err := l.RedeemDownload(&req)
		if errors.Is(err, logic.ErrTooManyDownloads) {
			http.Error(w, tooManyMsg, http.StatusTooManyRequests)
			return
		}
		if err != nil {
			logx.WithContext(r.Context()).Errorw("download redeem failed", logx.Field("err", err.Error()))
			http.Error(w, invalidLinkMsg, http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
	}
}
