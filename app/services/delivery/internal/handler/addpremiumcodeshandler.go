package handler

import (
	"net/http"

	"DigiMart/app/services/delivery/internal/logic"
	"DigiMart/app/services/delivery/internal/svc"
	"DigiMart/app/services/delivery/internal/types"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func AddPremiumCodesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.AddPremiumCodesRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewAddPremiumCodesLogic(r.Context(), svcCtx)
		resp, err := l.AddPremiumCodes(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
