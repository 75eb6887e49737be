package handler

import (
	"net/http"

	"DigiMart/app/services/delivery/internal/logic"
	"DigiMart/app/services/delivery/internal/svc"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func ListPurchasesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewListPurchasesLogic(r.Context(), svcCtx)
		resp, err := l.ListPurchases()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
