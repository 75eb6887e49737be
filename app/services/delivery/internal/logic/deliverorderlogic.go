package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"DigiMart/app/common/money"
	orderdal "DigiMart/app/dal/order"
	"DigiMart/app/dal/premiumcode"
	productdal "DigiMart/app/dal/product"
	"DigiMart/app/services/delivery/internal/issuer"
	"DigiMart/app/services/delivery/internal/mq"
	"DigiMart/app/services/delivery/internal/notify"
	"DigiMart/app/services/delivery/internal/svc"

	"github.com/samber/lo"
	"github.com/zeromicro/go-zero/core/logx"
)

type DeliverOrderLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDeliverOrderLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeliverOrderLogic {
	return &DeliverOrderLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// DeliverOrderByPaymentSession fulfils the order paid through (provider, session).
//
// It is safe to call any number of times for the same session: a delivered order is
// returned as is, and a concurrent caller loses the claim on the order and gets
// ErrDeliveryInProgress. Any failure after the claim puts the order back to pending,
// unless another caller has taken the claim over in the meantime.
func (l *DeliverOrderLogic) DeliverOrderByPaymentSession(req DeliveryRequest) (*DeliveryResult, error) {
	provider := req.Provider
	if provider == "" {
		provider = l.svcCtx.Config.Delivery.Provider
	}

	o, err := l.svcCtx.Orders.FindOneByPaymentProviderPaymentSessionId(l.ctx, provider, req.SessionID)
	if errors.Is(err, orderdal.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrOrderNotFound, provider, req.SessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}

	if o.Status == orderdal.StatusDelivered {
		return &DeliveryResult{Order: o, AlreadyDelivered: true, MessageID: o.DeliveredMessageId.String, CodeIDs: o.DeliveredCodes()}, nil
	}
	if o.Status == orderdal.StatusFailed {
		return nil, fmt.Errorf("%w: order %d is %s", ErrOrderClosed, o.Id, o.Status)
	}
	if err := checkAmount(o, req.Payload); err != nil {
		l.Errorw("payment amount mismatch",
			logx.Field("orderId", o.Id),
			logx.Field("expected", o.PaymentAmount.String()),
			logx.Field("err", err.Error()))
		return nil, err
	}

	now := l.svcCtx.Now()
	claimedAt, won, err := l.svcCtx.Orders.ClaimForDelivery(l.ctx, o.Id, now, now.Add(-l.svcCtx.Config.Delivery.DeliveryLease))
	if err != nil {
		return nil, fmt.Errorf("claim order %d: %w", o.Id, err)
	}
	if !won {
		return l.afterLostClaim(o.Id)
	}
	o.Status = orderdal.StatusDelivering

	res, err := l.deliver(o, claimedAt, req)
	if err != nil {
		if !errors.Is(err, orderdal.ErrClaimLost) {
			l.release(o.Id, claimedAt)
		}
		return nil, err
	}
	return res, nil
}

func (l *DeliverOrderLogic) afterLostClaim(orderID int64) (*DeliveryResult, error) {
	cur, err := l.svcCtx.Orders.FindOne(l.ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload order %d: %w", orderID, err)
	}
	if cur.Status == orderdal.StatusDelivered {
		return &DeliveryResult{Order: cur, AlreadyDelivered: true, MessageID: cur.DeliveredMessageId.String, CodeIDs: cur.DeliveredCodes()}, nil
	}
	return nil, fmt.Errorf("%w: order %d is %s", ErrDeliveryInProgress, orderID, cur.Status)
}

func (l *DeliverOrderLogic) release(orderID int64, claimedAt time.Time) {
	ctx := context.WithoutCancel(l.ctx)
	err := l.svcCtx.Orders.ReleaseClaim(ctx, orderID, claimedAt)
	if errors.Is(err, orderdal.ErrClaimLost) {
		l.Infow("delivery claim was taken over, leaving it to the new holder", logx.Field("orderId", orderID))
		return
	}
	if err != nil {
		l.Errorw("release delivery claim failed", logx.Field("orderId", orderID), logx.Field("err", err.Error()))
	}
}

func (l *DeliverOrderLogic) deliver(o *orderdal.Orders, claimedAt time.Time, req DeliveryRequest) (*DeliveryResult, error) {
	items, err := l.svcCtx.OrderItems.ListByOrder(l.ctx, o.Id)
	if err != nil {
		return nil, fmt.Errorf("load items of order %d: %w", o.Id, err)
	}
	live, err := l.svcCtx.Products.FindByIds(l.ctx, lo.Uniq(lo.Map(items, func(it *orderdal.OrderItems, _ int) int64 {
		return it.ProductId
	})))
	if err != nil {
		return nil, fmt.Errorf("load products of order %d: %w", o.Id, err)
	}
	products := lo.KeyBy(live, func(p *productdal.Products) int64 { return p.Id })

	var (
		orderID  = strconv.FormatInt(o.Id, 10)
		links    []notify.Link
		sealed   []issuer.SealedCode
		codeIDs  []int64
		outcomes = make([]ItemOutcome, 0, len(items))
		// units a previous attempt already gave this order, per product, not yet re-used
		held = map[int64][]*premiumcode.PremiumCodes{}
	)

	for idx, it := range items {
		kind, name, file := resolveItem(it.DecodeSnapshot(), products[it.ProductId])
		out := ItemOutcome{Index: idx, ProductID: it.ProductId, Name: name, Kind: kind}

		switch kind {
		case productdal.TypeEbook:
			link, err := l.svcCtx.Issuer.IssueFileLink(issuer.FileGrant{
				FileName:    file.FileName,
				DisplayName: name,
				OrderID:     orderID,
				BucketID:    file.BucketId,
			})
			if errors.Is(err, issuer.ErrInvalidFileInfo) {
				out.Status, out.Reason = OutcomeSkipped, ReasonMissingFileInfo
				break
			}
			if err != nil {
				return nil, fmt.Errorf("issue link for item %d: %w", idx, err)
			}
			links = append(links, notify.Link{DisplayName: link.DisplayName, URL: link.URL})
			out.Status, out.Units = OutcomeDelivered, 1

		case productdal.TypePremiumAccount:
			units, err := l.claimUnits(o, it, held)
			if err != nil {
				return nil, err
			}
			for _, u := range units {
				sealed = append(sealed, issuer.SealedCode{ID: u.Id, ProductID: u.ProductId, ProductName: name, Encrypted: u.EncryptedCode})
				codeIDs = append(codeIDs, u.Id)
			}
			out.Units = len(units)
			switch {
			case len(units) == 0:
				out.Status, out.Reason = OutcomeSkipped, ReasonOutOfStock
			case int64(len(units)) < quantity(it):
				out.Status = OutcomePartial
			default:
				out.Status = OutcomeDelivered
			}

		default:
			out.Status, out.Reason = OutcomeSkipped, ReasonUnsupportedType
		}

		if out.Status != OutcomeDelivered {
			l.Infow("line item not fully delivered",
				logx.Field("orderId", o.Id),
				logx.Field("index", idx),
				logx.Field("productId", it.ProductId),
				logx.Field("status", string(out.Status)),
				logx.Field("reason", out.Reason),
				logx.Field("units", out.Units))
		}
		outcomes = append(outcomes, out)
	}

	total, err := money.Of(o.PaymentAmount, o.PaymentCurrency)
	if err != nil {
		l.Errorw("order has an unknown currency", logx.Field("orderId", o.Id), logx.Field("err", err.Error()))
	}
	revealed := l.svcCtx.Issuer.RevealCodes(l.ctx, sealed)
	doc, err := notify.Compose(notify.ComposeInput{
		OrderID: orderID,
		Total:   total,
		Links:   links,
		Blocks: notify.GroupCodes(lo.Map(revealed, func(rc issuer.RevealedCode, _ int) notify.Credential {
			return notify.Credential{ProductID: rc.ProductID, ProductName: rc.ProductName, Code: rc.Code}
		})),
		SupportEmail: l.svcCtx.Config.Delivery.SupportEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("compose delivery mail: %w", err)
	}

	mailCtx, cancel := context.WithTimeout(l.ctx, l.svcCtx.MailTimeout())
	messageID, err := l.svcCtx.Mailer.SendMail(mailCtx, notify.Mail{
		From:    l.svcCtx.Config.Delivery.Sender,
		To:      o.Email,
		Subject: doc.Subject,
		HTML:    doc.HTML,
	})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("send delivery mail for order %d: %w", o.Id, err)
	}

	if o.UserId.Valid {
		if _, err := l.svcCtx.Carts.ClearByUser(l.ctx, o.UserId.Int64); err != nil {
			l.Errorw("clear cart failed", logx.Field("userId", o.UserId.Int64), logx.Field("err", err.Error()))
		}
	}

	raw := o.PaymentRaw.String
	if req.Payload != nil {
		if b, err := json.Marshal(req.Payload); err == nil {
			raw = string(b)
		}
	}
	at := l.svcCtx.Now()
	if err := l.svcCtx.Orders.MarkDelivered(l.ctx, o.Id, claimedAt, orderdal.DeliveredInfo{
		PaymentRaw:  raw,
		DeliveredAt: at,
		MessageId:   messageID,
		CodeIds:     codeIDs,
	}); err != nil {
		return nil, fmt.Errorf("commit delivery of order %d: %w", o.Id, err)
	}

	o.Status = orderdal.StatusDelivered
	o.PaymentRaw.String, o.PaymentRaw.Valid = raw, raw != ""
	o.DeliveredAt.Time, o.DeliveredAt.Valid = at, true
	o.DeliveredMessageId.String, o.DeliveredMessageId.Valid = messageID, true
	if b, err := json.Marshal(lo.Ternary(codeIDs == nil, []int64{}, codeIDs)); err == nil {
		o.DeliveredCodeIds.String, o.DeliveredCodeIds.Valid = string(b), true
	}
	o.DeliveringAt.Valid = false

	res := &DeliveryResult{Order: o, Outcomes: outcomes, MessageID: messageID, CodeIDs: codeIDs}
	l.Infow("order delivered",
		logx.Field("orderId", o.Id),
		logx.Field("links", len(links)),
		logx.Field("codes", len(codeIDs)),
		logx.Field("skipped", res.Skipped()))
	l.publishDelivered(res)
	return res, nil
}

// claimUnits gives the item its quantity of codes, re-using what an earlier attempt
// already assigned to this order before claiming fresh units.
func (l *DeliverOrderLogic) claimUnits(o *orderdal.Orders, it *orderdal.OrderItems, held map[int64][]*premiumcode.PremiumCodes) ([]*premiumcode.PremiumCodes, error) {
	want := quantity(it)
	remaining, loaded := held[it.ProductId]
	if !loaded {
		prev, err := l.svcCtx.Allocator.AssignedToOrder(l.ctx, it.ProductId, o.Id)
		if err != nil {
			return nil, err
		}
		remaining = prev
	}
	take := min(int64(len(remaining)), want)
	units := append([]*premiumcode.PremiumCodes(nil), remaining[:take]...)
	held[it.ProductId] = remaining[take:]

	if short := want - take; short > 0 {
		fresh, err := l.svcCtx.Allocator.Allocate(l.ctx, it.ProductId, int(short), o.Email, o.Id)
		if err != nil {
			return nil, err
		}
		units = append(units, fresh...)
	}
	return units, nil
}

func (l *DeliverOrderLogic) publishDelivered(res *DeliveryResult) {
	if l.svcCtx.Events == nil {
		return
	}
	o := res.Order
	err := mq.PublishOrderDelivered(l.ctx, l.svcCtx.Events, mq.OrderDeliveredEvent{
		OrderId:     o.Id,
		Email:       o.Email,
		UserId:      o.UserId.Int64,
		MessageId:   res.MessageID,
		CodeIds:     res.CodeIDs,
		Skipped:     res.Skipped(),
		DeliveredAt: o.DeliveredAt.Time,
	})
	if err != nil {
		l.Errorw("publish order delivered event failed", logx.Field("orderId", o.Id), logx.Field("err", err.Error()))
	}
}

// resolveItem prefers the checkout snapshot and falls back to the live product for
// whatever the snapshot lacks.
func resolveItem(snap *orderdal.ItemSnapshot, live *productdal.Products) (kind, name string, file orderdal.FileInfo) {
	if snap != nil {
		kind, name = snap.Type, snap.Name
		if snap.FileInfo != nil {
			file = *snap.FileInfo
		}
	}
	if live != nil {
		if kind == "" {
			kind = live.Type
		}
		if name == "" {
			name = live.Name
		}
		if file.FileName == "" && live.HasFile() {
			file = orderdal.FileInfo{
				FileId:   live.FileId.String,
				FileName: live.FileName.String,
				BucketId: live.BucketId.String,
			}
		}
	}
	if name == "" {
		name = "Item"
	}
	return kind, name, file
}

func quantity(it *orderdal.OrderItems) int64 {
	if it.Quantity <= 0 {
		return 1
	}
	return it.Quantity
}

// checkAmount rejects a confirmation whose stated amount differs from the order's.
// An absent or zero amount is not checked.
func checkAmount(o *orderdal.Orders, payload map[string]any) error {
	if payload == nil {
		return nil
	}
	amount, present, err := money.AmountFrom(payload["amount"])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAmountMismatch, err)
	}
	if !present || amount.IsZero() {
		return nil
	}
	if !amount.Equal(o.PaymentAmount) {
		return fmt.Errorf("%w: got %s, order has %s", ErrAmountMismatch, amount.String(), o.PaymentAmount.String())
	}
	return nil
}
