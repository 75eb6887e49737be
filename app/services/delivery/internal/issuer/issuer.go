// Package issuer turns fulfilled line items into something a customer can use:
// signed download links for file products and plaintext codes for premium accounts.
package issuer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"DigiMart/app/common/consts/biz"
	"DigiMart/app/common/downloadtoken"

	"github.com/zeromicro/go-zero/core/logx"
)

var ErrInvalidFileInfo = errors.New("line item has no file to link")

type FileGrant struct {
	FileName    string
	DisplayName string
	OrderID     string
	BucketID    string
}

type FileLink struct {
	DisplayName string
	URL         string
	ExpiresAt   time.Time
}

// SealedCode is one claimed unit as stored.
type SealedCode struct {
	ID          int64
	ProductID   int64
	ProductName string
	Encrypted   string
}

type RevealedCode struct {
	ID          int64
	ProductID   int64
	ProductName string
	Code        string
	// Failed marks a unit whose ciphertext could not be opened; Code holds the sentinel.
	Failed bool
}

type Decrypter interface {
	Decrypt(encrypted string) (string, error)
}

type Issuer struct {
	signer  *downloadtoken.Signer
	cipher  Decrypter
	baseURL string
}

func New(signer *downloadtoken.Signer, cipher Decrypter, appURL string) *Issuer {
	return &Issuer{
		signer:  signer,
		cipher:  cipher,
		baseURL: strings.TrimRight(appURL, "/"),
	}
}

// IssueFileLink mints a token bound to the file and the order and wraps it in a
// redemption URL on this service.
func (i *Issuer) IssueFileLink(g FileGrant) (FileLink, error) {
	if strings.TrimSpace(g.FileName) == "" {
		return FileLink{}, ErrInvalidFileInfo
	}
	token, exp, err := i.signer.Sign(downloadtoken.Claims{
		FileName:    g.FileName,
		DisplayName: g.DisplayName,
		OrderID:     g.OrderID,
		BucketID:    g.BucketID,
	})
	if err != nil {
		return FileLink{}, fmt.Errorf("sign download token: %w", err)
	}
	return FileLink{
		DisplayName: g.DisplayName,
		URL:         i.baseURL + "/api/download/" + url.PathEscape(token),
		ExpiresAt:   exp,
	}, nil
}

// RevealCodes opens every sealed unit. A unit that fails to decrypt is replaced by the
// sentinel and the rest still go through.
func (i *Issuer) RevealCodes(ctx context.Context, sealed []SealedCode) []RevealedCode {
	out := make([]RevealedCode, 0, len(sealed))
	for _, s := range sealed {
		rc := RevealedCode{ID: s.ID, ProductID: s.ProductID, ProductName: s.ProductName}
		plain, err := i.cipher.Decrypt(s.Encrypted)
		if err != nil {
			logx.WithContext(ctx).Errorw("decrypt premium code failed",
				logx.Field("codeId", s.ID),
				logx.Field("productId", s.ProductID),
				logx.Field("err", err.Error()))
			rc.Code = biz.DecryptErrorSentinel
			rc.Failed = true
		} else {
			rc.Code = plain
		}
		out = append(out, rc)
	}
	return out
}
