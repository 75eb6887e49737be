package issuer

import (
	"context"
	"strings"
	"testing"
	"time"

	"DigiMart/app/common/codecrypt"
	"DigiMart/app/common/consts/biz"
	"DigiMart/app/common/downloadtoken"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newIssuer(t *testing.T) (*Issuer, *downloadtoken.Signer, *codecrypt.Cipher) {
	t.Helper()
	signer, err := downloadtoken.NewSigner("download-secret", biz.DownloadTokenExpire)
	require.NoError(t, err)
	c := codecrypt.MustNew(testKey)
	return New(signer, c, "https://shop.example.com/"), signer, c
}

func TestIssueFileLink(t *testing.T) {
	iss, signer, _ := newIssuer(t)

	link, err := iss.IssueFileLink(FileGrant{FileName: "books/x.pdf", DisplayName: "X", OrderID: "42"})
	require.NoError(t, err)
	assert.Equal(t, "X", link.DisplayName)
	require.True(t, strings.HasPrefix(link.URL, "https://shop.example.com/api/download/"))
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), link.ExpiresAt, time.Minute)

	claims, err := signer.Parse(strings.TrimPrefix(link.URL, "https://shop.example.com/api/download/"))
	require.NoError(t, err)
	assert.Equal(t, "books/x.pdf", claims.FileName)
	assert.Equal(t, "42", claims.OrderID)
}

func TestIssueFileLink_MissingFile(t *testing.T) {
	iss, _, _ := newIssuer(t)

	_, err := iss.IssueFileLink(FileGrant{FileName: "  ", DisplayName: "X"})
	assert.ErrorIs(t, err, ErrInvalidFileInfo)
}

func TestRevealCodes_SubstitutesSentinel(t *testing.T) {
	iss, _, c := newIssuer(t)

	good1, err := c.Encrypt("user1:pass1")
	require.NoError(t, err)
	good2, err := c.Encrypt("user2:pass2")
	require.NoError(t, err)

	got := iss.RevealCodes(context.Background(), []SealedCode{
		{ID: 1, ProductID: 5, ProductName: "Netflix", Encrypted: good1},
		{ID: 2, ProductID: 5, ProductName: "Netflix", Encrypted: "zz:not-hex"},
		{ID: 3, ProductID: 5, ProductName: "Netflix", Encrypted: good2},
	})

	require.Len(t, got, 3)
	assert.Equal(t, "user1:pass1", got[0].Code)
	assert.Equal(t, biz.DecryptErrorSentinel, got[1].Code)
	assert.True(t, got[1].Failed)
	assert.Equal(t, "user2:pass2", got[2].Code)
}
