package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"DigiMart/app/common/codecrypt"
	productdal "DigiMart/app/dal/product"

	"github.com/samber/lo"
)

var ErrNoCodes = errors.New("no codes found")

// ReadCodes returns the trimmed first column of every row, blanks and repeats removed.
func ReadCodes(r io.Reader, skipHeader bool) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if skipHeader && len(rows) > 0 {
		rows = rows[1:]
	}

	codes := lo.Uniq(lo.FilterMap(rows, func(row []string, _ int) (string, bool) {
		if len(row) == 0 {
			return "", false
		}
		code := strings.TrimSpace(row[0])
		return code, code != ""
	}))
	if len(codes) == 0 {
		return nil, ErrNoCodes
	}
	return codes, nil
}

func EncryptAll(c *codecrypt.Cipher, codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	for i, code := range codes {
		enc, err := c.Encrypt(code)
		if err != nil {
			return nil, fmt.Errorf("encrypt code %d: %w", i, err)
		}
		out = append(out, enc)
	}
	return out, nil
}

type productFinder interface {
	FindOne(ctx context.Context, id int64) (*productdal.Products, error)
}

func CheckPremium(ctx context.Context, products productFinder, id int64) error {
	p, err := products.FindOne(ctx, id)
	if err != nil {
		return fmt.Errorf("find product %d: %w", id, err)
	}
	if p.Type != productdal.TypePremiumAccount {
		return fmt.Errorf("product %d is %q, not a premium account", id, p.Type)
	}
	return nil
}
