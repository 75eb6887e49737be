// Command codeimport stocks premium account codes from a CSV file.
//
//	go run ./tools/codeimport -f tools/codeimport/etc/codeimport.yaml -product 12 -csv codes.csv
//
// The first column of every row is taken as one code. Codes are encrypted with the
// delivery service key before they reach MySQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"DigiMart/app/common/codecrypt"
	premiumcodedal "DigiMart/app/dal/premiumcode"
	productdal "DigiMart/app/dal/product"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

type Config struct {
	Log             logx.LogConf
	MysqlConf       sqlx.SqlConf
	CacheConf       cache.CacheConf
	CryptoSecretKey string
}

var (
	configFile = flag.String("f", "tools/codeimport/etc/codeimport.yaml", "the config file")
	productID  = flag.Int64("product", 0, "premium product id to stock")
	csvFile    = flag.String("csv", "", "csv file with one code per row")
	header     = flag.Bool("header", false, "skip the first csv row")
	dryRun     = flag.Bool("dry", false, "parse and encrypt without writing")
)

func main() {
	flag.Parse()

	var c Config
	conf.MustLoad(*configFile, &c)
	logx.MustSetup(c.Log)
	defer logx.Close()

	if *productID <= 0 || *csvFile == "" {
		logx.Must(errors.New("-product and -csv are required"))
	}

	f, err := os.Open(*csvFile)
	logx.Must(err)
	defer f.Close()

	codes, err := ReadCodes(f, *header)
	logx.Must(err)

	cipher, err := codecrypt.New([]byte(c.CryptoSecretKey))
	logx.Must(err)
	encrypted, err := EncryptAll(cipher, codes)
	logx.Must(err)

	if *dryRun {
		fmt.Printf("parsed %d unique codes for product %d, nothing written\n", len(encrypted), *productID)
		return
	}

	ctx := context.Background()
	conn := sqlx.NewMysql(c.MysqlConf.DataSource)
	products := productdal.NewProductsModel(conn, c.CacheConf)
	logx.Must(CheckPremium(ctx, products, *productID))

	n, err := premiumcodedal.NewPremiumCodesModel(conn).InsertBatch(ctx, *productID, encrypted)
	logx.Must(err)
	logx.Infow("premium codes imported",
		logx.Field("productId", *productID),
		logx.Field("inserted", n),
		logx.Field("parsed", len(codes)))
	fmt.Printf("Imported %d codes into product %d.\n", n, *productID)
}
