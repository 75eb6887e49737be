package main

import (
	"flag"
	"fmt"

	"DigiMart/app/services/delivery/internal/bootstrap"
	"DigiMart/app/services/delivery/internal/config"
	"DigiMart/app/services/delivery/internal/handler"
	"DigiMart/app/services/delivery/internal/svc"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"
)

var configFile = flag.String("f", "etc/delivery.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)

	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(c)
	defer ctx.Close()
	handler.RegisterHandlers(server, ctx)
	httpx.SetErrorHandlerCtx(handler.ErrorHandler)

	stop := bootstrap.StartWorkers(ctx)
	defer stop()

	fmt.Printf("Starting server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
