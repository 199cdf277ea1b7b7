package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ItsNotGoodName/x-tilewm/internal/build"
	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/config"
	"github.com/ItsNotGoodName/x-tilewm/internal/ipc"
	"github.com/ItsNotGoodName/x-tilewm/internal/x11"
	"github.com/ItsNotGoodName/x-tilewm/internal/xwm"
	"github.com/ItsNotGoodName/x-tilewm/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
	"github.com/thejerf/suture/v4"
)

type Options struct {
	Debug  bool   `doc:"enable debug"`
	Config string `doc:"config file" default:".x-tilewm.yaml"`
	Socket string `doc:"IPC socket path override"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		if options.Debug {
			InitLogger(slog.LevelDebug)
		} else {
			InitLogger(slog.LevelInfo)
		}

		OnServe(hooks, func(ctx context.Context) error {
			bus.SetContext(ctx)

			configFilePath, err := filepath.Abs(options.Config)
			if err != nil {
				return err
			}

			cfg, err := config.Load(configFilePath)
			if err != nil {
				return err
			}
			if options.Socket != "" {
				cfg.Socket = options.Socket
			}

			conn, err := x11.Connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			snapshotHub := bus.NewHub[ipc.Snapshot]().Register()
			requestC := make(chan ipc.Request)

			manager, err := xwm.NewManager(conn, cfg, requestC)
			if err != nil {
				return err
			}

			super := sutureext.NewSimple("x-tilewm")
			sutureext.Add(super, manager)
			sutureext.Add(super, ipc.NewServer(cfg.SocketPath(), requestC, snapshotHub))

			err = super.Serve(ctx)
			if errors.Is(err, suture.ErrTerminateSupervisorTree) {
				return nil
			}
			return err
		})
	})

	cli.Root().Version = build.Current.Version

	cli.Run()
}

func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
