package main

import (
	"context"
	"log/slog"
	"os"

	"beacon/config"
	"beacon/internal/delivery"
	"beacon/internal/delivery/http"
	"beacon/internal/delivery/http/router/handler"
	"beacon/internal/infra/appstate"
	"beacon/internal/infra/directory"
	"beacon/internal/infra/feed"
	logs "beacon/internal/infra/log"
	"beacon/internal/infra/navigation"
	"beacon/internal/infra/persistence/sqlite"
	"beacon/internal/infra/registry"
	"beacon/internal/infra/sched"
	"beacon/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		sqlite.New,
		sched.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			sqlite.NewDeviceRepository,
			sqlite.NewUnreadRepository,
			directory.NewClient,
			directory.NewMembershipRepository,
			directory.NewProfileRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			registry.NewTokenRegistry,
			directory.NewUnreadSource,
			navigation.NewNavigationBridge,
			feed.NewMessageFeed,
			appstate.NewTracker,
			appstate.NewAppStateSource,
			appstate.NewPushTokenStore,
			appstate.NewPushTokenSource,
			appstate.NewPermissionStore,
			appstate.NewPermissionGateway,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewIdentityService,
			impl.NewRegistrationService,
			impl.NewUnreadService,
			impl.NewToastService,
			impl.NewIngestService,
			impl.NewSessionService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewRegistrationHandler,
			handler.NewSessionHandler,
			handler.NewInboxHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
