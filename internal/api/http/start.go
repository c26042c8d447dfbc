package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"

	"github.com/Alijeyrad/medchart/config"
	"github.com/Alijeyrad/medchart/internal/api/http/router"
	"github.com/Alijeyrad/medchart/internal/app"
)

func Start(cfg *config.Config, timeout time.Duration, extra ...fx.Option) {
	opts := []fx.Option{
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		app.WorkerModule,
		router.Module,
		Module,

		// NewServer only registers its lifecycle hooks when something depends on it.
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
	}
	fx.New(append(opts, extra...)...).Run()
}
