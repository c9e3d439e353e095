package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/faroslabs/faros/pkg/api"
	"github.com/faroslabs/faros/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Expose the lens as a read-only HTTP API",
		Description: `Runs an HTTP server answering the same pod and node queries as the get
command, as JSON, plus health, readiness, version and Prometheus
metrics endpoints. API requests are rate limited per client address and
logged with a request id.

Configuration comes from the PORT, RATE_LIMIT and LOG_LEVEL environment
variables; flags override the environment.

# Examples

Serve on the default port:
  faros serve

Serve on an explicit port with a tighter rate limit:
  faros serve --port 9000 --rate-limit 10`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "listen port (default: 8080, or $PORT)",
			},
			&cli.StringFlag{
				Name:  "address",
				Usage: "bind address (default: all interfaces)",
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "per-client requests per second (default: 100, or $RATE_LIMIT)",
			},
			kubeconfigFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var opts []server.Option
			if cmd.IsSet("port") {
				opts = append(opts, server.WithPort(cmd.Int("port")))
			}
			if cmd.IsSet("address") {
				opts = append(opts, server.WithAddress(cmd.String("address")))
			}
			if cmd.IsSet("rate-limit") {
				opts = append(opts, server.WithRateLimit(cmd.Float("rate-limit")))
			}
			return api.Serve(ctx, cmd.String("kubeconfig"), opts...)
		},
	}
}
