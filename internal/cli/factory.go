package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/designbridge"
	"github.com/aretw0/designbridge/internal/config"
	"github.com/aretw0/designbridge/pkg/adapters/host"
	httpAdapter "github.com/aretw0/designbridge/pkg/adapters/http"
	"github.com/aretw0/designbridge/pkg/adapters/process"
	redisAdapter "github.com/aretw0/designbridge/pkg/adapters/redis"
	"github.com/aretw0/designbridge/pkg/adapters/simulated"
	"github.com/aretw0/designbridge/pkg/adapters/websocket"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/aretw0/designbridge/pkg/observability"
	"github.com/aretw0/designbridge/pkg/ports"
	"github.com/redis/go-redis/v9"
)

// Runtime bundles a bridge with the observers every surface shares.
type Runtime struct {
	Bridge  *designbridge.Bridge
	Metrics *observability.Metrics
	Streams *httpAdapter.StreamManager

	logger  *slog.Logger
	closers []func() error
}

// NewRuntime builds the executor selected by cfg.Mode and a bridge around it.
// Nothing is launched until Start.
func NewRuntime(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{
		Metrics: observability.NewMetrics(),
		Streams: httpAdapter.NewStreamManager(logger),
		logger:  logger,
	}

	exec, err := rt.createExecutor(cfg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	rt.Bridge = designbridge.New(
		designbridge.WithExecutor(exec),
		designbridge.WithLogger(logger),
		designbridge.WithLifecycleHooks(rt.Metrics.Hooks(rt.Streams.Hooks(DebugHooks(logger, domain.LifecycleHooks{})))),
	)
	return rt, nil
}

func (rt *Runtime) createExecutor(cfg config.Config) (ports.Executor, error) {
	if cfg.Mode == config.ModeSimulated {
		return simulated.New(
			simulated.WithDelay(cfg.Simulated.Delay),
			simulated.WithLogger(rt.logger),
		), nil
	}

	launcher, err := rt.createLauncher(cfg)
	if err != nil {
		return nil, err
	}
	return host.New(launcher,
		host.WithLogger(rt.logger),
		host.WithPlaceholderDelay(cfg.Host.PlaceholderDelay),
		host.WithCommandTimeout(cfg.Host.CommandTimeout),
	), nil
}

func (rt *Runtime) createLauncher(cfg config.Config) (ports.HostLauncher, error) {
	switch cfg.Mode {
	case config.ModeProcess:
		hostCfg, err := process.LoadConfig(cfg.Host.Config)
		if err != nil {
			return nil, err
		}
		return process.NewLauncher(hostCfg, process.WithLogger(rt.logger)), nil

	case config.ModeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, client.Close)
		return redisAdapter.NewFromClient(client,
			redisAdapter.WithChannel(cfg.Redis.Channel),
			redisAdapter.WithLeaseTTL(cfg.Redis.LeaseTTL),
			redisAdapter.WithLogger(rt.logger),
		), nil

	case config.ModeWebSocket:
		return websocket.NewLauncher(
			websocket.WithAddr(cfg.WebSocket.Addr),
			websocket.WithPath(cfg.WebSocket.Path),
			websocket.WithConnectTimeout(cfg.WebSocket.ConnectTimeout),
			websocket.WithLogger(rt.logger),
		), nil
	}
	return nil, fmt.Errorf("unsupported mode %q", cfg.Mode)
}

// Start launches the executor and publishes the state it settled in.
func (rt *Runtime) Start(ctx context.Context) error {
	err := rt.Bridge.Start(ctx)
	rt.Metrics.ObserveState(rt.Bridge.State())
	return err
}

// Close stops the bridge and releases the clients created for it.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.Bridge != nil {
		errs = append(errs, rt.Bridge.Close())
		rt.Metrics.ObserveState(rt.Bridge.State())
	}
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	rt.closers = nil
	return errors.Join(errs...)
}
