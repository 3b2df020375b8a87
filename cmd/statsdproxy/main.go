// Command statsdproxy is a UDP sidecar that reshapes DogStatsD traffic
// between application clients and an upstream collector.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/dogproxy/statsdproxy"
	"github.com/dogproxy/statsdproxy/config"
	"github.com/dogproxy/statsdproxy/internal/adminhttp"
	"github.com/dogproxy/statsdproxy/internal/logging"
	"github.com/dogproxy/statsdproxy/internal/statsreporter"
)

func main() {
	listen := flag.String("listen", "", "UDP address to bind (required), e.g. 0.0.0.0:8125")
	upstream := flag.String("upstream", "", "upstream statsd address (required), e.g. 127.0.0.1:8126")
	configPath := flag.String("config-path", "", "optional YAML pipeline configuration; absent means an identity pipeline")
	adminListen := flag.String("admin-listen", "", "optional address for the health/debug HTTP server; empty disables it")
	logLevel := flag.String("log-level", "info", "\"debug\" selects the development console logger at debug level; any other value selects the production JSON logger at info level")
	flag.Parse()

	if err := run(*listen, *upstream, *configPath, *adminListen, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(listen, upstream, configPath, adminListen, logLevel string) error {
	if listen == "" || upstream == "" {
		return fmt.Errorf("--listen and --upstream are required")
	}

	zlog, err := logging.New(logLevel == "debug")
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer zlog.Sync()

	instanceID := uuid.NewString()
	zlog.Info("starting statsdproxy", "instance_id", instanceID, "listen", listen, "upstream", upstream)

	up, err := statsdproxy.NewUpstream(upstream, zlog)
	if err != nil {
		return fmt.Errorf("connecting to upstream %s: %w", upstream, err)
	}

	var chain statsdproxy.Stage = up
	if configPath == "" {
		zlog.Warn("no config file specified, running an identity pipeline")
	} else {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		chain, err = config.BuildChain(cfg, up, zlog)
		if err != nil {
			return fmt.Errorf("building middleware chain: %w", err)
		}
	}

	events := statsdproxy.NewEventBus()
	server, err := statsdproxy.NewServer(listen, chain, zlog, events)
	if err != nil {
		return fmt.Errorf("binding %s: %w", listen, err)
	}

	reporter, err := statsreporter.New("@every 1m", server, zlog)
	if err != nil {
		return fmt.Errorf("starting stats reporter: %w", err)
	}
	reporter.Start()
	defer reporter.Stop()

	if adminListen != "" {
		admin := adminhttp.New(adminListen, server)
		go func() {
			if err := admin.Run(); err != nil {
				zlog.Warn("admin http server stopped", "error", err)
			}
		}()
		defer admin.Shutdown()
	}

	return server.Run()
}
