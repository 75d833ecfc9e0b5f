package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"aubade/internal/adapters/mqttserver"
	"aubade/internal/aubaded"
	"aubade/internal/blobstore"
	"aubade/internal/modules/alarmclock"
	embeddedmqtt "aubade/internal/modules/embedded_mqtt"
	"aubade/pkg/aub"
)

func main() {
	var (
		configPath string
		broker     string
		topicBase  string
		logLevel   string
		stateDir   string
		dryRun     bool
	)

	defaultConfig, err := aubaded.DefaultConfigPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	flag.StringVar(&configPath, "config", defaultConfig, "config file path")
	flag.StringVar(&broker, "broker", "", "MQTT broker URL override")
	flag.StringVar(&topicBase, "topic-base", "", "topic base override")
	flag.StringVar(&logLevel, "log-level", "", "log level override")
	flag.StringVar(&stateDir, "state-dir", "", "state directory override")
	flag.BoolVar(&dryRun, "dry-run", false, "validate config and exit")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := applyOverrides(&cfg, broker, topicBase, logLevel, stateDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if dryRun {
		return
	}

	logger := aubaded.NewLogger(aubaded.LogConfig{
		Level: cfg.Server.LogLevel,
		File:  cfg.Server.LogFile,
	})
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	embeddedURL := embeddedBrokerURL(cfg)
	skipEmbedded := false
	if cfg.Modules.EmbeddedMQTT.Enabled && cfg.Server.Broker == embeddedURL {
		if err := startEmbeddedBroker(ctx, cfg, logger, cancel); err != nil {
			logger.Error("embedded mqtt failed", zap.Error(err))
			os.Exit(1)
		}
		skipEmbedded = true
	}

	if cfg.Server.Broker == "" {
		logger.Error("broker is required")
		os.Exit(1)
	}
	logger.Info("aubaded starting",
		zap.String("broker", cfg.Server.Broker),
		zap.String("topic_base", cfg.Server.TopicBase),
		zap.String("node_id", cfg.Modules.AlarmClock.NodeID),
		zap.String("state_dir", cfg.Modules.AlarmClock.StateDir),
		zap.String("driver", cfg.Modules.AlarmClock.Driver))

	client, err := mqttserver.NewClient(mqttserver.Options{
		BrokerURL: cfg.Server.Broker,
		ClientID:  fmt.Sprintf("aubaded-%d", time.Now().UnixNano()),
		Username:  cfg.Server.Auth.User,
		Password:  cfg.Server.Auth.Pass,
		TLSCA:     cfg.Server.TLS.CA,
		TLSCert:   cfg.Server.TLS.Cert,
		TLSKey:    cfg.Server.TLS.Key,
		Timeout:   2 * time.Second,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("mqtt connection failed", zap.Error(err))
		os.Exit(1)
	}

	modules, err := buildModules(cfg, client, logger, skipEmbedded)
	if err != nil {
		logger.Error("failed to build modules", zap.Error(err))
		os.Exit(1)
	}

	supervisor := aubaded.Supervisor{Logger: logger}
	if err := supervisor.Run(ctx, modules); err != nil {
		logger.Error("supervisor error", zap.Error(err))
		os.Exit(1)
	}
}

// loadConfig reads the config file. A missing file at the default
// location is not fatal; the daemon runs on defaults.
func loadConfig(path string) (aubaded.Config, error) {
	cfg, err := aubaded.LoadConfig(path)
	if err == nil {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		return defaultStandaloneConfig()
	}
	return aubaded.Config{}, err
}

// defaultStandaloneConfig is a single-machine setup: embedded broker,
// alarm clock with the null driver, state under the user state dir.
func defaultStandaloneConfig() (aubaded.Config, error) {
	stateDir, err := aubaded.DefaultStateDir()
	if err != nil {
		return aubaded.Config{}, err
	}
	var cfg aubaded.Config
	cfg.Modules.EmbeddedMQTT = aubaded.EmbeddedMQTTConfig{Enabled: true, AllowAnonymous: true}
	cfg.Modules.AlarmClock = aubaded.AlarmClockConfig{
		Enabled:  true,
		NodeID:   "clock",
		StateDir: stateDir,
	}
	return cfg, nil
}

func applyOverrides(cfg *aubaded.Config, broker, topicBase, logLevel, stateDir string) error {
	if broker != "" {
		cfg.Server.Broker = broker
	}
	if topicBase != "" {
		cfg.Server.TopicBase = topicBase
	}
	if logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	if stateDir != "" {
		cfg.Modules.AlarmClock.StateDir = stateDir
	}
	if cfg.Server.TopicBase == "" {
		cfg.Server.TopicBase = aub.BaseTopic
	}
	if cfg.Modules.AlarmClock.Enabled && cfg.Modules.AlarmClock.StateDir == "" {
		dir, err := aubaded.DefaultStateDir()
		if err != nil {
			return err
		}
		cfg.Modules.AlarmClock.StateDir = dir
	}
	if cfg.Server.Broker == "" && cfg.Modules.EmbeddedMQTT.Enabled {
		cfg.Server.Broker = embeddedBrokerURL(*cfg)
	}
	return nil
}

func buildModules(cfg aubaded.Config, client *mqttserver.Client, logger *zap.Logger, skipEmbedded bool) ([]aubaded.ModuleRunner, error) {
	modules := []aubaded.ModuleRunner{}

	if cfg.Modules.EmbeddedMQTT.Enabled && !skipEmbedded {
		mod, err := newEmbeddedModule(cfg, logger)
		if err != nil {
			return nil, err
		}
		modules = append(modules, aubaded.ModuleRunner{Name: "embedded_mqtt", Run: mod.Run})
	}

	if cfg.Modules.AlarmClock.Enabled {
		ac := cfg.Modules.AlarmClock
		mod, err := alarmclock.NewModule(logger.With(zap.String("module", "alarmclock")), client, alarmclock.Config{
			NodeID:    ac.NodeID,
			TopicBase: cfg.Server.TopicBase,
			Name:      ac.Name,
			StateDir:  ac.StateDir,
			Blob: blobstore.Config{
				Backend:   ac.Blob.Backend,
				Path:      blobPath(ac),
				Endpoint:  ac.Blob.Endpoint,
				AccessKey: ac.Blob.AccessKey,
				SecretKey: ac.Blob.SecretKey,
				Bucket:    ac.Blob.Bucket,
				UseSSL:    ac.Blob.UseSSL,
				Region:    ac.Blob.Region,
			},
			Driver:             ac.Driver,
			Pipeline:           ac.Pipeline,
			RequireManualStart: ac.RequireManualStart,
			FeedTimeout:        time.Duration(ac.FeedTimeoutMS) * time.Millisecond,
			PublishState:       true,
		})
		if err != nil {
			return nil, err
		}
		modules = append(modules, aubaded.ModuleRunner{Name: "alarmclock", Run: mod.Run})
	}

	return modules, nil
}

func blobPath(ac aubaded.AlarmClockConfig) string {
	if ac.Blob.Path != "" {
		return ac.Blob.Path
	}
	if ac.StateDir != "" {
		return filepath.Join(ac.StateDir, "blobs.db")
	}
	return ""
}

func newEmbeddedModule(cfg aubaded.Config, logger *zap.Logger) (*embeddedmqtt.Module, error) {
	em := cfg.Modules.EmbeddedMQTT
	return embeddedmqtt.NewModule(logger.With(zap.String("module", "embedded_mqtt")), embeddedmqtt.Config{
		Listen:         em.Listen,
		AllowAnonymous: em.AllowAnonymous,
		Username:       em.Username,
		Password:       em.Password,
		TLSCA:          em.TLSCA,
		TLSCert:        em.TLSCert,
		TLSKey:         em.TLSKey,
	})
}

func embeddedBrokerURL(cfg aubaded.Config) string {
	listen := cfg.Modules.EmbeddedMQTT.Listen
	if listen == "" {
		listen = "127.0.0.1:1883"
	}
	em := cfg.Modules.EmbeddedMQTT
	tlsEnabled := em.TLSCert != "" || em.TLSKey != "" || em.TLSCA != ""
	return embeddedmqtt.BrokerURL(listen, tlsEnabled)
}

// startEmbeddedBroker runs the broker ahead of the supervisor so the
// daemon's own MQTT client has something to connect to.
func startEmbeddedBroker(ctx context.Context, cfg aubaded.Config, logger *zap.Logger, cancel context.CancelFunc) error {
	mod, err := newEmbeddedModule(cfg, logger)
	if err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- mod.Run(ctx)
	}()
	go func() {
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("embedded mqtt exited", zap.Error(err))
			cancel()
		}
	}()

	listen := cfg.Modules.EmbeddedMQTT.Listen
	if listen == "" {
		listen = "127.0.0.1:1883"
	}
	return waitForListen(listen, 3*time.Second)
}

func waitForListen(listen string, timeout time.Duration) error {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return err
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	addr := net.JoinHostPort(host, port)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("embedded mqtt not ready at %s", addr)
}
