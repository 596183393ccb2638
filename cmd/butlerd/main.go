package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"time"

	"github.com/golang/glog"

	mqtt "github.com/yry1816186-pixel/ButlerX/pkg/bridge/mqtt"
	"github.com/yry1816186-pixel/ButlerX/pkg/butler"
	fx "github.com/yry1816186-pixel/ButlerX/pkg/framework"
	"github.com/yry1816186-pixel/ButlerX/pkg/link"
)

var (
	configPath string
	flagCfg    = defaultConfig()
)

func init() {
	flag.StringVar(&configPath, "config", "", "TOML config file.")
	flag.StringVar(&flagCfg.Link, "link", flagCfg.Link, "Link URL (serial://, tcp://, tcp-listen://, ws://).")
	flag.DurationVar(&flagCfg.Tick, "tick", flagCfg.Tick, "Tick interval.")
	flag.IntVar(&flagCfg.QueueSize, "queue", flagCfg.QueueSize, "Outbound frame queue size.")
	flag.DurationVar(&flagCfg.Heartbeat, "heartbeat", flagCfg.Heartbeat, "Heartbeat telemetry interval.")
	flag.DurationVar(&flagCfg.SensorInterval, "sensors", flagCfg.SensorInterval, "Sensor telemetry interval.")
	flag.StringVar(&flagCfg.MQTT, "mqtt", flagCfg.MQTT, "MQTT broker URL, empty disables the bridge.")
	flag.StringVar(&flagCfg.DeviceID, "id", flagCfg.DeviceID, "Device ID for bridge topics.")
}

// resolveConfig layers defaults, config file, environment and
// explicitly set flags, in that order.
func resolveConfig() (Config, error) {
	cfg := defaultConfig()
	if configPath != "" {
		if err := loadFile(configPath, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "link":
			cfg.Link = flagCfg.Link
		case "tick":
			cfg.Tick = flagCfg.Tick
		case "queue":
			cfg.QueueSize = flagCfg.QueueSize
		case "heartbeat":
			cfg.Heartbeat = flagCfg.Heartbeat
		case "sensors":
			cfg.SensorInterval = flagCfg.SensorInterval
		case "mqtt":
			cfg.MQTT = flagCfg.MQTT
		case "id":
			cfg.DeviceID = flagCfg.DeviceID
		}
	})
	return cfg, nil
}

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg, err := resolveConfig()
	if err != nil {
		glog.Exit(err)
	}

	conn, err := link.Open(cfg.Link)
	if err != nil {
		glog.Exit(err)
	}
	defer conn.Close()

	core, err := butler.New(butler.Options{
		Link:              conn,
		QueueSize:         cfg.QueueSize,
		HeartbeatInterval: cfg.Heartbeat,
		SensorInterval:    cfg.SensorInterval,
	})
	if err != nil {
		glog.Exit(err)
	}

	loop := fx.NewLoop()
	loop.Interval = cfg.Tick
	core.AddToLoop(loop)
	loop.At(fx.StageSense, butler.NewPump(conn, core.Transport))

	if cfg.MQTT != "" {
		queue, err := mqtt.NewQueueFromURL(cfg.MQTT)
		if err != nil {
			glog.Exit(err)
		}
		defer queue.Close()
		bridge := mqtt.NewBridge(queue, core.Transport, cfg.DeviceID)
		core.Transport.Observer = bridge
		bridge.Start()
		loop.At(fx.StageSense, bridge)
		token := queue.Connect()
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			glog.Exit(token.Error())
		}
		glog.Infof("bridge up as %q", bridge.ID())
	}

	core.Start()
	glog.Infof("butlerd serving %s", cfg.Link)
	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedRun("loop", loop))
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}
