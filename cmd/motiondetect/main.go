// Command motiondetect draws boxes around the regions that change between
// consecutive frames of a video, a capture device or a directory of stills.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nvr-ai/go-motion/config"
	"github.com/nvr-ai/go-motion/controller"
	"github.com/nvr-ai/go-motion/logger"
	"github.com/nvr-ai/go-motion/metrics"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/profiler"
)

func main() {
	if err := run(); err != nil {
		logger.Error("main", "%v", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		watch       bool
		videoPath   string
		framesDir   string
		deviceID    int
		strategy    string
		showWindow  bool
		persist     bool
		outputDir   string
		format      string
		logLevel    string
		metricsAddr string
		profile     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	flag.BoolVar(&watch, "watch", false, "Reload detection settings when the config file changes")
	flag.StringVar(&videoPath, "video", "", "Path to a video file (.mp4, .avi, .mov)")
	flag.StringVar(&framesDir, "frames", "", "Directory of numbered still frames")
	flag.IntVar(&deviceID, "device", 0, "Capture device id, used when neither -video nor -frames is set")
	flag.StringVar(&strategy, "strategy", "", "Candidate strategy: components or contours")
	flag.BoolVar(&showWindow, "show-window", true, "Show the annotated frames in a window")
	flag.BoolVar(&persist, "persist", true, "Write annotated frames to the output directory")
	flag.StringVar(&outputDir, "output-dir", "", "Output directory for annotated frames")
	flag.StringVar(&format, "format", "", "Output image format: jpeg or png")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flag.BoolVar(&profile, "profile", false, "Log runtime and stage timing reports")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "video":
			cfg.Input.Video = videoPath
		case "frames":
			cfg.Input.Frames = framesDir
		case "device":
			cfg.Input.Device = deviceID
		case "strategy":
			cfg.Detection.Strategy = motion.Strategy(strategy)
		case "show-window":
			cfg.Display.Window = showWindow
		case "persist":
			cfg.Output.Persist = persist
		case "output-dir":
			cfg.Output.Dir = outputDir
		case "format":
			cfg.Output.Format = format
		case "log-level":
			cfg.Log.Level = logLevel
		case "metrics-addr":
			cfg.Metrics.Address = metricsAddr
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logger.ParseLevel(cfg.Log.Level)
	logger.SetDefault(logger.New(level, os.Stderr, cfg.Log.Color))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer source.Close()

	boxColor, _ := cfg.Output.Color()
	renderer, err := controller.NewRenderer(controller.RendererOptions{
		Color:     boxColor,
		Thickness: cfg.Output.Thickness,
		Window:    cfg.Display.Window,
		Title:     cfg.Display.Title,
		DelayMs:   cfg.Display.DelayMs,
		Persist:   cfg.Output.Persist,
		Dir:       cfg.Output.Dir,
		Format:    cfg.Output.ImageFormat(),
		Overlay:   cfg.Output.Overlay,
	})
	if err != nil {
		return err
	}
	defer renderer.Close()

	m := metrics.New()
	opts := []controller.Option{controller.WithMetrics(m)}

	var prof *profiler.Profiler
	if profile {
		prof = profiler.New(profiler.Options{ReportInterval: 5 * time.Second})
		opts = append(opts, controller.WithProfiler(prof))
	}

	ctrl, err := controller.New(source, renderer, cfg.Detection, opts...)
	if err != nil {
		return err
	}

	if prof != nil {
		prof.AddCollector(ctrl)
		prof.Start(ctx)
		defer prof.Stop()
	}

	if cfg.Metrics.Address != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Address); err != nil {
				logger.Error("metrics", "%v", err)
			}
		}()
		logger.Info("main", "metrics on http://%s/metrics", cfg.Metrics.Address)
	}

	if watch && configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, func(updated config.Config) {
				if err := ctrl.UpdateConfig(updated.Detection); err != nil {
					logger.Warn("main", "rejected detection update: %v", err)
				}
				if level, err := logger.ParseLevel(updated.Log.Level); err == nil {
					logger.Default().SetLevel(level)
				}
			})
			if err != nil {
				logger.Error("config", "%v", err)
			}
		}()
	}

	d := cfg.Detection
	logger.Info("main", "detecting motion from %s: strategy=%s threshold=%d dilation=%d padding=%d iou=%.2f",
		describeInput(cfg.Input), d.Strategy, d.MaskThreshold, d.DilationSize, d.Padding, d.IoUThreshold)

	start := time.Now()
	if err := ctrl.Run(ctx); err != nil {
		return err
	}
	logger.Info("main", "done: %d frames read, %d rendered, %d boxes (%d suppressed) in %v",
		m.FramesRead.Load(), m.FramesRendered.Load(), m.Boxes.Load(), m.Suppressed(),
		time.Since(start).Truncate(time.Millisecond))
	return nil
}

func openSource(cfg config.Config) (controller.Source, error) {
	switch {
	case cfg.Input.Frames != "":
		return controller.OpenDirectory(cfg.Input.Frames, cfg.Preprocess.BlurSize, cfg.Preprocess.ResizeWidth)
	case cfg.Input.Video != "":
		return controller.OpenVideo(cfg.Input.Video, cfg.Preprocess.BlurSize)
	default:
		return controller.OpenDevice(cfg.Input.Device, cfg.Preprocess.BlurSize)
	}
}

func describeInput(in config.InputConfig) string {
	switch {
	case in.Frames != "":
		return "frames " + in.Frames
	case in.Video != "":
		return "video " + in.Video
	default:
		return fmt.Sprintf("device %d", in.Device)
	}
}
