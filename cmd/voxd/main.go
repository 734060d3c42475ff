// voxd is a long-running sidecar: it reads line-delimited JSON control and
// audio messages on stdin, isolates vocals from the audio, transcribes
// them, and streams word and transcript events back on stdout. Logs go to
// stderr.
package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/voxproc/voxd/internal/api"
	"github.com/voxproc/voxd/internal/audio"
	"github.com/voxproc/voxd/internal/config"
	"github.com/voxproc/voxd/internal/pipeline"
	"github.com/voxproc/voxd/internal/protocol"
	"github.com/voxproc/voxd/internal/storage/sqlite"
	"github.com/voxproc/voxd/internal/websocket"
	"github.com/voxproc/voxd/pkg/logger"
)

// maxLineBytes bounds one protocol line. Audio messages carry base64
// sample payloads, so lines get large.
const maxLineBytes = 16 * 1024 * 1024

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "voxd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	writer := protocol.NewWriter(os.Stdout, log)
	emitters := pipeline.MultiEmitter{writer}

	var wsServer *websocket.Server
	if cfg.Server.Enabled {
		wsServer = websocket.NewServer(log)
		emitters = append(emitters, websocket.NewEventEmitter(wsServer))
	}

	var storage *sqlite.TranscriptStorage
	if cfg.Storage.Enabled {
		db, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		storage, err = sqlite.NewTranscriptStorage(db, log)
		if err != nil {
			return err
		}
		emitters = append(emitters, sqlite.NewStoreEmitter(storage, log))
	}

	controller := pipeline.NewController(
		newModelLoader(cfg, log),
		emitters,
		pipeline.Config{
			PollInterval: time.Duration(cfg.Pipeline.PollIntervalMs) * time.Millisecond,
			DedupWindow:  time.Duration(cfg.Pipeline.DedupWindowMs) * time.Millisecond,
		},
		log,
	)
	controller.Start()

	var httpServer *http.Server
	if cfg.Server.Enabled {
		router := api.NewRouter(controller, storage, wsServer, &cfg.Server, log)
		httpServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router.Routes(),
		}
		go func() {
			log.Info("Observer API listening", logger.String("addr", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Observer API failed", logger.Error(err))
			}
		}()
	}

	log.Info("voxd started, reading protocol from stdin")
	readLoop(os.Stdin, controller, writer, log)

	// Drain: the worker finishes its current segment, then exits.
	controller.Stop()

	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctx)
	}
	if wsServer != nil {
		wsServer.Close()
	}
	log.Info("voxd stopped")
	return nil
}

// readLoop dispatches inbound protocol messages until a shutdown message
// or EOF. Malformed JSON is answered with an error message; audio messages
// with missing or invalid fields are dropped silently. Neither stops the
// loop.
func readLoop(r *os.File, controller *pipeline.Controller, writer *protocol.Writer, log *logger.Logger) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		msg, err := protocol.ParseLine(line)
		if err != nil {
			writer.EmitError("Invalid JSON")
			continue
		}

		switch msg.Type {
		case protocol.TypeInit:
			controller.Initialize(context.Background(), pipeline.Options{
				Model:          msg.Model,
				Language:       msg.Language,
				DemucsModel:    msg.DemucsModel,
				SegmentSeconds: msg.SegmentSeconds,
				StepSeconds:    msg.StepSeconds,
			})
		case protocol.TypeEnable:
			controller.Enable()
		case protocol.TypeDisable:
			controller.Disable()
		case protocol.TypeAudio:
			samples, rate, ok := msg.DecodeAudio()
			if !ok {
				continue
			}
			controller.HandleAudio(audio.Chunk{Samples: samples, SampleRate: rate})
		case protocol.TypeShutdown:
			controller.Shutdown()
			return
		default:
			log.Debug("Ignoring unknown message type", logger.String("type", msg.Type))
		}
	}

	if err := scanner.Err(); err != nil {
		log.Error("Stdin read failed", logger.Error(err))
	}
}
