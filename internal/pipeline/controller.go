// Package pipeline owns the streaming segmentation-and-dispatch loop: an
// unbounded ingestion queue, one serial worker, and the
// buffer → separate → transcribe → filter → emit chain.
package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/voxproc/voxd/internal/audio"
	"github.com/voxproc/voxd/internal/protocol"
	"github.com/voxproc/voxd/internal/separation"
	"github.com/voxproc/voxd/internal/transcription"
	"github.com/voxproc/voxd/pkg/logger"
)

// ModelLoader constructs the external model adapters during initialization.
type ModelLoader interface {
	LoadSeparator(ctx context.Context, opts Options) (*separation.Adapter, error)
	LoadTranscriber(ctx context.Context, opts Options) (transcription.Model, error)
}

// Config carries the pipeline tunables that are not part of the per-init
// options.
type Config struct {
	// PollInterval bounds how long the idle worker sleeps between queue
	// checks, so shutdown is observed promptly.
	PollInterval time.Duration
	// DedupWindow is the repeated-word suppression interval.
	DedupWindow time.Duration
}

// DefaultPollInterval is the worker's idle queue poll bound.
const DefaultPollInterval = 200 * time.Millisecond

// Controller owns the pipeline lifecycle and all mutable pipeline state.
// Two actors touch it: the control path (Initialize/Enable/Disable/
// HandleAudio/Shutdown, driven by inbound messages) and one background
// worker. The pending buffer and dedup state are mutated only under mu;
// the slow model calls run outside it.
type Controller struct {
	loader  ModelLoader
	emitter Emitter
	logger  *logger.Logger

	pollInterval time.Duration
	now          func() time.Time

	mu        sync.Mutex
	state     State
	queue     []audio.Chunk
	segmenter *audio.Segmenter
	options   Options

	separator   *separation.Adapter
	transcriber *transcription.Adapter
	dedup       *transcription.Deduper

	wake chan struct{}
	quit chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewController creates a controller in the Uninitialized state. Start must
// be called before it processes anything.
func NewController(loader ModelLoader, emitter Emitter, cfg Config, log *logger.Logger) *Controller {
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Controller{
		loader:       loader,
		emitter:      emitter,
		logger:       log.Named("pipeline"),
		pollInterval: poll,
		now:          time.Now,
		state:        StateUninitialized,
		// Dedup state lives for the controller's whole lifetime: it is
		// intentionally not reset on disable/enable so a word straddling
		// a pause is not emitted twice.
		dedup: transcription.NewDeduper(cfg.DedupWindow),
		wake:  make(chan struct{}, 1),
		quit:  make(chan struct{}),
	}
}

// Start launches the background worker.
func (c *Controller) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.processLoop()
	}()
}

// Stop signals the worker and waits for it to finish its current
// iteration. An in-flight segment completes; it is not interrupted.
func (c *Controller) Stop() {
	c.Shutdown()
	c.wg.Wait()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Initialize loads both models and, on success, moves to Ready. Loading
// failures are reported as protocol errors and leave the controller short
// of Ready; the process keeps running.
func (c *Controller) Initialize(ctx context.Context, opts Options) {
	if err := opts.Validate(); err != nil {
		c.emitter.EmitError(err.Error())
		return
	}

	c.mu.Lock()
	if c.state == StateShuttingDown {
		c.mu.Unlock()
		return
	}
	c.state = StateLoadingModels
	c.options = opts
	c.segmenter = nil
	c.mu.Unlock()

	c.logger.Info("Loading models",
		logger.String("model", opts.Model),
		logger.String("demucs_model", opts.DemucsModel),
		logger.Float64("segment_seconds", opts.SegmentSeconds),
		logger.Float64("step_seconds", opts.StepSeconds),
	)

	c.emitter.EmitStatus(protocol.StatusLoadingDemucs, 10)
	separator, err := c.loader.LoadSeparator(ctx, opts)
	if err != nil {
		c.failInit("separation model unavailable: " + err.Error())
		return
	}

	c.emitter.EmitStatus(protocol.StatusLoadingWhisper, 60)
	model, err := c.loader.LoadTranscriber(ctx, opts)
	if err != nil {
		c.failInit("speech model unavailable: " + err.Error())
		return
	}

	c.mu.Lock()
	c.separator = separator
	c.transcriber = transcription.NewAdapter(model, opts.Language, c.logger)
	c.segmenter = audio.NewSegmenter(opts.SegmentSeconds, opts.StepSeconds)
	c.state = StateReady
	c.mu.Unlock()

	c.emitter.EmitStatus(protocol.StatusReady, 100)
	c.emitter.EmitReady()
	c.logger.Info("Pipeline ready")
}

func (c *Controller) failInit(message string) {
	c.mu.Lock()
	if c.state == StateLoadingModels {
		c.state = StateUninitialized
	}
	c.mu.Unlock()
	c.logger.Error("Model loading failed", logger.String("reason", message))
	c.emitter.EmitError(message)
}

// Enable starts accepting audio. A no-op unless the controller is Ready.
func (c *Controller) Enable() {
	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return
	}
	c.state = StateEnabled
	c.segmenter.Reset()
	c.mu.Unlock()
	c.emitter.EmitStatus(protocol.StatusEnabled, 0)
}

// Disable stops accepting audio and discards the pending buffer. The
// disabled status is acknowledged from any state; the peer treats disable
// as idempotent. Dedup state survives, see NewController.
func (c *Controller) Disable() {
	c.mu.Lock()
	if c.state == StateEnabled {
		c.state = StateReady
	}
	if c.segmenter != nil {
		c.segmenter.Reset()
	}
	c.mu.Unlock()
	c.emitter.EmitStatus(protocol.StatusDisabled, 0)
}

// HandleAudio enqueues a chunk for the worker. Chunks arriving in any state
// but Enabled are silently dropped; the call never blocks on inference.
func (c *Controller) HandleAudio(chunk audio.Chunk) {
	c.mu.Lock()
	if c.state != StateEnabled {
		c.mu.Unlock()
		return
	}
	// Unbounded on purpose: if inference lags behind real time the queue
	// grows. Bounding it would silently change delivery semantics.
	c.queue = append(c.queue, chunk)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Shutdown signals the worker to stop after its current iteration.
func (c *Controller) Shutdown() {
	c.once.Do(func() {
		c.mu.Lock()
		c.state = StateShuttingDown
		c.mu.Unlock()
		close(c.quit)
	})
}

// QueueDepth returns the number of chunks awaiting processing.
func (c *Controller) QueueDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// processLoop is the single consumer: one chunk per iteration, strictly in
// arrival order, with a bounded idle wait so shutdown is observed promptly.
func (c *Controller) processLoop() {
	ctx := context.Background()
	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()

	for {
		select {
		case <-c.quit:
			return
		default:
		}

		chunk, ok := c.dequeue()
		if !ok {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(c.pollInterval)
			select {
			case <-c.quit:
				return
			case <-c.wake:
			case <-timer.C:
			}
			continue
		}

		segments := c.appendAndCut(chunk)
		for _, segment := range segments {
			c.processSegment(ctx, segment)
		}
	}
}

func (c *Controller) dequeue() (audio.Chunk, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return audio.Chunk{}, false
	}
	chunk := c.queue[0]
	c.queue = c.queue[1:]
	return chunk, true
}

// appendAndCut folds one chunk into the pending buffer and cuts any full
// windows. Returns nil when the controller is no longer Enabled; a chunk
// dequeued across a disable is discarded.
func (c *Controller) appendAndCut(chunk audio.Chunk) []audio.Segment {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEnabled || c.segmenter == nil {
		return nil
	}
	c.segmenter.Append(chunk)
	return c.segmenter.Cut()
}

// processSegment runs one full window through separation, transcription,
// and filtering. Any model error is reported and swallowed; processing
// continues with the next segment.
func (c *Controller) processSegment(ctx context.Context, segment audio.Segment) {
	c.mu.Lock()
	separator := c.separator
	transcriber := c.transcriber
	c.mu.Unlock()
	if separator == nil || transcriber == nil {
		return
	}

	vocals, nativeRate, err := separator.Separate(ctx, segment.Samples, segment.SampleRate)
	if err != nil {
		c.logger.Warn("Separation failed", logger.Error(err))
		c.emitter.EmitError(err.Error())
		return
	}
	if len(vocals) == 0 {
		// No vocal stem in this window. Not an error.
		return
	}

	results, err := transcriber.Transcribe(ctx, vocals, nativeRate)
	if err != nil {
		c.logger.Warn("Transcription failed", logger.Error(err))
		c.emitter.EmitError(err.Error())
		return
	}

	for _, result := range results {
		c.emitResult(result)
	}
}

// emitResult filters one raw model result down to qualifying words and
// emits them, plus the joined transcript when anything survives.
func (c *Controller) emitResult(result transcription.Result) {
	nowMs := c.now().UnixMilli()
	var words []transcription.WordEvent

	for _, hyp := range result.Words {
		cleaned := transcription.Clean(hyp.Text)
		if cleaned == "" || hyp.Probability < transcription.MinConfidence {
			continue
		}
		if transcription.IsNoise(cleaned) {
			continue
		}
		if c.dedup.IsDuplicate(cleaned) {
			continue
		}
		event := transcription.WordEvent{
			Word:       cleaned,
			Timestamp:  nowMs,
			Confidence: hyp.Probability,
		}
		words = append(words, event)
		c.emitter.EmitWord(event)
	}

	if len(words) == 0 {
		return
	}
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Word
	}
	text := strings.Join(parts, " ")
	if transcription.IsNoise(text) {
		return
	}
	c.emitter.EmitTranscript(transcription.TranscriptEvent{
		Text:      text,
		Words:     words,
		Timestamp: nowMs,
	})
}
