package markdown

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

const (
	textCodeUnknownEngine = "MARKDOWN_UNKNOWN_ENGINE"
	textCodeRenderAborted = "MARKDOWN_RENDER_ABORTED"
)

// Config selects and tunes the render engine.
type Config struct {
	Engine   string
	Goldmark GoldmarkOptions
}

// RenderObserver receives render timings. metrics.Recorder satisfies it.
type RenderObserver interface {
	ObserveRender(engine string, duration time.Duration)
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the module logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver records render durations.
func WithObserver(observer RenderObserver) ServiceOption {
	return func(s *Service) {
		s.observer = observer
	}
}

// WithRenderer overrides the engine chosen from Config.
func WithRenderer(engine string, renderer interfaces.MarkdownRenderer) ServiceOption {
	return func(s *Service) {
		if renderer != nil {
			s.engine = engine
			s.renderer = renderer
		}
	}
}

// Service implements interfaces.MarkdownService over a single engine.
type Service struct {
	engine   string
	renderer interfaces.MarkdownRenderer
	logger   interfaces.Logger
	observer RenderObserver
}

var _ interfaces.MarkdownService = (*Service)(nil)

// NewService resolves the configured engine. An empty engine selects the
// builtin renderer; unknown names are rejected.
func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	s := &Service{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		engine, renderer, err := resolveEngine(cfg)
		if err != nil {
			return nil, err
		}
		s.engine, s.renderer = engine, renderer
	}
	s.logger = logging.WithEngine(s.logger, s.engine)
	return s, nil
}

func resolveEngine(cfg Config) (string, interfaces.MarkdownRenderer, error) {
	switch name := strings.ToLower(strings.TrimSpace(cfg.Engine)); name {
	case "", EngineBuiltin:
		return EngineBuiltin, NewRenderer(), nil
	case EngineGoldmark:
		return EngineGoldmark, NewGoldmarkRenderer(cfg.Goldmark), nil
	default:
		return "", nil, goerrors.New("markdown: unknown render engine "+cfg.Engine, goerrors.CategoryBadInput).
			WithTextCode(textCodeUnknownEngine)
	}
}

// Engine reports the active engine name.
func (s *Service) Engine() string {
	return s.engine
}

// Renderer exposes the underlying engine.
func (s *Service) Renderer() interfaces.MarkdownRenderer {
	return s.renderer
}

// Render produces the HTML body and table of contents for markdown. The only
// failure mode is a cancelled context.
func (s *Service) Render(ctx context.Context, markdown string) (*interfaces.RenderedDocument, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "markdown render aborted").
			WithTextCode(textCodeRenderAborted)
	}

	started := time.Now()
	doc := &interfaces.RenderedDocument{
		HTML:     s.renderer.Render(markdown),
		Headings: s.renderer.Headings(markdown),
	}
	elapsed := time.Since(started)

	if s.observer != nil {
		s.observer.ObserveRender(s.engine, elapsed)
	}
	s.logger.WithContext(ctx).Debug("markdown.render.complete",
		"bytes", len(markdown),
		"headings", len(doc.Headings),
		"duration", elapsed,
	)
	return doc, nil
}
