package slideml

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/slidespace/backend/internal/core/domain"
	"github.com/slidespace/backend/internal/infrastructure/resilience"
)

const (
	opExtractTitles  = "ml.extract_titles"
	opGenerateSlides = "ml.generate_slides"
	opGeneratePPTX   = "ml.generate_pptx"
)

// CallRecorder observes the outcome of every remote call. The prometheus
// registry implements it; a nil recorder disables observation.
type CallRecorder interface {
	RecordMLCall(service, operation string, duration time.Duration, err error)
}

type Options struct {
	ExtractTimeout time.Duration
	SlidesTimeout  time.Duration
	PPTXTimeout    time.Duration
	Executor       *resilience.Executor
	Service        string
	Recorder       CallRecorder
}

// Client talks to the remote slide service. One logical operation maps to one
// HTTP call; a failed call is reported whole and retried only by the user.
type Client struct {
	locator  ServiceLocator
	executor *resilience.Executor
	service  string
	recorder CallRecorder

	extractTimeout time.Duration
	slidesTimeout  time.Duration
	pptxTimeout    time.Duration
}

func New(locator ServiceLocator, opts Options) *Client {
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = 180 * time.Second
	}
	if opts.SlidesTimeout <= 0 {
		opts.SlidesTimeout = 180 * time.Second
	}
	if opts.PPTXTimeout <= 0 {
		opts.PPTXTimeout = 300 * time.Second
	}
	executor := opts.Executor
	if executor == nil {
		executor = resilience.NewExecutor(resilience.MLConfig())
	}
	return &Client{
		locator:        locator,
		executor:       executor,
		service:        opts.Service,
		recorder:       opts.Recorder,
		extractTimeout: opts.ExtractTimeout,
		slidesTimeout:  opts.SlidesTimeout,
		pptxTimeout:    opts.PPTXTimeout,
	}
}

// ExtractTitles submits the stored original and returns the session handle
// plus titles indexed 0..N-1 in response order.
func (c *Client) ExtractTitles(ctx context.Context, filename string, file io.Reader) (*domain.TitleExtraction, error) {
	var response struct {
		DocID  string   `json:"doc_id"`
		Titles []string `json:"titles"`
	}

	err := c.execute(ctx, opExtractTitles, c.extractTimeout, func(callCtx context.Context) error {
		return c.postFile(callCtx, "/process_document", filename, file, &response)
	})
	if err != nil {
		return nil, err
	}

	if response.DocID == "" {
		return nil, domain.WrapError(domain.ErrUpstream, opExtractTitles, fmt.Errorf("response is missing doc_id"))
	}
	if len(response.Titles) == 0 {
		return nil, domain.WrapError(domain.ErrUpstream, opExtractTitles, fmt.Errorf("response holds no titles"))
	}

	titles := make([]domain.TitleEntry, 0, len(response.Titles))
	for i, title := range response.Titles {
		titles = append(titles, domain.TitleEntry{Index: i, Title: title})
	}
	return &domain.TitleExtraction{
		SessionID: response.DocID,
		Titles:    titles,
	}, nil
}

// GenerateSlides requests a deck for the given title indexes. Only indexes
// travel; the remote re-derives the titles from its own session state.
func (c *Client) GenerateSlides(ctx context.Context, sessionID string, titleIndexes []int) ([]domain.Slide, error) {
	if sessionID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, opGenerateSlides, fmt.Errorf("session handle is required"))
	}
	if len(titleIndexes) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, opGenerateSlides, fmt.Errorf("at least one title index is required"))
	}

	request := map[string]any{"titles": titleIndexes}
	var response struct {
		Slides []domain.Slide `json:"slides"`
	}

	err := c.execute(ctx, opGenerateSlides, c.slidesTimeout, func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/slides/"+sessionID, request, &response)
	})
	if err != nil {
		return nil, err
	}

	if response.Slides == nil {
		return nil, domain.WrapError(domain.ErrUpstream, opGenerateSlides, fmt.Errorf("response holds no slides"))
	}
	return response.Slides, nil
}

// GeneratePPTX renders a deck into binary PPTX with the chosen pipeline. The
// default endpoint spelling matches the remote service, typo included.
func (c *Client) GeneratePPTX(ctx context.Context, sessionID string, slides []domain.Slide, variant domain.PPTXVariant) ([]byte, error) {
	if sessionID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, opGeneratePPTX, fmt.Errorf("session handle is required"))
	}
	if len(slides) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, opGeneratePPTX, fmt.Errorf("slides are required"))
	}
	if !variant.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, opGeneratePPTX, fmt.Errorf("unknown variant %q", variant))
	}

	path := "/Defualt_generate_pptx/" + sessionID
	if variant == domain.VariantGA {
		path = "/GA_generate_pptx/" + sessionID
	}

	var data []byte
	err := c.execute(ctx, opGeneratePPTX, c.pptxTimeout, func(callCtx context.Context) error {
		var callErr error
		data, callErr = c.postForBinary(callCtx, path, slides)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrUpstream, opGeneratePPTX, fmt.Errorf("empty pptx response"))
	}
	return data, nil
}

func (c *Client) execute(ctx context.Context, operation string, timeout time.Duration, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := c.executor.Execute(callCtx, operation, fn, classifyMLError)
	if c.recorder != nil {
		c.recorder.RecordMLCall(c.service, operation, time.Since(start), err)
	}
	return wrapMLError(operation, err)
}
