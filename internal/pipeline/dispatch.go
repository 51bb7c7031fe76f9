package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/caselaw/casestrainer/internal/common"
	"github.com/caselaw/casestrainer/internal/docfetch"
)

// Request is the decoded form of the three POST /analyze input shapes
// (spec §6.1): exactly one of Text, (FileName/FileData/MIMEType), or
// URL must be set.
type Request struct {
	Text      string
	FileName  string
	FileData  []byte
	MIMEType  string
	URL       string
	ForceMode string // "sync", "async", or ""
}

// Mode is the dispatcher's routing decision (spec §4.1).
type Mode string

const (
	ModeImmediate Mode = "immediate"
	ModeQueued    Mode = "queued"
)

// Decision is the dispatcher's output: either run inline now (Mode ==
// ModeImmediate, Input populated for the caller to hand to Run) or
// enqueue (Mode == ModeQueued, Input populated for the caller to embed
// in a Job).
type Decision struct {
	Mode  Mode
	Input citation.JobInput
}

// Dispatch decodes req via the document extractor, measures the
// cleaned text, and decides whether this request runs inline or is
// queued (spec §4.1). It never enqueues anything itself — the caller
// (the HTTP handler) owns that decision's execution.
func Dispatch(ctx context.Context, req Request, cfg *common.Config) (Decision, error) {
	input, cleanedText, err := decode(ctx, req, cfg)
	if err != nil {
		return Decision{}, err
	}

	forceMode := req.ForceMode
	if forceMode == "" {
		forceMode = cfg.Pipeline.ForceMode
	}

	mode := ModeImmediate
	if forceMode == "async" {
		mode = ModeQueued
	} else if forceMode != "sync" && len(cleanedText) >= cfg.Pipeline.SyncThresholdBytes {
		mode = ModeQueued
	}

	return Decision{Mode: mode, Input: input}, nil
}

// decode resolves one of the three input shapes into a JobInput ready
// to hand to the pipeline (or to persist in a queued Job), plus the
// cleaned text used for the size decision. File/URL payloads keep
// their raw bytes in the JobInput so a worker can re-run extraction
// identically to the inline path.
func decode(ctx context.Context, req Request, cfg *common.Config) (citation.JobInput, string, error) {
	switch {
	case req.Text != "":
		return citation.JobInput{Kind: "text", Text: req.Text}, req.Text, nil

	case len(req.FileData) > 0:
		text, err := docfetch.Extract(req.FileData, req.MIMEType, docfetchOptions(cfg))
		if err != nil {
			return citation.JobInput{}, "", classifyDecodeError(err)
		}
		return citation.JobInput{
			Kind:     "file",
			FileName: req.FileName,
			FileData: req.FileData,
			MIMEType: req.MIMEType,
		}, text, nil

	case req.URL != "":
		body, mime, err := docfetch.FetchURL(ctx, req.URL, cfg.PerCallTimeout())
		if err != nil {
			return citation.JobInput{}, "", newError(CodeFetchError, "failed to fetch URL", err)
		}
		text, err := docfetch.Extract(body, mime, docfetchOptions(cfg))
		if err != nil {
			return citation.JobInput{}, "", classifyDecodeError(err)
		}
		return citation.JobInput{Kind: "url", URL: req.URL, FileData: body, MIMEType: mime}, text, nil

	default:
		return citation.JobInput{}, "", newError(CodeInputError, "request must supply exactly one of text, file, or url", nil)
	}
}

func docfetchOptions(cfg *common.Config) docfetch.Options {
	return docfetch.Options{ConvertFootnotes: cfg.Pipeline.ConvertFootnotes}
}

// classifyDecodeError maps docfetch's sentinel errors onto the
// dispatcher's typed error kinds (spec §7).
func classifyDecodeError(err error) error {
	switch {
	case errors.Is(err, docfetch.ErrUnsupportedFormat):
		return newError(CodeUnsupportedFormat, "unsupported document format", err)
	case errors.Is(err, docfetch.ErrEmptyText):
		return newError(CodeInputError, "document contained no extractable text", err)
	default:
		return newError(CodeExtractionError, fmt.Sprintf("failed to extract document text: %v", err), err)
	}
}

// DecodeInput re-runs decode for a Job pulled off the queue: a worker
// has FileData/URL bytes already resolved by the dispatcher and just
// needs the cleaned text back.
func DecodeInput(ctx context.Context, input citation.JobInput, cfg *common.Config) (string, error) {
	switch input.Kind {
	case "text":
		return input.Text, nil
	case "file":
		text, err := docfetch.Extract(input.FileData, input.MIMEType, docfetchOptions(cfg))
		if err != nil {
			return "", classifyDecodeError(err)
		}
		return text, nil
	case "url":
		text, err := docfetch.Extract(input.FileData, input.MIMEType, docfetchOptions(cfg))
		if err != nil {
			return "", classifyDecodeError(err)
		}
		return text, nil
	default:
		return "", newError(CodeInputError, "unknown job input kind", nil)
	}
}
