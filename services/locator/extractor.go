package locator

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Extractor runs the full per-file pipeline: match, resolve context,
// classify, detect, key, collect.
//
// Description:
//
//	Extractor turns one template file into a FileResult. Extraction
//	is a pure function of (content, constant table): no state crosses
//	file boundaries except the immutable constant table, so files can
//	be processed concurrently and reruns on unchanged input produce
//	byte-identical results.
//
// Thread Safety:
//
//	Extractor is safe for concurrent use. Each Extract call builds
//	its own resolver and key generator.
//
// Example:
//
//	ex := NewExtractor(consts)
//	result, err := ex.Extract(ctx, content, "src/login.html")
//	if err != nil {
//	    return fmt.Errorf("extract: %w", err)
//	}
//	for _, rec := range result.Records {
//	    fmt.Printf("%s: %s\n", rec.Key, rec.Selector)
//	}
type Extractor struct {
	matcher *AttributeMatcher
	options ExtractorOptions
}

// ExtractorOptions configures Extractor behavior.
type ExtractorOptions struct {
	// MaxFileSize is the maximum file size in bytes to extract from.
	// Files larger than this return ErrFileTooLarge.
	// Default: 10MB
	MaxFileSize int
}

// DefaultExtractorOptions returns the default options.
func DefaultExtractorOptions() ExtractorOptions {
	return ExtractorOptions{
		MaxFileSize: DefaultMaxFileSize,
	}
}

// ExtractorOption is a functional option for configuring Extractor.
type ExtractorOption func(*ExtractorOptions)

// WithMaxFileSize sets the maximum file size for extraction.
func WithMaxFileSize(size int) ExtractorOption {
	return func(o *ExtractorOptions) {
		if size > 0 {
			o.MaxFileSize = size
		}
	}
}

// NewExtractor creates an Extractor bound to a constant table.
//
// Passing nil is equivalent to passing EmptyConstantTable(); dynamic
// bindings then resolve only when their expression is a string literal.
func NewExtractor(consts *ConstantTable, opts ...ExtractorOption) *Extractor {
	options := DefaultExtractorOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Extractor{
		matcher: NewAttributeMatcher(consts),
		options: options,
	}
}

// Extract runs the pipeline over one template file.
//
// Description:
//
//	Comments are removed (preserving offsets), the attribute matcher
//	finds candidate locators, each match gets element context,
//	classification, dynamic/conditional flags, and a collision-free
//	key. Low-relevance records are dropped unless dynamic or
//	conditional. Fragile high-relevance records collect warnings;
//	custom components collect advisories.
//
// Inputs:
//
//	ctx      - Context for cancellation. Checked before and during extraction.
//	content  - Raw template bytes. Must be valid UTF-8.
//	filePath - Path relative to the scan root, forward slashes (for output).
//
// Outputs:
//
//	*FileResult - Records in source order plus warnings/advisories. Never nil on success.
//	error       - Non-nil only for whole-file failures (canceled, too large, invalid UTF-8).
//
// Thread Safety:
//
//	This method is safe for concurrent use.
func (e *Extractor) Extract(ctx context.Context, content []byte, filePath string) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract canceled before start: %w", err)
	}

	if len(content) > e.options.MaxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), e.options.MaxFileSize)
	}
	if len(content) > WarnFileSize {
		slog.Warn("large template file", "file", filePath, "bytes", len(content))
	}

	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidContent, filePath)
	}

	ctx, span := startExtractSpan(ctx, filePath, len(content))
	defer span.End()
	start := time.Now()

	text := stripComments(string(content))
	matches := e.matcher.Match(text)
	resolver := NewContextResolver(text)
	keys := NewKeyGenerator()

	result := &FileResult{
		FilePath: filePath,
		Records:  make([]*LocatorRecord, 0, len(matches)),
	}

	for _, match := range matches {
		if ctx.Err() != nil {
			recordExtractMetrics(ctx, time.Since(start), len(result.Records), result.Dropped, false)
			return nil, fmt.Errorf("extract canceled: %w", ctx.Err())
		}

		ec := resolver.Resolve(match.Offset)
		line := lineAt(text, match.Offset)

		if isCustomComponent(ec.Element) {
			result.Advisories = append(result.Advisories,
				fmt.Sprintf("%s:%d: custom component <%s>; locators extracted from markup only", filePath, line, ec.Element))
		}

		robustness, relevance := Classify(ec.Element, ec.Attributes)
		isDynamic, isConditional, directives := Detect(ec)
		isDynamic = isDynamic || match.Dynamic

		if relevance == RelevanceLow && !isDynamic && !isConditional {
			result.Dropped++
			continue
		}

		record := &LocatorRecord{
			Key:           keys.Generate(match.Value, match.Type, isDynamic, isConditional),
			Selector:      match.Selector,
			Type:          match.Type,
			Element:       ec.Element,
			RawValue:      match.Value,
			Robustness:    robustness,
			Relevance:     relevance,
			IsDynamic:     isDynamic,
			IsConditional: isConditional,
			Directives:    directives,
			Line:          line,
		}

		if robustness == Fragile && relevance == RelevanceHigh {
			record.Warning = fmt.Sprintf("add data-testid to <%s> (matched by %s %q)",
				ec.Element, match.Type, match.Value)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s:%d: %s", filePath, line, record.Warning))
		}

		result.Records = append(result.Records, record)
	}

	recordExtractMetrics(ctx, time.Since(start), len(result.Records), result.Dropped, true)
	setExtractSpanResult(span, len(result.Records), len(result.Warnings))

	return result, nil
}

// htmlCommentPattern matches markup comments, including multi-line ones.
var htmlCommentPattern = regexp.MustCompile(`<!--[\s\S]*?-->`)

// stripComments blanks out markup comments while preserving byte
// offsets and line numbers: every comment character except newlines
// becomes a space.
func stripComments(text string) string {
	return htmlCommentPattern.ReplaceAllStringFunc(text, func(comment string) string {
		b := []byte(comment)
		for i := range b {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
		return string(b)
	})
}

// isCustomComponent reports tags that are application components
// rather than plain markup elements: capitalized (LoginForm) or
// hyphenated (user-card) names.
func isCustomComponent(tag string) bool {
	if tag == "" || tag == "element" {
		return false
	}
	if strings.Contains(tag, "-") {
		return true
	}
	first, _ := utf8.DecodeRuneInString(tag)
	return unicode.IsUpper(first)
}
