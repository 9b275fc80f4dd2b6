// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks at
// startup to receive events about conversion runs and preview rendering.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetConversionHooks(&myConversionHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Conversion().OnExtractStart(ctx, path)
//	// ... extract the topology ...
//	observability.Conversion().OnExtractComplete(ctx, path, links, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Conversion Hooks
// =============================================================================

// ConversionHooks receives events from the conversion pipeline.
type ConversionHooks interface {
	// Load events: reading and parsing the input file.
	OnLoadStart(ctx context.Context, path string)
	OnLoadComplete(ctx context.Context, path string, bytes int, duration time.Duration, err error)

	// Extract events: diagram to topology.
	OnExtractStart(ctx context.Context, path string)
	OnExtractComplete(ctx context.Context, path string, links int, duration time.Duration, err error)

	// Synthesize events: table to topology.
	OnSynthesizeStart(ctx context.Context, path string)
	OnSynthesizeComplete(ctx context.Context, path string, links int, duration time.Duration, err error)

	// Serialize events: writing output artifacts.
	OnSerializeStart(ctx context.Context, path string)
	OnSerializeComplete(ctx context.Context, path string, bytes int, duration time.Duration, err error)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from preview rendering.
type RenderHooks interface {
	// OnRenderStart records the start of a preview render.
	OnRenderStart(ctx context.Context, format string)

	// OnRenderComplete records a finished preview render.
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopConversionHooks is a no-op implementation of ConversionHooks.
type NoopConversionHooks struct{}

func (NoopConversionHooks) OnLoadStart(context.Context, string) {}
func (NoopConversionHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopConversionHooks) OnExtractStart(context.Context, string) {}
func (NoopConversionHooks) OnExtractComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopConversionHooks) OnSynthesizeStart(context.Context, string) {}
func (NoopConversionHooks) OnSynthesizeComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopConversionHooks) OnSerializeStart(context.Context, string) {}
func (NoopConversionHooks) OnSerializeComplete(context.Context, string, int, time.Duration, error) {
}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string)                          {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	conversionHooks ConversionHooks = NoopConversionHooks{}
	renderHooks     RenderHooks     = NoopRenderHooks{}
	hooksMu         sync.RWMutex
)

// SetConversionHooks registers custom conversion hooks.
// This should be called once at application startup before any conversions.
func SetConversionHooks(h ConversionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		conversionHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any rendering.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// Conversion returns the registered conversion hooks.
func Conversion() ConversionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return conversionHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	conversionHooks = NoopConversionHooks{}
	renderHooks = NoopRenderHooks{}
}
