package observability

import (
	"context"
	"testing"
	"time"
)

type recordingStudioHooks struct {
	NoopStudioHooks
	generateStarts    int
	generateCompletes int
}

func (h *recordingStudioHooks) OnGenerateStart(ctx context.Context, size int, theme string) {
	h.generateStarts++
}

func (h *recordingStudioHooks) OnGenerateComplete(ctx context.Context, size int, theme string, dots int, d time.Duration, err error) {
	h.generateCompletes++
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *recordingCacheHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.hits++
}

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()

	// No panics from no-op implementations.
	ctx := context.Background()
	Studio().OnGenerateStart(ctx, 7, "classic")
	Studio().OnGenerateComplete(ctx, 7, "classic", 49, time.Second, nil)
	Studio().OnExportStart(ctx, 3)
	Studio().OnExportComplete(ctx, 3, 1024, time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "render")
	Cache().OnCacheMiss(ctx, "render")
	Cache().OnCacheSet(ctx, "render", 100)
	HTTP().OnRequest(ctx, "POST", "evaluator.local", "/evaluate")
	HTTP().OnResponse(ctx, "POST", "evaluator.local", "/evaluate", 200, time.Second)
	HTTP().OnError(ctx, "POST", "evaluator.local", "/evaluate", context.DeadlineExceeded)
}

func TestSetAndResetHooks(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	studio := &recordingStudioHooks{}
	SetStudioHooks(studio)

	ctx := context.Background()
	Studio().OnGenerateStart(ctx, 7, "ocean")
	Studio().OnGenerateComplete(ctx, 7, "ocean", 49, time.Second, nil)

	if studio.generateStarts != 1 || studio.generateCompletes != 1 {
		t.Errorf("recorded starts=%d completes=%d, want 1/1", studio.generateStarts, studio.generateCompletes)
	}

	Reset()
	Studio().OnGenerateStart(ctx, 7, "ocean")
	if studio.generateStarts != 1 {
		t.Error("Reset should detach custom hooks")
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	hooks := &recordingCacheHooks{}
	SetCacheHooks(hooks)
	SetCacheHooks(nil)

	Cache().OnCacheHit(context.Background(), "render")
	if hooks.hits != 1 {
		t.Error("SetCacheHooks(nil) should keep the registered hooks")
	}
}
