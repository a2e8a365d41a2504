package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnAllocateStart(ctx, 24)
	p.OnAllocateComplete(ctx, 3, time.Second, nil)
	p.OnBedRenderStart(ctx, 0)
	p.OnBedRenderComplete(ctx, 0, 2, time.Second, nil)
	p.OnExportComplete(ctx, "pdf", 1024, time.Second, errors.New("boom"))

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "drawing")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/api/layout/generate")
	h.OnResponse(ctx, "POST", "/api/layout/generate", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestConcurrentBedEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &countingHooks{}
	SetPipelineHooks(h)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(bed int) {
			defer wg.Done()
			Pipeline().OnBedRenderStart(context.Background(), bed)
		}(i)
	}
	wg.Wait()

	if h.n != 10 {
		t.Errorf("got %d bed events, want 10", h.n)
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

type countingHooks struct {
	NoopPipelineHooks
	mu sync.Mutex
	n  int
}

func (c *countingHooks) OnBedRenderStart(context.Context, int) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}
