package illuminate

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
)

// FakeClient is a deterministic Client for tests. Responses can be scripted
// per prompt substring; anything unscripted gets a canned completion.
type FakeClient struct {
	mu        sync.Mutex
	responses map[string]string
	failWith  error
	calls     []Call
}

func NewFakeClient() *FakeClient {
	return &FakeClient{responses: make(map[string]string)}
}

// Respond registers a canned reply for any prompt containing substr.
func (f *FakeClient) Respond(substr, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[substr] = text
}

// FailWith makes every subsequent call return err.
func (f *FakeClient) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

// Calls returns a copy of every call seen so far.
func (f *FakeClient) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeClient) Complete(ctx context.Context, call Call) (*Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.calls = append(f.calls, call)
	if f.failWith != nil {
		return nil, f.failWith
	}
	for substr, text := range f.responses {
		if substr != "" && bytes.Contains([]byte(call.Prompt), []byte(substr)) {
			return &Completion{Text: text, Cost: 0.001}, nil
		}
	}
	return &Completion{Text: fmt.Sprintf("canned completion %d", len(f.calls)), Cost: 0.001}, nil
}

func (f *FakeClient) GenerateImage(ctx context.Context, model, prompt string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.failWith != nil {
		return nil, f.failWith
	}

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
