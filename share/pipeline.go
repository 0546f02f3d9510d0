// Copyright © 2017 Microsoft <wastore@microsoft.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package share

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// ErrPipelineClosed is what Add yields after the pipeline was closed cleanly.
// A pipeline closed by a fault yields the fault instead.
var ErrPipelineClosed = errors.New("add called on closed pipeline")

type pipelineState uint8

const (
	pipelineOpen pipelineState = iota
	pipelineClosing
	pipelineClosed
)

// pipelineResult is the terminal outcome of one open-close cycle. Reopen
// installs a fresh one, so anything handed out before the reopen keeps
// resolving against the cycle it belongs to.
type pipelineResult struct {
	done chan struct{}
	err  error
}

// BackpressurePipeline manages a set of in-flight operations so that the data
// source feels backpressure when the pipeline is "full". It does not actually
// limit the number of operations in progress: every Add launches its
// operation immediately, and what the gauge controls is only whether the
// ADMISSION resolves now or after enough prior operations complete. That lets
// a producer run a natural "produce until told to wait" loop while the store
// absorbs as many parallel requests as it can.
//
// Any operation failure poisons the pipeline: the state becomes CLOSED,
// queued and future admissions resolve with the fault, and recovery requires
// Reopen (or Flush, which consumes the fault).
type BackpressurePipeline struct {
	mu         sync.Mutex
	capacity   int64
	gauge      int64         // sum of live slot sizes
	unfinished int           // number of launched, not-yet-completed operations
	waiting    []chan error  // admissions blocked on the gauge, FIFO
	state      pipelineState
	result     *pipelineResult
}

// resolvedAdmission is handed out when an Add is admitted immediately: a
// closed channel yields nil to any number of receivers.
var resolvedAdmission = func() <-chan error {
	ch := make(chan error)
	close(ch)
	return ch
}()

func NewBackpressurePipeline(capacity int64) *BackpressurePipeline {
	if capacity <= 0 {
		panic(fmt.Sprintf("non-positive pipeline capacity %d", capacity))
	}
	return &BackpressurePipeline{
		capacity: capacity,
		result:   &pipelineResult{done: make(chan struct{})},
	}
}

// Add records a slot of the given size, launches op, and returns the
// admission channel. The admission resolves nil immediately when the gauge is
// below capacity after adding; otherwise it resolves after enough completions
// bring the gauge back down, or with the terminal fault if the pipeline
// closes first. Add on a pipeline that is already closed does not launch op;
// the admission carries the fault (or ErrPipelineClosed after a clean close).
func (p *BackpressurePipeline) Add(size int64, op func() error) <-chan error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == pipelineClosed {
		ch := make(chan error, 1)
		if p.result.err != nil {
			ch <- p.result.err
		} else {
			ch <- ErrPipelineClosed
		}
		return ch
	}

	p.gauge += size
	p.unfinished++
	go func() {
		p.finished(op(), size)
	}()

	if p.gauge < p.capacity {
		return resolvedAdmission
	}
	ch := make(chan error, 1)
	p.waiting = append(p.waiting, ch)
	return ch
}

// finished is the completion path of every launched operation.
func (p *BackpressurePipeline) finished(opErr error, size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.unfinished--
	p.gauge -= size
	if opErr != nil {
		p.failLocked(opErr)
	}

	if p.state == pipelineClosing && p.unfinished == 0 {
		p.state = pipelineClosed
		close(p.result.done)
	}

	if p.state == pipelineClosed {
		// everyone still queued sees the terminal outcome
		for _, ch := range p.waiting {
			ch <- p.result.err
		}
		p.waiting = nil
	} else if p.gauge < p.capacity {
		for _, ch := range p.waiting {
			ch <- nil
		}
		p.waiting = nil
	}
}

// Fail poisons the pipeline. Idempotent; the first fault wins.
func (p *BackpressurePipeline) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failLocked(err)
}

func (p *BackpressurePipeline) failLocked(err error) {
	if p.state == pipelineClosed {
		return
	}
	p.state = pipelineClosed
	p.result.err = err
	close(p.result.done)
	for _, ch := range p.waiting {
		ch <- err
	}
	p.waiting = nil
}

// Close stops accepting work and returns a channel that resolves with the
// terminal outcome once all in-flight operations have completed (nil on a
// clean drain, the fault otherwise). Closing an already-closed pipeline just
// returns the existing outcome.
func (p *BackpressurePipeline) Close() <-chan error {
	p.mu.Lock()
	result := p.result
	if p.state != pipelineClosed {
		if p.unfinished == 0 {
			p.state = pipelineClosed
			close(result.done)
		} else {
			p.state = pipelineClosing
		}
	}
	p.mu.Unlock()

	out := make(chan error, 1)
	go func() {
		<-result.done
		out <- result.err
	}()
	return out
}

// Flush closes the pipeline, waits for the drain, then reopens it. The
// returned channel resolves with the drain's outcome; a fault is consumed by
// the flush, so the reopened pipeline starts clean.
func (p *BackpressurePipeline) Flush() <-chan error {
	closed := p.Close()
	out := make(chan error, 1)
	go func() {
		err := <-closed
		p.Reopen()
		out <- err
	}()
	return out
}

// Reopen installs a fresh terminal result and returns the pipeline to OPEN.
// Only valid on a closed pipeline.
func (p *BackpressurePipeline) Reopen() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != pipelineClosed {
		panic(fmt.Sprintf("reopen of pipeline in state %d", p.state))
	}
	p.result = &pipelineResult{done: make(chan struct{})}
	p.state = pipelineOpen
}

// Gauge reports the current fullness. Exposed for tests and stats.
func (p *BackpressurePipeline) Gauge() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gauge
}
