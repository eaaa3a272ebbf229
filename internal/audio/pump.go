package audio

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// Buffer is one decoded output buffer. EndOfStream is set on the final,
// empty buffer once the decoder is exhausted.
type Buffer struct {
	PCM         []int16
	EndOfStream bool
}

type pumpResult struct {
	buf Buffer
	err error
}

// Pump drives a decoder on its own goroutine and hands decoded buffers to a
// single consumer through Dequeue.
type Pump struct {
	out    chan pumpResult
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewPump starts feeding dec in chunks of chunkFrames frames. depth bounds
// the number of decoded buffers queued ahead of the consumer.
// The pump owns dec from here on and closes it when feeding ends.
func NewPump(dec Decoder, chunkFrames, depth int) *Pump {
	if chunkFrames < 1 {
		chunkFrames = 1
	}
	if depth < 1 {
		depth = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pump{
		out:    make(chan pumpResult, depth),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go p.feed(ctx, dec, chunkFrames)
	return p
}

func (p *Pump) feed(ctx context.Context, dec Decoder, chunkFrames int) {
	closed := false
	release := func() {
		if !closed {
			closed = true
			dec.Close()
		}
	}
	defer close(p.done)
	defer release()

	for ctx.Err() == nil {
		pcm, err := dec.ReadChunk(chunkFrames)

		var res pumpResult
		switch {
		case errors.Is(err, io.EOF):
			res.buf = Buffer{PCM: pcm, EndOfStream: true}
		case err != nil:
			res.err = err
		default:
			res.buf = Buffer{PCM: pcm}
		}

		last := res.err != nil || res.buf.EndOfStream
		if last {
			// Release before the consumer sees the final buffer
			release()
		}

		select {
		case p.out <- res:
		case <-ctx.Done():
			return
		}

		if last {
			return
		}
	}
}

// Dequeue waits up to timeout for the next decoded buffer. It returns
// ErrDequeueTimeout when nothing arrived in time, ctx.Err() when ctx is done,
// or the decoder's error.
func (p *Pump) Dequeue(ctx context.Context, timeout time.Duration) (Buffer, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-p.out:
		return res.buf, res.err
	case <-ctx.Done():
		return Buffer{}, ctx.Err()
	case <-timer.C:
		return Buffer{}, ErrDequeueTimeout
	}
}

// Stop tells the feed goroutine to exit and returns without waiting. A read
// blocked inside the decoder completes in the background, after which the
// decoder is closed. Safe to call more than once.
func (p *Pump) Stop() {
	p.once.Do(p.cancel)
}

// Done is closed once the feed goroutine has exited and closed the decoder
func (p *Pump) Done() <-chan struct{} {
	return p.done
}
