//go:build headless

package audio

import (
	"io"
	"sync"
	"time"
)

const headlessChunkFrames = 256

// Player drains a Stream at real-time pace without an audio device.
type Player struct {
	sampleRate int
	started    bool
	stop       chan struct{}
	done       chan struct{}
	mutex      sync.Mutex
}

// NewPlayer creates a headless player. bufferSize is ignored.
func NewPlayer(sampleRate int, bufferSize time.Duration) (*Player, error) {
	return &Player{sampleRate: sampleRate}, nil
}

// Start begins pulling from r on a background goroutine.
func (p *Player) Start(r io.Reader) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.started {
		return
	}
	p.started = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	period := time.Duration(headlessChunkFrames) * time.Second / time.Duration(p.sampleRate)
	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)
		buf := make([]byte, headlessChunkFrames*BytesPerFrame)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if _, err := r.Read(buf); err != nil {
					return
				}
			}
		}
	}(p.stop, p.done)
}

// Close stops the background reader.
func (p *Player) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started {
		return nil
	}
	close(p.stop)
	<-p.done
	p.started = false
	return nil
}

// IsStarted reports whether Start has been called since the last Close.
func (p *Player) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}
