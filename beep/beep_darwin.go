package beep

import (
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"hotkeyd/log"
)

var (
	malgoCtx  *malgo.AllocatedContext
	device    *malgo.Device
	rendered  map[Sound][]byte
	soundOnce sync.Once

	// Read by the device callback.
	current atomic.Pointer[[]byte]
	pos     atomic.Uint32
	playMu  sync.Mutex
)

func initDevice() error {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = 1
	cfg.SampleRate = sampleRate

	var err error
	device, err = malgo.InitDevice(malgoCtx.Context, cfg, malgo.DeviceCallbacks{Data: fill})
	return err
}

func initSound() {
	var err error
	malgoCtx, err = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		log.Warnf("audio context: %v", err)
		return
	}
	rendered = make(map[Sound][]byte, len(tones))
	for s := range tones {
		rendered[s] = littleEndian(samples(s))
	}
	if err := initDevice(); err != nil {
		log.Warnf("audio device: %v", err)
		malgoCtx.Uninit()
		malgoCtx = nil
	}
}

func fill(out, _ []byte, frames uint32) {
	clear(out)
	buf := current.Load()
	if buf == nil {
		return
	}
	p := pos.Load()
	n := min(frames*2, uint32(len(*buf))-p)
	if n == 0 {
		current.Store(nil)
		return
	}
	copy(out[:n], (*buf)[p:p+n])
	pos.Store(p + n)
}

func play(s Sound) {
	soundOnce.Do(initSound)
	if malgoCtx == nil {
		return
	}
	buf := rendered[s]

	playMu.Lock()
	defer playMu.Unlock()
	if device == nil {
		return
	}
	device.Stop()
	pos.Store(0)
	current.Store(&buf)
	if err := device.Start(); err != nil {
		// The device goes stale across sleep/wake; rebuild it once.
		device.Uninit()
		if err := initDevice(); err != nil {
			current.Store(nil)
			return
		}
		if err := device.Start(); err != nil {
			current.Store(nil)
		}
	}
}
