package beep

import (
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"

	"hotkeyd/log"
)

var (
	rendered  map[Sound][]int16
	soundOnce sync.Once
)

func initSound() {
	rendered = make(map[Sound][]int16, len(tones))
	for s := range tones {
		// The sink expects interleaved stereo.
		rendered[s] = stereo(samples(s))
	}
}

func play(s Sound) {
	soundOnce.Do(initSound)
	go playSamples(rendered[s])
}

func playSamples(buf []int16) {
	if len(buf) == 0 {
		return
	}
	c, err := pulse.NewClient()
	if err != nil {
		log.Warnf("pulse playback: %v", err)
		return
	}
	defer c.Close()

	pos := 0
	reader := pulse.Int16Reader(func(out []int16) (int, error) {
		if pos >= len(buf) {
			return 0, pulse.EndOfData
		}
		n := copy(out, buf[pos:])
		pos += n
		return n, nil
	})
	stream, err := c.NewPlayback(reader,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm), uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		log.Warnf("pulse playback: %v", err)
		return
	}
	stream.Start()
	stream.Drain()
	stream.Stop()
	stream.Close()
}
