package main

import (
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	sampleRate = 44100
	toneFreq   = 440
)

var audioDev sdl.AudioDeviceID

/// InitAudio opens an audio device for the CHIP-8 tone. The machine is
/// still usable without one.
///
func InitAudio() {
	spec := &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  512,
	}

	dev, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		logger.Warn("Audio unavailable", log.Err(err))
		return
	}

	audioDev = dev
	sdl.PauseAudioDevice(audioDev, false)
}

/// PumpAudio keeps a square wave queued while the sound timer is running.
/// It is called once per video frame.
///
func PumpAudio() {
	if audioDev == 0 {
		return
	}

	if !VM.SoundActive() || Paused {
		sdl.ClearQueuedAudio(audioDev)
		return
	}

	// keep roughly two frames of samples queued
	if sdl.GetQueuedAudioSize(audioDev) > sampleRate/30 {
		return
	}

	buf := make([]byte, sampleRate/60)
	for i := range buf {
		if (i*toneFreq*2/sampleRate)%2 == 0 {
			buf[i] = 96
		} else {
			buf[i] = 160
		}
	}

	if err := sdl.QueueAudio(audioDev, buf); err != nil {
		logger.Warn("Queueing audio", log.Err(err))
	}
}
