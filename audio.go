package main

import (
	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	sampleRate = 44100
	toneFreq   = 440
	toneVolume = 32

	/// Samples queued each frame while the tone plays.
	///
	frameSamples = sampleRate / 60
)

var (
	/// Audio device the tone is queued on, 0 when there is no audio.
	///
	AudioDevice sdl.AudioDeviceID

	/// Position within the square wave, carried between frames.
	///
	tonePhase int
)

/// Initialize an audio device for the CHIP-8 virtual machine. Running
/// without audio isn't an error.
///
func InitAudio() {
	spec := &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  512,
	}

	var have sdl.AudioSpec
	var err error

	if AudioDevice, err = sdl.OpenAudioDevice("", false, spec, &have, 0); err != nil {
		Logger.Error("Opening audio device failed", nil, log.Err(err))
		AudioDevice = 0
		return
	}

	// start playing immediately, silence until something is queued
	sdl.PauseAudioDevice(AudioDevice, false)
}

/// CloseAudio releases the audio device.
///
func CloseAudio() {
	if AudioDevice != 0 {
		sdl.CloseAudioDevice(AudioDevice)
	}
}

/// UpdateAudio queues another frame of the tone while the sound timer is
/// active, keeping at most two frames queued.
///
func UpdateAudio() {
	if AudioDevice == 0 {
		return
	}

	var sound bool
	Runner.View(func(vm *chip8.Machine) {
		sound = vm.SoundActive()
	})

	if !sound || sdl.GetQueuedAudioSize(AudioDevice) > 2*frameSamples {
		return
	}

	half := sampleRate / toneFreq / 2
	buf := make([]byte, frameSamples)

	// square wave centered on 128
	for i := range buf {
		if (tonePhase/half)&1 == 0 {
			buf[i] = 128 + toneVolume
		} else {
			buf[i] = 128 - toneVolume
		}

		tonePhase = (tonePhase + 1) % (2 * half)
	}

	if err := sdl.QueueAudio(AudioDevice, buf); err != nil {
		Logger.Error("Queueing audio failed", nil, log.Err(err))
	}
}
