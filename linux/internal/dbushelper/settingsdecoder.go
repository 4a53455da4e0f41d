//go:build linux

package dbushelper

import (
	"sync"

	"github.com/ugorji/go/codec"
)

// resolver holds an encoder and decoder.
type resolver struct {
	check bool

	encoder *codec.Encoder
	decoder *codec.Decoder
	data    []byte

	sync.Mutex
}

var settingsDecoder resolver

// DecodeSection decodes a NetworkManager connection settings section
// into the provided data, using its "codec" struct tags.
func DecodeSection(section map[string]any, data any) error {
	settingsDecoder.Lock()
	defer settingsDecoder.Unlock()

	if !settingsDecoder.check {
		handle := codec.JsonHandle{}
		handle.TypeInfos = codec.NewTypeInfos([]string{"codec"})

		settingsDecoder.encoder = codec.NewEncoderBytes(&settingsDecoder.data, &handle)
		settingsDecoder.decoder = codec.NewDecoderBytes(settingsDecoder.data, &handle)

		settingsDecoder.check = true
	}

	if section == nil {
		section = map[string]any{}
	}

	settingsDecoder.encoder.ResetBytes(&settingsDecoder.data)

	if err := settingsDecoder.encoder.Encode(section); err != nil {
		return err
	}

	settingsDecoder.decoder.ResetBytes(settingsDecoder.data)

	return settingsDecoder.decoder.Decode(data)
}
