// Package sound decodes alarm sounds and defines the player capability.
// Speaker output lives in the playback subpackage.
package sound

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// ErrUnsupportedFormat indicates a sound file the player cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported sound format")

// Player plays one sound to completion or until ctx is cancelled.
// An empty ref selects the built-in chime.
type Player interface {
	Play(ctx context.Context, ref string) error
}

type decoder func(file *os.File) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decoder{
	".wav": func(file *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(file)
	},
	".mp3": func(file *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return mp3.Decode(file)
	},
	".flac": func(file *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(file)
	},
	".ogg": func(file *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return vorbis.Decode(file)
	},
}

// Extensions lists the file extensions the player can decode.
func Extensions() []string {
	return []string{".wav", ".mp3", ".flac", ".ogg"}
}

// Load opens and decodes a sound file. The caller closes the stream, which
// also closes the file.
func Load(path string) (beep.StreamSeekCloser, beep.Format, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open sound file: %w", err)
	}
	stream, format, err := decode(file)
	if err != nil {
		_ = file.Close()
		return nil, beep.Format{}, fmt.Errorf("decode sound file: %w", err)
	}
	return stream, format, nil
}
