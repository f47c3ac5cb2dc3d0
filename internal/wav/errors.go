package wav

import "fmt"

// ValidationError identifies which structural check a WAV file failed.
type ValidationError int

const (
	ErrMissingChunk  ValidationError = 1
	ErrNotWave       ValidationError = 2
	ErrBitsPerSample ValidationError = 3
	ErrChannels      ValidationError = 4
	ErrBlockSize     ValidationError = 5
	ErrBytesPerSec   ValidationError = 6
	ErrDataOverrun   ValidationError = 7
)

func (ve ValidationError) Error() string {
	return fmt.Sprintf("wav: %v", ve.name())
}

func (ve ValidationError) name() string {
	switch ve {
	case ErrMissingChunk:
		return "required chunk RIFF, fmt or data not found"
	case ErrNotWave:
		return "RIFF file ID is not WAVE"
	case ErrBitsPerSample:
		return "bits per sample is not 8 or 16"
	case ErrChannels:
		return "channel count is not 1 or 2"
	case ErrBlockSize:
		return "block size does not match bits per sample and channels"
	case ErrBytesPerSec:
		return "bytes per second does not match sample rate and block size"
	case ErrDataOverrun:
		return "data chunk extends past end of file"
	default:
		return fmt.Sprintf("unknown validation error: %v", int(ve))
	}
}
