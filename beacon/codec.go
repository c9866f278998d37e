package beacon

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxAdvertisementSize is the payload capacity of a legacy BLE
// advertisement frame.
const MaxAdvertisementSize = 31

// tagSize is the length of the token tag prefixed to every frame.
const tagSize = 4

var (
	ErrPayloadTooLarge = fmt.Errorf("message does not fit the advertisement capacity")
	ErrInvalidToken    = fmt.Errorf("proximity token is not a valid uuid")
)

// tokenTag derives the frame tag from a proximity token. The tag is what
// a scanner filters on; it does not need to be secret, only unique enough
// among concurrently active requests, which the token's uniqueness
// guarantees.
func tokenTag(token string) ([]byte, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return id[:tagSize], nil
}

// Encode packs a short text message into a broadcastable frame scoped by
// the proximity token. Pure transformation, no side effects.
func Encode(token, message string) ([]byte, error) {
	tag, err := tokenTag(token)
	if err != nil {
		return nil, err
	}

	if tagSize+len(message) > MaxAdvertisementSize {
		return nil, ErrPayloadTooLarge
	}

	frame := make([]byte, 0, tagSize+len(message))
	frame = append(frame, tag...)
	frame = append(frame, message...)
	return frame, nil
}

// Decode extracts the message from a frame if it belongs to the given
// token and carries valid text. A frame for another token, a truncated
// frame, or a non-UTF-8 payload yields ok=false so the caller can drop it
// and keep scanning.
func Decode(token string, frame []byte) (string, bool) {
	tag, err := tokenTag(token)
	if err != nil {
		return "", false
	}

	if len(frame) < tagSize || len(frame) > MaxAdvertisementSize {
		return "", false
	}

	if !bytes.Equal(frame[:tagSize], tag) {
		return "", false
	}

	payload := frame[tagSize:]
	if !utf8.Valid(payload) {
		return "", false
	}

	return string(payload), true
}
