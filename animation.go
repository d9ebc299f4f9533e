package pngn

import (
	"fmt"
	"time"
)

// DisposeOp is the APNG frame disposal operation.
type DisposeOp uint8

// Frame disposal operations, as per the APNG spec.
const (
	DisposeNone       DisposeOp = 0
	DisposeBackground DisposeOp = 1
	DisposePrevious   DisposeOp = 2
)

// BlendOp is the APNG frame blend operation.
type BlendOp uint8

// Frame blend operations, as per the APNG spec.
const (
	BlendSource BlendOp = 0
	BlendOver   BlendOp = 1
)

// Fixed payload sizes of the animation chunks.
const (
	actlLength = 8
	fctlLength = 26
)

// Animation describes an APNG animation from the acTL and fcTL chunks.
type Animation struct {
	NumFrames int     // Frame count declared by acTL.
	NumPlays  int     // Play count; 0 means loop forever.
	Frames    []Frame // Frames in stream order.
}

// Loops returns the number of plays, or -1 when the animation loops forever.
func (a *Animation) Loops() int {
	if a.NumPlays == 0 {
		return -1
	}

	return a.NumPlays
}

// Frame is one APNG frame. Its compressed data is kept by the decoder and
// reconstructed with Decoder.DecodeFrame.
type Frame struct {
	Width, Height    int           // Frame region size.
	XOffset, YOffset int           // Frame region position on the canvas.
	Delay            time.Duration // Display time, millisecond resolution or finer.
	DisposeOp        DisposeOp
	BlendOp          BlendOp

	data []byte // Concatenated IDAT/fdAT payloads for this frame.
}

// parseACTL decodes the acTL payload.
func parseACTL(payload []byte) (*Animation, error) {
	if len(payload) != actlLength {
		return nil, fmt.Errorf("%w: bad acTL length %d", ErrCorruptImage, len(payload))
	}

	c := &cursor{data: payload}
	numFrames, _ := c.uint32()
	numPlays, _ := c.uint32()

	return &Animation{
		NumFrames: int(numFrames),
		NumPlays:  int(numPlays),
	}, nil
}

// parseFCTL decodes the fcTL payload into a new open frame.
// The 4-byte sequence number is skipped.
func parseFCTL(payload []byte, maxPixels int) (*Frame, error) {
	if len(payload) != fctlLength {
		return nil, fmt.Errorf("%w: bad fcTL length %d", ErrCorruptImage, len(payload))
	}

	c := &cursor{data: payload, pos: 4}
	width, _ := c.uint32()
	height, _ := c.uint32()
	xOffset, _ := c.uint32()
	yOffset, _ := c.uint32()
	delayNum, _ := c.uint16()
	delayDen, _ := c.uint16()
	disposeOp, _ := c.uint8()
	blendOp, _ := c.uint8()

	if int32(width) <= 0 || int32(height) <= 0 || int32(xOffset) < 0 || int32(yOffset) < 0 {
		return nil, fmt.Errorf("%w: bad fcTL region %dx%d+%d+%d", ErrCorruptImage, width, height, xOffset, yOffset)
	}

	if err := checkPixels(int(width), int(height), maxPixels); err != nil {
		return nil, err
	}

	return &Frame{
		Width:     int(width),
		Height:    int(height),
		XOffset:   int(xOffset),
		YOffset:   int(yOffset),
		Delay:     frameDelay(delayNum, delayDen),
		DisposeOp: DisposeOp(disposeOp),
		BlendOp:   BlendOp(blendOp),
	}, nil
}

// frameDelay converts a delay fraction in seconds to a duration.
// A zero denominator means 1/100 second units.
func frameDelay(num, den uint16) time.Duration {
	if den == 0 {
		den = 100
	}

	return time.Duration(num) * time.Second / time.Duration(den)
}
