package pngn

import "fmt"

// chunkKind identifies the chunk types the decoder understands.
type chunkKind int

const (
	chunkUnknown chunkKind = iota
	chunkIHDR
	chunkPLTE
	chunkIDAT
	chunkIEND
	chunkTRNS
	chunkTEXT
	chunkACTL
	chunkFCTL
	chunkFDAT
	chunkEXIF
)

// chunkNames maps kinds back to their tags.
var chunkNames = [...]string{
	chunkUnknown: "unknown",
	chunkIHDR:    "IHDR",
	chunkPLTE:    "PLTE",
	chunkIDAT:    "IDAT",
	chunkIEND:    "IEND",
	chunkTRNS:    "tRNS",
	chunkTEXT:    "tEXt",
	chunkACTL:    "acTL",
	chunkFCTL:    "fcTL",
	chunkFDAT:    "fdAT",
	chunkEXIF:    "eXIf",
}

// String returns the chunk tag.
func (k chunkKind) String() string {
	if k < 0 || int(k) >= len(chunkNames) {
		return fmt.Sprintf("chunkKind(%d)", int(k))
	}

	return chunkNames[k]
}

// classifyChunk maps a 4-byte tag to its kind.
func classifyChunk(tag []byte) chunkKind {
	switch string(tag) {
	case "IHDR":
		return chunkIHDR
	case "PLTE":
		return chunkPLTE
	case "IDAT":
		return chunkIDAT
	case "IEND":
		return chunkIEND
	case "tRNS":
		return chunkTRNS
	case "tEXt":
		return chunkTEXT
	case "acTL":
		return chunkACTL
	case "fcTL":
		return chunkFCTL
	case "fdAT":
		return chunkFDAT
	case "eXIf":
		return chunkEXIF
	}

	return chunkUnknown
}

// maxChunkLength is the largest chunk length allowed by the PNG spec.
const maxChunkLength = 0x7fffffff

// chunk is one length-prefixed, tagged segment of the stream.
// The payload aliases the input buffer.
type chunk struct {
	kind    chunkKind
	tag     string
	payload []byte
}

// readChunk reads the length, tag and payload of the next chunk.
// The trailing CRC is left for the caller to skip.
func readChunk(c *cursor) (chunk, error) {
	length, err := c.uint32()
	if err != nil {
		return chunk{}, fmt.Errorf("chunk length: %w", err)
	}

	if length > maxChunkLength {
		return chunk{}, fmt.Errorf("%w: bad chunk length %d", ErrCorruptImage, length)
	}

	tag, err := c.next(4)
	if err != nil {
		return chunk{}, fmt.Errorf("chunk type: %w", err)
	}

	ch := chunk{kind: classifyChunk(tag), tag: string(tag)}

	ch.payload, err = c.next(int(length))
	if err != nil {
		return chunk{}, fmt.Errorf("%q chunk: %w", ch.tag, err)
	}

	return ch, nil
}
