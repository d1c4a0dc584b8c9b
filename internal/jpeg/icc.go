package jpeg

import (
	"errors"
	"fmt"
	"slices"
)

const (
	iccMarkerTag    = "ICC_PROFILE\x00"
	iccHeaderLen    = len(iccMarkerTag) + 2 // tag + seq + count
	maxICCChunkData = 65535 - 2 - iccHeaderLen
	maxICCChunks    = 255
)

// ErrInvalidICC is returned for ICC chunk sets that cannot be reassembled.
var ErrInvalidICC = errors.New("jpeg: invalid ICC profile chunks")

type iccChunk struct {
	seq  int
	data []byte
}

// ExtractICC reassembles an ICC profile from APP2 marker payloads. Payloads
// that are not ICC chunks are ignored. It returns nil when no chunk is found.
func ExtractICC(markers [][]byte) ([]byte, error) {
	var chunks []iccChunk
	total := 0

	for _, m := range markers {
		if len(m) < iccHeaderLen || string(m[:len(iccMarkerTag)]) != iccMarkerTag {
			continue
		}
		seq, count := int(m[12]), int(m[13])
		if seq == 0 || seq > count {
			return nil, fmt.Errorf("%w: sequence %d/%d", ErrInvalidICC, seq, count)
		}
		if total != 0 && count != total {
			return nil, fmt.Errorf("%w: chunk count %d vs %d", ErrInvalidICC, count, total)
		}
		total = count
		chunks = append(chunks, iccChunk{seq: seq, data: m[iccHeaderLen:]})
	}

	if len(chunks) == 0 {
		return nil, nil
	}
	if len(chunks) != total {
		return nil, fmt.Errorf("%w: expected %d chunks, found %d", ErrInvalidICC, total, len(chunks))
	}

	slices.SortFunc(chunks, func(a, b iccChunk) int { return a.seq - b.seq })

	var profile []byte
	for i, c := range chunks {
		if c.seq != i+1 {
			return nil, fmt.Errorf("%w: duplicate chunk %d", ErrInvalidICC, c.seq)
		}
		profile = append(profile, c.data...)
	}
	return profile, nil
}

// ChunkICC splits an ICC profile into APP2 marker payloads
// ("ICC_PROFILE\0" + 1-based sequence + count + data).
func ChunkICC(profile []byte) ([][]byte, error) {
	if len(profile) == 0 {
		return nil, errors.New("empty ICC profile")
	}

	count := (len(profile) + maxICCChunkData - 1) / maxICCChunkData
	if count > maxICCChunks {
		return nil, fmt.Errorf("ICC profile too large: needs %d chunks (max %d)", count, maxICCChunks)
	}

	chunks := make([][]byte, 0, count)
	for seq := 1; len(profile) > 0; seq++ {
		n := min(len(profile), maxICCChunkData)
		chunk := make([]byte, 0, iccHeaderLen+n)
		chunk = append(chunk, iccMarkerTag...)
		chunk = append(chunk, byte(seq), byte(count))
		chunk = append(chunk, profile[:n]...)
		chunks = append(chunks, chunk)
		profile = profile[n:]
	}
	return chunks, nil
}
