package spdx

import (
	"fmt"
	"strings"

	"github.com/spdx/tools-golang/spdx/v2/common"
)

// digestLengths maps each algorithm to its hex digest length. Zero means the
// algorithm has a variable output length and only the hex alphabet is checked.
var digestLengths = map[common.ChecksumAlgorithm]int{
	common.SHA1:        40,
	common.SHA224:      56,
	common.SHA256:      64,
	common.SHA384:      96,
	common.SHA512:      128,
	common.MD2:         32,
	common.MD4:         32,
	common.MD5:         32,
	common.MD6:         0,
	common.SHA3_256:    64,
	common.SHA3_384:    96,
	common.SHA3_512:    128,
	common.BLAKE2b_256: 64,
	common.BLAKE2b_384: 96,
	common.BLAKE2b_512: 128,
	common.BLAKE3:      0,
	common.ADLER32:     8,
}

// NewChecksum validates an algorithm name and digest and returns the
// checksum with its digest lower-cased.
func NewChecksum(algorithm, digest string) (common.Checksum, error) {
	algo := common.ChecksumAlgorithm(strings.ToUpper(strings.TrimSpace(algorithm)))
	// BLAKE2b keeps its lower-case b in the canonical spelling.
	if strings.HasPrefix(string(algo), "BLAKE2B-") {
		algo = common.ChecksumAlgorithm("BLAKE2b-" + strings.TrimPrefix(string(algo), "BLAKE2B-"))
	}
	want, ok := digestLengths[algo]
	if !ok {
		return common.Checksum{}, fmt.Errorf("unknown checksum algorithm %q", algorithm)
	}

	value := strings.ToLower(strings.TrimSpace(digest))
	if value == "" {
		return common.Checksum{}, fmt.Errorf("empty %s digest", algo)
	}
	for _, r := range value {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return common.Checksum{}, fmt.Errorf("%s digest %q is not hexadecimal", algo, digest)
		}
	}
	if want > 0 && len(value) != want {
		return common.Checksum{}, fmt.Errorf("%s digest must be %d hex digits, got %d", algo, want, len(value))
	}
	return common.Checksum{Algorithm: algo, Value: value}, nil
}
