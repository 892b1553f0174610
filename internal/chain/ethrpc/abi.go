package ethrpc

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Hand-rolled ABI codec for the fixed registry surface. The contract exposes
// five functions and one event with stable signatures, which keeps word-level
// encoding simpler and lighter than pulling in a full client stack.

const wordSize = 32

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// selector returns the 4-byte function selector for a canonical signature.
func selector(signature string) []byte {
	return keccak256([]byte(signature))[:4]
}

// eventTopic returns the 32-byte topic hash for a canonical event signature.
func eventTopic(signature string) string {
	return "0x" + hex.EncodeToString(keccak256([]byte(signature)))
}

// encodeCall builds calldata: selector followed by uint256-encoded args.
func encodeCall(signature string, args ...*big.Int) string {
	data := selector(signature)
	for _, arg := range args {
		data = append(data, encodeUint256(arg)...)
	}
	return "0x" + hex.EncodeToString(data)
}

func encodeUint256(v *big.Int) []byte {
	word := make([]byte, wordSize)
	v.FillBytes(word)
	return word
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return raw, nil
}

// parseQuantity decodes a JSON-RPC quantity ("0x1a") into a big.Int.
func parseQuantity(s string) (*big.Int, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid quantity %q", s)
	}
	return v, nil
}

// wordReader walks 32-byte words of ABI-encoded return data.
type wordReader struct {
	data []byte
}

func newWordReader(raw []byte) *wordReader {
	return &wordReader{data: raw}
}

// word returns the i-th 32-byte word, zero-padded past the end so truncated
// responses fail as zero values rather than panics.
func (r *wordReader) word(i int) []byte {
	start := i * wordSize
	if start >= len(r.data) {
		return make([]byte, wordSize)
	}
	end := start + wordSize
	if end > len(r.data) {
		end = len(r.data)
	}
	word := make([]byte, wordSize)
	copy(word, r.data[start:end])
	return word
}

func (r *wordReader) uint64At(i int) uint64 {
	return new(big.Int).SetBytes(r.word(i)).Uint64()
}

func (r *wordReader) bigAt(i int) *big.Int {
	return new(big.Int).SetBytes(r.word(i))
}

func (r *wordReader) boolAt(i int) bool {
	return r.word(i)[wordSize-1] != 0
}

// addressAt reads the low 20 bytes of a word as a checksummed-free hex address.
func (r *wordReader) addressAt(i int) string {
	word := r.word(i)
	return "0x" + hex.EncodeToString(word[wordSize-20:])
}

// stringAt resolves a dynamic string whose offset (relative to base) lives in
// the i-th word.
func (r *wordReader) stringAt(i int, base int) (string, error) {
	offset := int(r.uint64At(i)) + base
	if offset < 0 || offset+wordSize > len(r.data) {
		return "", fmt.Errorf("string offset %d out of range", offset)
	}
	length := int(new(big.Int).SetBytes(r.data[offset : offset+wordSize]).Uint64())
	start := offset + wordSize
	if start+length > len(r.data) {
		return "", fmt.Errorf("string of length %d overflows data", length)
	}
	return string(r.data[start : start+length]), nil
}

// decodeUint256Return decodes the single-word return of a view function.
func decodeUint256Return(raw string) (uint64, error) {
	data, err := decodeHex(raw)
	if err != nil {
		return 0, err
	}
	if len(data) < wordSize {
		return 0, fmt.Errorf("short return data: %d bytes", len(data))
	}
	return newWordReader(data).uint64At(0), nil
}
