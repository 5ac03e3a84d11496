// Package felt implements the Cairo field element, the canonical wire unit
// between VM memory and the oracle codec.
package felt

import (
	"fmt"
	"math/big"
	"strings"
)

// Prime is the STARK field modulus used by the Cairo VM: 2^251 + 17*2^192 + 1.
var Prime = func() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 251)
	aux := new(big.Int).Lsh(big.NewInt(17), 192)
	p.Add(p, aux)
	p.Add(p, big.NewInt(1))
	return p
}()

// Felt is a nonnegative integer modulo Prime.
type Felt struct {
	value big.Int
}

// Zero is the additive identity.
func Zero() Felt { return Felt{} }

// New normalises v into the field, canonicalising negative values into the
// prime field the way a signed integer argument to the codec is canonicalised
// (per spec.md §3).
func New(v *big.Int) Felt {
	var f Felt
	f.value.Mod(v, Prime)
	return f
}

// FromUint64 builds a Felt from an unsigned integer.
func FromUint64(v uint64) Felt {
	return New(new(big.Int).SetUint64(v))
}

// FromInt64 builds a Felt from a signed integer, canonicalising negatives.
func FromInt64(v int64) Felt {
	return New(big.NewInt(v))
}

// ToBigInt returns a copy of the underlying big integer, in [0, Prime).
func (f Felt) ToBigInt() *big.Int {
	return new(big.Int).Set(&f.value)
}

// IsZero reports whether f is the additive identity.
func (f Felt) IsZero() bool {
	return f.value.Sign() == 0
}

// Equal reports structural equality.
func (f Felt) Equal(o Felt) bool {
	return f.value.Cmp(&o.value) == 0
}

// ToUint64 converts f to a uint64, failing if f does not fit.
func (f Felt) ToUint64() (uint64, error) {
	if !f.value.IsUint64() {
		return 0, fmt.Errorf("felt %s does not fit in u64", f.value.String())
	}
	return f.value.Uint64(), nil
}

// ToUint32 converts f to a uint32, failing if f does not fit.
func (f Felt) ToUint32() (uint32, error) {
	u, err := f.ToUint64()
	if err != nil {
		return 0, err
	}
	if u > 0xFFFFFFFF {
		return 0, fmt.Errorf("felt %s does not fit in u32", f.value.String())
	}
	return uint32(u), nil
}

// ToInt64 interprets f as a two's-complement-canonicalised signed value and
// converts it to int64, failing if f does not fit.
func (f Felt) ToInt64() (int64, error) {
	half := new(big.Int).Rsh(Prime, 1)
	v := new(big.Int).Set(&f.value)
	if v.Cmp(half) > 0 {
		v.Sub(v, Prime)
	}
	if !v.IsInt64() {
		return 0, fmt.Errorf("felt %s does not fit in i64", f.value.String())
	}
	return v.Int64(), nil
}

// ToInt32 interprets f as a signed value and converts it to int32.
func (f Felt) ToInt32() (int32, error) {
	v, err := f.ToInt64()
	if err != nil {
		return 0, err
	}
	if v > 0x7FFFFFFF || v < -0x80000000 {
		return 0, fmt.Errorf("felt %s does not fit in i32", f.value.String())
	}
	return int32(v), nil
}

// ToBytesBE renders f as a 32-byte big-endian array, the wire shape the
// codec uses for BYTEARRAY chunks and FELT252 round-tripping.
func (f Felt) ToBytesBE() [32]byte {
	var out [32]byte
	b := f.value.Bytes()
	copy(out[32-len(b):], b)
	return out
}

// FromBytesBESlice interprets an arbitrary-length big-endian byte slice
// (0..32 bytes) as a Felt, the way a Cairo byte-array word is packed.
func FromBytesBESlice(b []byte) Felt {
	return New(new(big.Int).SetBytes(b))
}

// ToHex renders f as a lowercase "0x…" string with no leading zeros beyond
// one, the FELT252 JSON representation specified in spec.md §3/§4.2.
func (f Felt) ToHex() string {
	if f.value.Sign() == 0 {
		return "0x0"
	}
	return "0x" + strings.ToLower(f.value.Text(16))
}

// FromHexOrDecimal parses the FELT252 JSON representation: either a
// hexadecimal ("0x…") or decimal string.
func FromHexOrDecimal(s string) (Felt, error) {
	base := 10
	trimmed := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		trimmed = s[2:]
	}
	v, ok := new(big.Int).SetString(trimmed, base)
	if !ok {
		return Felt{}, fmt.Errorf("invalid FELT252 string %q", s)
	}
	return New(v), nil
}

// String implements fmt.Stringer for debugging/logging.
func (f Felt) String() string {
	return f.value.String()
}
