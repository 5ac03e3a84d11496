package runner

import (
	"fmt"
	"math"

	"github.com/reilabs/cairo-hints-go/felt"
)

// gasKind is the three-way gas configuration spec.md §4.5 "Gas" specifies.
type gasKind int

const (
	gasDisabled gasKind = iota
	gasUnlimited
	gasLimited
)

// GasState selects how the GasBuiltin cell is loaded, if the entry function
// requires one at all.
type GasState struct {
	kind  gasKind
	limit uint64
}

// DisabledGas means no gas counter is loaded; an entry function that
// declares a GasBuiltin parameter cannot be called under this state.
func DisabledGas() GasState { return GasState{kind: gasDisabled} }

// UnlimitedGas loads GasBuiltin with math.MaxUint64.
func UnlimitedGas() GasState { return GasState{kind: gasUnlimited} }

// LimitedGas loads GasBuiltin with n.
func LimitedGas(n uint64) GasState { return GasState{kind: gasLimited, limit: n} }

// InitialValue returns the Felt to load into the GasBuiltin cell, failing
// if the program requires gas but the state is Disabled (spec.md §4.5:
// "Disabled ... program must not require one; otherwise fail").
func (g GasState) InitialValue(needsGas bool) (felt.Felt, error) {
	switch g.kind {
	case gasDisabled:
		if needsGas {
			return felt.Zero(), fmt.Errorf("runner: entry function requires a gas counter but gas is disabled")
		}
		return felt.Zero(), nil
	case gasUnlimited:
		return felt.FromUint64(math.MaxUint64), nil
	case gasLimited:
		return felt.FromUint64(g.limit), nil
	default:
		return felt.Zero(), fmt.Errorf("runner: unknown gas state")
	}
}
