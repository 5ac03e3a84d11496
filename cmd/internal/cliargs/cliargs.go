// Package cliargs holds the flag-parsing and status-record plumbing shared
// by cmd/cairo-hints-run and cmd/cairo-hints-test, per spec.md §6's CLI
// surface and §7's "{status, message|data}" record.
package cliargs

import (
	"encoding/json"
	"fmt"

	"github.com/reilabs/cairo-hints-go/program"
	"github.com/reilabs/cairo-hints-go/runner"
)

// Layouts is the closed set --layout validates against, ported from
// validate_layout in original_source/cairo-hints/scarb-hints-run/main.rs.
var Layouts = map[string]bool{
	"plain":                  true,
	"small":                  true,
	"dex":                    true,
	"starknet":               true,
	"starknet_with_keccak":   true,
	"recursive_large_output": true,
	"all_cairo":              true,
	"all_solidity":           true,
	"dynamic":                true,
}

// ValidateLayout fails unless layout is one of Layouts, the Go analogue of
// validate_layout's clap value_parser.
func ValidateLayout(layout string) error {
	if !Layouts[layout] {
		return fmt.Errorf("%s is not a valid layout", layout)
	}
	return nil
}

// RequiredBuiltins reports the fixed builtins an entry function needs, the
// segments for which are the caller's responsibility per
// runner.BuildEntryCode's contract (builtin segments are owned by the
// opaque VM collaborator, not the runner package).
func RequiredBuiltins(paramTypeNames []string) []runner.BuiltinName {
	builtins, _ := runner.FunctionBuiltins(paramTypeNames)
	return builtins
}

// ParseArgs parses --args/--args-json's shared JSON array syntax into
// runner.Arg values: a JSON number or string becomes a single Felt, a JSON
// array of numbers/strings becomes a Felt array. Nesting stops at one level
// deep, since runner.Arg itself is a flat single/array sum type in this
// port (the original's Arg::Array can nest arbitrarily; nothing in this
// repository's entry-code synthesis consumes more than one level).
func ParseArgs(raw string) ([]runner.Arg, error) {
	if raw == "" {
		return nil, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, fmt.Errorf("cliargs: parsing arguments: %w", err)
	}

	args := make([]runner.Arg, 0, len(elems))
	for i, raw := range elems {
		var asArray []scalarArg
		if err := json.Unmarshal(raw, &asArray); err == nil {
			texts := make([]string, len(asArray))
			for j, a := range asArray {
				texts[j] = a.String()
			}
			felts, err := program.ParseFelts(texts)
			if err != nil {
				return nil, fmt.Errorf("cliargs: argument %d: %w", i, err)
			}
			args = append(args, runner.ArrayArg(felts))
			continue
		}

		var asScalar scalarArg
		if err := json.Unmarshal(raw, &asScalar); err != nil {
			return nil, fmt.Errorf("cliargs: argument %d is neither a number/string nor an array: %w", i, err)
		}
		f, err := program.ParseFelts([]string{asScalar.String()})
		if err != nil {
			return nil, fmt.Errorf("cliargs: argument %d: %w", i, err)
		}
		args = append(args, runner.SingleArg(f[0]))
	}
	return args, nil
}

// scalarArg unmarshals either a JSON number or a JSON string into a decimal
// string, since both spellings name the same felt value (per
// original_source/cairo-hints/scarb-hints-run/deserialization.rs).
type scalarArg struct {
	text string
}

func (s *scalarArg) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		s.text = asString
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return err
	}
	s.text = asNumber.String()
	return nil
}

func (s scalarArg) String() string { return s.text }

// Record is the structured result spec.md §7 specifies: "{status:
// "error"|"success", message|data}".
type Record struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Data    []string `json:"data,omitempty"`
}

// SuccessRecord builds a success Record from a run's return values.
func SuccessRecord(values []string) Record {
	return Record{Status: "success", Data: values}
}

// ErrorRecord builds an error Record from a failure's message.
func ErrorRecord(message string) Record {
	return Record{Status: "error", Message: message}
}

// Print writes r as pretty JSON to stdout via w.
func (r Record) Print(w func(string)) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	w(string(data))
	return nil
}
