// Package blood holds the ABO/Rh blood group enumeration and the static
// transfusion compatibility table.
package blood

import (
	"errors"
	"strings"
)

var ErrInvalidBloodType = errors.New("invalid blood type")

type Type string

const (
	APositive  Type = "A+"
	ANegative  Type = "A-"
	BPositive  Type = "B+"
	BNegative  Type = "B-"
	ABPositive Type = "AB+"
	ABNegative Type = "AB-"
	OPositive  Type = "O+"
	ONegative  Type = "O-"
)

// All lists the eight groups in display order.
var All = []Type{
	APositive, ANegative,
	BPositive, BNegative,
	ABPositive, ABNegative,
	OPositive, ONegative,
}

// compatibleDonors maps a recipient to the donor groups it can receive from.
var compatibleDonors = map[Type][]Type{
	APositive:  {APositive, ANegative, OPositive, ONegative},
	ANegative:  {ANegative, ONegative},
	BPositive:  {BPositive, BNegative, OPositive, ONegative},
	BNegative:  {BNegative, ONegative},
	ABPositive: {APositive, ANegative, BPositive, BNegative, ABPositive, ABNegative, OPositive, ONegative},
	ABNegative: {ANegative, BNegative, ABNegative, ONegative},
	OPositive:  {OPositive, ONegative},
	ONegative:  {ONegative},
}

func Parse(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidBloodType
	}
	return t, nil
}

func (t Type) IsValid() bool {
	_, ok := compatibleDonors[t]
	return ok
}

func (t Type) String() string {
	return string(t)
}

// CompatibleDonors returns the donor groups a recipient of type t may
// receive. Unknown input yields a singleton of the input itself.
func CompatibleDonors(t Type) []Type {
	donors, ok := compatibleDonors[t]
	if !ok {
		return []Type{t}
	}
	out := make([]Type, len(donors))
	copy(out, donors)
	return out
}

// CanReceiveFrom reports whether recipient can be transfused with donor blood.
func CanReceiveFrom(recipient, donor Type) bool {
	for _, t := range compatibleDonors[recipient] {
		if t == donor {
			return true
		}
	}
	return false
}

func Strings(types []Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
