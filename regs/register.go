package regs

import "fmt"

// Register is a named logical field assembled from one or more physical
// byte Fields sharing a basename: a base byte address, a byte span, an
// in-register bit shift, and a total width in bits.
type Register struct {
	Name   string
	Base   uint16
	Bytes  int
	Shift  int
	Width  int
	Access string
}

// DeriveRegisters groups fields sharing a basename (skipping any literally
// named "RESERVED") into logical Registers, validating that within a
// Register the physical fields are contiguous, that multi-byte registers
// carry no intra-byte shift, that widths sum correctly, and that access
// modes agree. This runs once at load time; the result is
// treated as immutable thereafter.
func DeriveRegisters(fields []Field) (map[string]Register, error) {
	order := make([]string, 0)
	groups := map[string][]Field{}
	for _, f := range fields {
		if f.Name == "RESERVED" {
			continue
		}
		if _, ok := groups[f.Name]; !ok {
			order = append(order, f.Name)
		}
		groups[f.Name] = append(groups[f.Name], f)
	}

	out := make(map[string]Register, len(order))
	for _, name := range order {
		group := groups[name]
		sortFieldsByAddress(group)
		reg, err := deriveOne(name, group)
		if err != nil {
			return nil, err
		}
		out[name] = reg
	}
	return out, nil
}

func deriveOne(name string, group []Field) (Register, error) {
	first := group[0]
	if len(group) == 1 {
		return Register{
			Name: name, Base: first.Address, Bytes: 1,
			Shift: first.BitLo, Width: first.BitWidth, Access: first.Access,
		}, nil
	}

	wantAddr := first.Address
	totalWidth := 0
	for _, f := range group {
		if f.Address != wantAddr {
			return Register{}, fmt.Errorf("regs: %s is not contiguous at byte %d", name, wantAddr)
		}
		if f.BitLo != 0 || f.BitWidth != 8 {
			return Register{}, fmt.Errorf("regs: %s has an intra-byte shift in a multi-byte register", name)
		}
		if f.Access != first.Access {
			return Register{}, fmt.Errorf("regs: %s has mismatched access modes", name)
		}
		wantAddr++
		totalWidth += f.BitWidth
	}
	return Register{
		Name: name, Base: first.Address, Bytes: len(group),
		Shift: 0, Width: totalWidth, Access: first.Access,
	}, nil
}

func sortFieldsByAddress(g []Field) {
	for i := 1; i < len(g); i++ {
		for j := i; j > 0 && g[j-1].Address > g[j].Address; j-- {
			g[j-1], g[j] = g[j], g[j-1]
		}
	}
}

// Registers is the name->Register map derived once from Fields at package
// initialisation.
var Registers = mustDerive()

func mustDerive() map[string]Register {
	r, err := DeriveRegisters(Fields)
	if err != nil {
		panic(err)
	}
	return r
}
