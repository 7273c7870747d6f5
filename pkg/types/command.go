package types

// Direction classifies a CAMAC function code.
type Direction int

const (
	DirectionRead Direction = iota
	DirectionWrite
	DirectionControl
)

// String returns the lowercase name of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionRead:
		return "read"
	case DirectionWrite:
		return "write"
	case DirectionControl:
		return "control"
	}
	return "unknown"
}

// CAMAC addressing and data-width limits. The bus carries a 24-bit data
// word; subaddresses span A0-A15 and function codes F0-F31.
const (
	MaxSubaddress = 15
	MaxFunction   = 31
	MaxStation    = 31
	DataMask      = 0xFFFFFF
)

// DirectionOf maps a function code to its direction class:
// F0-F7 read, F16-F23 write, F8-F15 and F24-F31 control.
func DirectionOf(function int) Direction {
	switch {
	case function >= 0 && function <= 7:
		return DirectionRead
	case function >= 16 && function <= 23:
		return DirectionWrite
	default:
		return DirectionControl
	}
}

// Command is one immutable CAMAC operation: a resolved module position,
// a subaddress, a function code, and (for write-class functions) a data
// word. Build one with BuildCommand; do not mutate after construction.
type Command struct {
	Module     string // symbolic module name as configured
	Branch     int
	Crate      int
	Station    int
	Subaddress int
	Function   int
	Data       uint32 // meaningful only when Direction == DirectionWrite
	Direction  Direction
}

// Ext packs the command's branch, crate, station, and subaddress into
// the legacy CAMAC ext word (B,C,N,A in one byte each, high to low).
// The audit trail records it alongside the symbolic coordinates.
func (c Command) Ext() uint32 {
	return uint32(c.Branch&0xFF)<<24 |
		uint32(c.Crate&0xFF)<<16 |
		uint32(c.Station&0xFF)<<8 |
		uint32(c.Subaddress&0xFF)
}

// BuildCommand validates the inputs and constructs a Command. The module
// name is resolved against the crate map; data must be present for
// write-class functions and fit the 24-bit word, and is ignored for
// read-class functions. Failures return a *CommandError with
// KindValidation wrapping one of the validation sentinels.
func BuildCommand(crateMap CrateMap, moduleName string, subaddress, function int, data *uint32) (Command, error) {
	fail := func(err error) (Command, error) {
		return Command{}, &CommandError{
			Kind:       KindValidation,
			Module:     moduleName,
			Subaddress: subaddress,
			Function:   function,
			Err:        err,
		}
	}

	if subaddress < 0 || subaddress > MaxSubaddress {
		return fail(ErrSubaddressRange)
	}
	if function < 0 || function > MaxFunction {
		return fail(ErrFunctionRange)
	}

	entry, ok := crateMap.Lookup(moduleName)
	if !ok {
		return fail(ErrUnknownModule)
	}

	direction := DirectionOf(function)

	var word uint32
	switch direction {
	case DirectionWrite:
		if data == nil {
			return fail(ErrMissingData)
		}
		if *data > DataMask {
			return fail(ErrDataWidth)
		}
		word = *data
	default:
		// Data is ignored for read- and control-class functions.
	}

	return Command{
		Module:     entry.Name,
		Branch:     entry.Branch,
		Crate:      entry.Crate,
		Station:    entry.Station,
		Subaddress: subaddress,
		Function:   function,
		Data:       word,
		Direction:  direction,
	}, nil
}
