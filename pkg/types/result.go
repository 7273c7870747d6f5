package types

import "time"

// Result is the normalized outcome of one executed Command, identical in
// shape for every backend. Q indicates valid data ready / command accepted,
// X indicates the addressed module accepted the command. Data carries the
// returned word for read-class commands and echoes the written word for
// write-class commands.
type Result struct {
	Q         bool
	X         bool
	Data      uint32
	Timestamp time.Time
}
