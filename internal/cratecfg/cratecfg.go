// Package cratecfg loads the CIT-style crate configuration file that maps
// symbolic module names to CAMAC positions. Each line reads
//
//	NAME  branch  crate  station  [comment...]
//
// Blank lines and lines starting with '*', '#', '!' or ';' are ignored,
// as are lines that do not parse; the format predates this tool and files
// in the field carry free-form annotations.
package cratecfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/camac-tools/camacdaq/pkg/types"
)

// commentLeaders are the characters that start a comment line.
const commentLeaders = "*#!;"

// Parse builds a CrateMap from configuration text. Module names are keyed
// upper-cased; a repeated name keeps the last entry, matching the legacy
// loader.
func Parse(text string) types.CrateMap {
	entries := make(types.CrateMap)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.ContainsRune(commentLeaders, rune(line[0])) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		branch, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		crate, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		station, err := strconv.Atoi(fields[3])
		if err != nil {
			continue
		}
		entry := types.ModuleEntry{
			Name:    fields[0],
			Branch:  branch,
			Crate:   crate,
			Station: station,
		}
		if len(fields) >= 5 {
			entry.Comment = strings.Join(fields[4:], " ")
		}
		entries[strings.ToUpper(fields[0])] = entry
	}
	return entries
}

// Load reads and parses the crate configuration file at path.
func Load(path string) (types.CrateMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read crate config: %w", err)
	}
	return Parse(string(data)), nil
}
