package driver

import (
	"os"
	"runtime"
)

// EnvLibPath is the environment variable consulted for the driver
// library location when no explicit path is configured.
const EnvLibPath = "CAMAC_LIB"

// Candidates returns the driver library paths to try, in order: the
// explicit path when given, else the CAMAC_LIB environment variable,
// else the conventional platform names on the loader search path.
func Candidates(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	if env := os.Getenv(EnvLibPath); env != "" {
		return []string{env}
	}
	switch runtime.GOOS {
	case "darwin":
		return []string{"libcamac_gpib.dylib", "libcamac.dylib"}
	case "windows":
		return []string{"libcamac_gpib.dll", "camac_gpib.dll", "camac.dll"}
	default:
		return []string{"libcamac_gpib.so", "libcamac.so"}
	}
}

// Resolvable reports whether a driver library location is configured,
// either explicitly or through the environment. Mode auto uses this to
// decide between the real and mock backends without attempting a load.
func Resolvable(explicit string) bool {
	return explicit != "" || os.Getenv(EnvLibPath) != ""
}
