// Package camacdaq exposes module-level metadata.
package camacdaq

// Version is the camacdaq release version.
const Version = "0.1.0"
