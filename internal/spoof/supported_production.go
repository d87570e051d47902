//go:build production
// +build production

package spoof

// Supported reports whether spoofing can be enabled.
const Supported = false
