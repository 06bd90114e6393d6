// Package backend implements the two session backends: a plaintext
// accumulator and one that accumulates values under CKKS encryption.
package backend
