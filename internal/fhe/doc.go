// Package fhe wraps the Lattigo CKKS scheme behind the handful of operations a homomorphic session needs.
//
// Values are mapped onto a bounded interval, quantized to the configured precision and encrypted under a
// per-session secret key. Ciphertexts support addition and multiplication by a public constant; only the
// key holder can decrypt. Keys never leave the Scheme.
package fhe
