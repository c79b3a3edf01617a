package encryption

// Sealer is the interface satisfied by [*Framer].  The orchestrator in
// package stego depends on it rather than on the concrete type, so a test can
// swap in a framer with a fixed IV source, or a stub that returns arbitrary
// bytes.
//
// To implement a custom backend (e.g. an HSM-held key):
//
//  1. Produce frames in the IV ‖ ciphertext layout described in the package
//     documentation.
//  2. Report failures with the sentinel errors of this package so that
//     callers can classify them with errors.Is.
type Sealer interface {
	// Seal encrypts plaintext under key and returns IV ‖ ciphertext.
	Seal(plaintext, key []byte) ([]byte, error)

	// Open reverses Seal and returns the unpadded plaintext.
	Open(frame, key []byte) ([]byte, error)
}

var _ Sealer = (*Framer)(nil)
