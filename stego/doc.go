// Package stego sequences the cipher framer and the LSB codec into the two
// user-facing operations.
//
// # Pipelines
//
//	Hide:   text ─encode─▶ bytes ─Seal─▶ IV‖ciphertext ─bits─▶ lsb.Embed ─▶ stego buffer
//	Reveal: stego buffer ─lsb.Extract─▶ IV‖ciphertext ─Open─▶ bytes ─decode─▶ text
//
// # Collaborators
//
// A [Codec] is assembled from injectable parts:
//
//   - an [encryption.Sealer] (default: [encryption.NewFramer]);
//   - an optional [ImageStore] for the *Image variants that read and write
//     image files;
//   - an optional [Observer] that receives one [Event] per pipeline stage;
//   - a [TextEncoding] (default: [UTF8]).
//
// # Errors
//
// Every failure is a deterministic input or data-corruption condition and is
// returned unchanged from the stage that raised it; nothing is retried.
// Use [Describe] to turn an error into a message that is safe to show a user:
// it never distinguishes a padding failure from a wrong key.
package stego
