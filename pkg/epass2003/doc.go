/*
Package epass2003 implements the secure-messaging engine and proprietary
command set for the FTCOS/ePass2003 PKI smart card family.

It provides:
  - Cryptographic primitives (AES-128-ECB/CBC, 2-key 3DES-ECB/CBC, SHA-1,
    ISO/IEC 9797-1 method-2 padding, ISO/IEC 9797-1 algorithm-3 retail MAC)
  - A Global Platform SCP01-style mutual-authentication handshake
    (Establish) that derives per-session S-ENC/S-MAC keys and primes the
    MAC-ICV counter
  - Per-APDU secure-messaging wrap/unwrap (Wrap, Unwrap) with BER-TLV
    framing, MAC-ICV chaining, and dual DES/AES algorithm paths
  - The file-identifier remapping hook the card requires for directories
    whose high byte collides with its SFI encoding (HookFID, UnhookFID)
  - File operations (FileOps: select by FID/AID/path, create, delete, list)
  - Key operations (KeyOps: RSA generation, factor upload, secret-key and
    PIN/PUK installation, external-key authentication, decipher/sign)
  - A card-ctl façade (Driver) tying the above together: erase, serial
    retrieval, and key-write dispatch

# Session lifecycle

A SessionState starts in SMPlain. Establish runs the two-APDU handshake
and, on success, transitions it to SMSCP01; every subsequent command
issued through a FileOps, KeyOps, or Driver built over that session is
wrapped and unwrapped automatically via the shared transact helper.
SessionState is safe for concurrent use: its mutex is held for the full
wrap→transmit→unwrap round trip of a single logical operation, because
the MAC-ICV counter cannot tolerate interleaved commands from two
callers.

# Secure-messaging TLV alphabet

	0x87  Encrypted data, prefixed by a 0x01 padding-indicator byte
	0x97  Cleartext expected-Le
	0x8E  8-byte MAC
	0x99  2-byte SW12 (response only)

# File-identifier hook

Any file id whose high byte is one of {0x29, 0x30, 0x31, 0x32, 0x33, 0x34}
is stored by callers in "logical" form and transformed to "physical" form
(low byte × FIDStep) only at the wire boundary — on every SELECT, and on
every CREATE/DELETE that embeds a file id. HookFID/UnhookFID implement
that transform; FileOps applies it automatically.

# What this package does not do

It does not perform ATR matching or card-driver registration (the caller
decides which reader/card to open; MatchATR is offered as a building
block). It does not implement a PKCS#15 object model — FileOps and KeyOps
expose the card's native command vocabulary, not a token-neutral
abstraction. Response MAC verification is not performed: Unwrap does not
check the 0x8E TLV of a card response.
*/
package epass2003
