// Package protocol implements the serial link framing protocol.
package protocol

// The link carries commands and telemetry as length-prefixed,
// CRC-8 protected frames over a byte stream (typically a UART):
//
//	[HEAD 0xAA][COMMAND:1][LENGTH:2 LE][PAYLOAD:LENGTH][CRC8:1]
//
// The CRC covers head, command, length and payload. A receiver
// that loses framing resynchronizes on the next head byte; a
// corrupted length field larger than MaxPayload discards the
// in-progress frame without emitting anything.
//
// Producer: the host controller
// Consumer: the robot core (and vice versa for telemetry)
