package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// feedAll feeds bytes one at a time and collects completed results.
func feedAll(p *Parser, data []byte) (results []Result) {
	for _, b := range data {
		if r := p.Feed(b); r.Complete() || r.Discarded {
			results = append(results, r)
		}
	}
	return
}

func TestParserRoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		cmd     CommandID
		payload []byte
	}{
		{"empty payload", CmdGetStatus, nil},
		{"single byte", CmdSetState, []byte{2}},
		{"status payload", CmdSetState, []byte{5, 100, 4, 0x5a, 0, 0x5a, 0}},
		{"max payload", CmdSendImage, make([]byte, MaxPayload)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			frame := &Frame{Command: tc.cmd, Payload: tc.payload}
			var parser Parser
			results := feedAll(&parser, frame.Bytes())
			require.Len(t, results, 1)
			require.True(t, results[0].Valid)
			require.Equal(t, tc.cmd, results[0].Frame.Command)
			if len(tc.payload) == 0 {
				require.Empty(t, results[0].Frame.Payload)
			} else {
				require.Equal(t, tc.payload, results[0].Frame.Payload)
			}
		})
	}
}

func TestParserChunkingIndependence(t *testing.T) {
	frame := &Frame{Command: CmdSensorData, Payload: []byte{0x2c, 0x01, 1, 80}}
	wire := frame.Bytes()

	// Feeding the same stream in any chunking yields the same frame.
	for chunk := 1; chunk <= len(wire); chunk++ {
		var parser Parser
		var results []Result
		for off := 0; off < len(wire); off += chunk {
			end := off + chunk
			if end > len(wire) {
				end = len(wire)
			}
			results = append(results, feedAll(&parser, wire[off:end])...)
		}
		require.Len(t, results, 1, "chunk size %d", chunk)
		require.True(t, results[0].Valid)
		require.Equal(t, frame.Payload, results[0].Frame.Payload)
	}
}

func TestParserResync(t *testing.T) {
	garbage := []byte{0x00, 0x13, 0x37, 0xff, 0xfe, 0x55, 0x01}
	frame := &Frame{Command: CmdSetState, Payload: []byte{3}}

	var parser Parser
	results := feedAll(&parser, append(garbage, frame.Bytes()...))
	require.Len(t, results, 1)
	require.True(t, results[0].Valid)
	require.Equal(t, CmdSetState, results[0].Frame.Command)
	require.Equal(t, []byte{3}, results[0].Frame.Payload)
}

func TestParserChecksumSensitivity(t *testing.T) {
	frame := &Frame{Command: CmdSetState, Payload: []byte{5, 100, 4, 0x5a, 0, 0x5a, 0}}
	wire := frame.Bytes()

	// Flip every bit of the command byte, each payload byte and the
	// checksum byte. Head and length bytes are excluded: corrupting
	// them alters framing instead of the checksum.
	positions := []int{1}
	for i := headerSize; i < len(wire); i++ {
		positions = append(positions, i)
	}
	for _, pos := range positions {
		for bit := 0; bit < 8; bit++ {
			corrupted := make([]byte, len(wire))
			copy(corrupted, wire)
			corrupted[pos] ^= 1 << bit

			var parser Parser
			results := feedAll(&parser, corrupted)
			require.Len(t, results, 1, "pos %d bit %d", pos, bit)
			require.False(t, results[0].Valid, "pos %d bit %d", pos, bit)
		}
	}
}

func TestParserOversizeLength(t *testing.T) {
	var parser Parser
	// Claimed length 0x07ff exceeds MaxPayload: silent discard.
	results := feedAll(&parser, []byte{0xaa, 0x07, 0xff, 0x07})
	require.Len(t, results, 1)
	require.True(t, results[0].Discarded)
	require.Nil(t, results[0].Frame)

	// The parser resynchronizes on the next head byte.
	frame := &Frame{Command: CmdHeartbeat}
	results = feedAll(&parser, frame.Bytes())
	require.Len(t, results, 1)
	require.True(t, results[0].Valid)
	require.Equal(t, CmdHeartbeat, results[0].Frame.Command)
}

func TestParserSingleEventPerAttempt(t *testing.T) {
	frame := &Frame{Command: CmdGetStatus}
	var parser Parser
	wire := append(frame.Bytes(), frame.Bytes()...)
	results := feedAll(&parser, wire)
	require.Len(t, results, 2)
	for _, r := range results {
		require.True(t, r.Valid)
	}
}

func TestParserKnownSequence(t *testing.T) {
	// A set-state frame carrying a full status payload as captured
	// from the host: state=TALK(5), battery=100, expression=1,
	// servo_h=90, servo_v=90.
	wire := []byte{0xaa, 0x07, 0x07, 0x00, 0x05, 0x64, 0x01, 0x5a, 0x00, 0x5a, 0x00, 0x3a}

	var parser Parser
	results := feedAll(&parser, wire)
	require.Len(t, results, 1)
	require.True(t, results[0].Valid)
	require.Equal(t, CmdSetState, results[0].Frame.Command)
	require.Equal(t, byte(5), results[0].Frame.Payload[0])
}
