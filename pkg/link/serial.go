package link

import (
	"fmt"
	"net/url"
	"strconv"

	serial "github.com/albenik/go-serial/v2"
)

// DefaultBaudrate matches the firmware's UART configuration.
const DefaultBaudrate = 115200

func openSerial(u *url.URL) (Conn, error) {
	name := u.Path
	if u.Host != "" {
		name = u.Host + u.Path
	}
	if name == "" {
		return nil, fmt.Errorf("link: serial URL without a device")
	}
	baud := DefaultBaudrate
	if s := u.Query().Get("baud"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("link: bad baud %q", s)
		}
		baud = v
	}
	port, err := serial.Open(name,
		serial.WithBaudrate(baud),
		serial.WithDataBits(8),
		serial.WithParity(serial.NoParity),
		serial.WithStopBits(serial.OneStopBit),
		serial.WithReadTimeout(1),
	)
	if err != nil {
		return nil, fmt.Errorf("link: open %s: %w", name, err)
	}
	return port, nil
}
