// Command butlermon subscribes the MQTT bridge topics and prints
// decoded telemetry frames.
package main

//go-build: CGO_ENABLED=0

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/yry1816186-pixel/ButlerX/pkg/behavior"
	mqtt "github.com/yry1816186-pixel/ButlerX/pkg/bridge/mqtt"
	"github.com/yry1816186-pixel/ButlerX/pkg/protocol"
)

var (
	mqttURL = "mqtt://localhost:1883/"
)

func init() {
	if val := os.Getenv("BUTLER_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	token := q.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		log.Fatalln(err)
	}

	q.Sub("butler/#", func(topic string, payload []byte) {
		var parser protocol.Parser
		for _, b := range payload {
			if r := parser.Feed(b); r.Complete() {
				if !r.Valid {
					log.Printf("%s: bad checksum", topic)
					continue
				}
				log.Printf("%s: %s", topic, describe(r.Frame))
			}
		}
	})
	<-(chan struct{})(nil)
}

func describe(f *protocol.Frame) string {
	switch f.Command {
	case protocol.CmdHeartbeat:
		if hb, err := protocol.UnmarshalHeartbeat(f.Payload); err == nil {
			return fmt.Sprintf("heartbeat uptime=%ds free=%dB", hb.Uptime, hb.FreeMemory)
		}
	case protocol.CmdSetState, protocol.CmdGetStatus:
		if st, err := protocol.UnmarshalStatus(f.Payload); err == nil {
			return fmt.Sprintf("status %s battery=%d%% expr=0x%02x servo=%d/%d",
				behavior.State(st.State), st.Battery, st.Expression, st.ServoH, st.ServoV)
		}
	case protocol.CmdSensorData:
		if r, err := protocol.UnmarshalSensorReading(f.Payload); err == nil {
			return fmt.Sprintf("sensors distance=%dmm proximity=%d light=%d",
				r.Distance, r.Proximity, r.Light)
		}
	case protocol.CmdError:
		if len(f.Payload) >= 1 {
			return fmt.Sprintf("error code=%d", f.Payload[0])
		}
	}
	return fmt.Sprintf("%s %s", f.Command, hex.EncodeToString(f.Payload))
}
