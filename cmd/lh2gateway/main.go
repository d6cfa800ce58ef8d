// lh2gateway reads HDLC-framed DotBot protocol frames from a serial
// port, recovers LFSR sweep counts (and positions, once a calibration
// is available) and publishes the results over MQTT.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/op/go-logging"
	"go.bug.st/serial"
	yaml "gopkg.in/yaml.v2"

	lh2 "github.com/DotBots/go-lh2"
	"github.com/DotBots/go-lh2/hdlc"
	"github.com/DotBots/go-lh2/localization"
	"github.com/DotBots/go-lh2/protocol"
)

var log = logging.MustGetLogger("lh2/gateway")

type Config struct {
	Serial struct {
		Port string `yaml:"port"`
		Baud int    `yaml:"baud"`
	} `yaml:"serial"`
	MQTT struct {
		Broker   string `yaml:"broker"`
		ClientID string `yaml:"client_id"`
		Topic    string `yaml:"topic"`
	} `yaml:"mqtt"`
	CalibrationDir string `yaml:"calibration_dir"`
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	if config.Serial.Baud == 0 {
		config.Serial.Baud = 1000000
	}
	if config.MQTT.Topic == "" {
		config.MQTT.Topic = "dotbot/lh2"
	}
	if config.MQTT.ClientID == "" {
		config.MQTT.ClientID = "lh2gateway"
	}
	if config.CalibrationDir == "" {
		config.CalibrationDir = "."
	}
	return config, nil
}

type measurement struct {
	Source   string     `json:"source"`
	Counts   *[4]uint32 `json:"counts,omitempty"`
	Position *position  `json:"position,omitempty"`
	Time     time.Time  `json:"time"`
}

type position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// gateway assembles per-device measurements from raw-data frames and
// publishes counts and positions.
type gateway struct {
	config  *Config
	client  mqtt.Client
	manager *localization.Manager

	// latest sweep sample per device and polynomial
	pending map[uint64]map[uint8]lh2.RawLocation
}

func (g *gateway) publish(source uint64, m measurement) {
	m.Source = fmt.Sprintf("%x", source)
	m.Time = time.Now().UTC()
	data, err := json.Marshal(m)
	if err != nil {
		log.Errorf("marshaling measurement: %v", err)
		return
	}
	topic := fmt.Sprintf("%s/%x", g.config.MQTT.Topic, source)
	if token := g.client.Publish(topic, 0, false, data); token.Wait() && token.Error() != nil {
		log.Errorf("publish(%s) failed: %v", topic, token.Error())
	}
}

func (g *gateway) handleRawData(source uint64, data protocol.LH2RawData) {
	samples, ok := g.pending[source]
	if !ok {
		samples = make(map[uint8]lh2.RawLocation)
		g.pending[source] = samples
	}
	for _, loc := range data.Locations {
		if loc.Bits != 0 {
			samples[loc.Polynomial] = loc
		}
	}
	if len(samples) < lh2.CountSlots {
		return
	}

	raw := lh2.RawData{Locations: []lh2.RawLocation{
		samples[0], samples[1], samples[2], samples[3],
	}}
	delete(g.pending, source)

	counts, err := raw.Counts()
	if err != nil {
		// Desynchronized or corrupted sample: drop it and wait for
		// the next capture.
		log.Warningf("dropping measurement from %x: %v", source, err)
		return
	}
	m := measurement{Counts: &counts}
	if pos, err := g.manager.ComputePosition(raw); err == nil {
		m.Position = &position{X: pos.X, Y: pos.Y, Z: pos.Z}
	}
	g.publish(source, m)
}

func (g *gateway) handleFrame(payload []byte) {
	header, decoded, err := protocol.Parse(payload)
	if err != nil {
		log.Debugf("ignoring frame: %v", err)
		return
	}
	switch p := decoded.(type) {
	case protocol.LH2RawData:
		g.handleRawData(header.Source, p)
	case protocol.LH2Location:
		// Device-computed position, scaled back to unit coordinates.
		g.publish(header.Source, measurement{Position: &position{
			X: float64(p.X) / 1e6,
			Y: float64(p.Y) / 1e6,
			Z: float64(p.Z) / 1e6,
		}})
	case protocol.Advertisement:
		log.Debugf("advertisement from %x", header.Source)
	}
}

func main() {
	configFile := flag.String("config", "lh2gateway.yaml", "configuration file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	format := logging.MustStringFormatter("%{time:15:04:05.000} %{module} %{level:.4s} %{message}")
	logging.SetBackend(logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), format))
	if *verbose {
		logging.SetLevel(logging.DEBUG, "")
	} else {
		logging.SetLevel(logging.INFO, "")
	}

	config, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("loading %s: %v", *configFile, err)
	}

	port, err := serial.Open(config.Serial.Port, &serial.Mode{BaudRate: config.Serial.Baud})
	if err != nil {
		log.Fatalf("opening %s: %v", config.Serial.Port, err)
	}
	defer port.Close()
	log.Infof("listening on %s at %d baud", config.Serial.Port, config.Serial.Baud)

	options := mqtt.NewClientOptions().
		AddBroker(config.MQTT.Broker).
		SetClientID(config.MQTT.ClientID).
		SetAutoReconnect(true)
	client := mqtt.NewClient(options)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("connecting to %s: %v", config.MQTT.Broker, token.Error())
	}
	defer client.Disconnect(250)
	log.Infof("connected to broker %s, publishing under %s", config.MQTT.Broker, config.MQTT.Topic)

	g := &gateway{
		config:  config,
		client:  client,
		manager: localization.NewManager(config.CalibrationDir),
		pending: make(map[uint64]map[uint8]lh2.RawLocation),
	}
	if g.manager.State() != localization.Calibrated {
		log.Warningf("no calibration found in %s, publishing counts only", config.CalibrationDir)
	}

	var handler hdlc.Handler
	buffer := make([]byte, 256)
	for {
		n, err := port.Read(buffer)
		if err != nil {
			log.Fatalf("reading from %s: %v", config.Serial.Port, err)
		}
		for _, b := range buffer[:n] {
			if !handler.HandleByte(b) {
				continue
			}
			payload, err := handler.Payload()
			if err != nil {
				log.Debugf("dropping frame: %v", err)
				continue
			}
			g.handleFrame(payload)
		}
	}
}
