package discovery

import (
	"strconv"
	"strings"

	"github.com/daveisadork/flexcore/vita"
)

// Endpoint is how a discovered radio is reached (spec §3 "endpoint (host,
// port, protocol tcp, tls)").
type Endpoint struct {
	Host     string
	Port     int
	Protocol string // "tcp" or "tls"
}

// RadioDescriptor is one beacon's worth of information about a radio
// (spec §3 "Radio descriptor").
type RadioDescriptor struct {
	Serial  string
	Model   string
	Version string
	Nickname string
	Callsign string

	Endpoint Endpoint

	AvailableSlices      int
	AvailablePanadapters int

	DiscoveryProtocolVersion string
	WANConnected             bool

	GUIClientPrograms []string
	GUIClientHosts    []string
	GUIClientStations []string
	GUIClientHandles  []string
	GUIClientIPs      []string

	Status    string // in_use / available
	InUseHost string
	InUseIP   string

	Raw map[string]string
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// parseDescriptor converts the tokenized discovery payload (spec §4.2) into
// a RadioDescriptor. Unrecognized keys are preserved in Raw rather than
// dropped, since a descriptor is frequently forwarded wholesale.
func parseDescriptor(attrs []vita.DiscoveryAttr) RadioDescriptor {
	d := RadioDescriptor{Raw: make(map[string]string, len(attrs)), Endpoint: Endpoint{Protocol: "tcp"}}
	for _, a := range attrs {
		d.Raw[a.Key] = a.Value
		switch a.Key {
		case "serial":
			d.Serial = a.Value
		case "model":
			d.Model = a.Value
		case "version":
			d.Version = a.Value
		case "nickname":
			d.Nickname = a.Value
		case "callsign":
			d.Callsign = a.Value
		case "ip":
			d.Endpoint.Host = a.Value
		case "port":
			if v, err := strconv.Atoi(a.Value); err == nil {
				d.Endpoint.Port = v
			}
		case "requires_additional_license":
			// surfaced only via Raw, no first-class field.
		case "discovery_protocol":
			d.DiscoveryProtocolVersion = a.Value
		case "wan_connected":
			d.WANConnected = parseBool(a.Value)
		case "available_slices":
			if v, err := strconv.Atoi(a.Value); err == nil {
				d.AvailableSlices = v
			}
		case "available_panadapters":
			if v, err := strconv.Atoi(a.Value); err == nil {
				d.AvailablePanadapters = v
			}
		case "gui_client_programs":
			d.GUIClientPrograms = splitList(a.Value)
		case "gui_client_hosts":
			d.GUIClientHosts = splitList(a.Value)
		case "gui_client_stations":
			d.GUIClientStations = splitList(a.Value)
		case "gui_client_handles":
			d.GUIClientHandles = splitList(a.Value)
		case "gui_client_ips":
			d.GUIClientIPs = splitList(a.Value)
		case "status":
			d.Status = a.Value
		case "inuse_host":
			d.InUseHost = a.Value
		case "inuse_ip":
			d.InUseIP = a.Value
		}
	}
	return d
}

// diff compares two descriptors for the same serial, returning the changed
// keys (spec §4.2 "on an existing serial whose descriptor changes emit
// change with a diff").
func diffDescriptors(prev, next RadioDescriptor) map[string]string {
	out := map[string]string{}
	for k, v := range next.Raw {
		if old, ok := prev.Raw[k]; !ok || old != v {
			out[k] = v
		}
	}
	return out
}

// hostMigrated reports whether next reaches the same serial at a
// different host (spec §4.2 "Host migration... reported as a single
// change").
func hostMigrated(prev, next RadioDescriptor) bool {
	return prev.Endpoint.Host != "" && prev.Endpoint.Host != next.Endpoint.Host
}
