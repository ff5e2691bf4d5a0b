package session

// syncSources is the family of `sub <source> all` subscriptions issued
// during Syncing (spec §4.6 "Sync command set").
var syncSources = []string{
	"client", "tx", "atu", "amplifier", "meter", "pan", "slice", "gps",
	"audio_stream", "cwx", "xvtr", "memories", "daxiq", "dax", "usb_cable",
	"tnf", "spot", "rapidm", "ale", "log_manager", "radio", "apd",
}

// profileDomains enumerates the profile categories synced at connect
// time (spec §3 "ProfileState{Global, TX, Mic, Display}").
var profileDomains = []string{"global", "tx", "mic", "display"}

// syncCommands returns every command issued in parallel during Syncing.
// Order doesn't matter — they're dispatched concurrently and correlated
// by sequence, not position.
func syncCommands() []string {
	cmds := []string{"info", "version", "ant list", "mic list"}
	for _, domain := range profileDomains {
		cmds = append(cmds, "profile "+domain+" list")
	}
	for _, src := range syncSources {
		cmds = append(cmds, "sub "+src+" all")
	}
	cmds = append(cmds, "keepalive enable")
	return cmds
}
