package types

// Version is the canonical project version.
const Version = "0.3.0"

// ProtocolVersion is the version of the handshake directory protocol
// (file names and plotdata semantics). It only changes when the plotter
// watcher must be updated in lockstep.
const ProtocolVersion = "1"
