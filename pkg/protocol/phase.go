package protocol

// Phase is a stage of the session that selects the active packet registry.
type Phase int

const (
	Handshake Phase = iota
	Status
	Login
	Configuration
	Play
)

func (p Phase) String() string {
	switch p {
	case Handshake:
		return "handshake"
	case Status:
		return "status"
	case Login:
		return "login"
	case Configuration:
		return "configuration"
	case Play:
		return "play"
	}
	return "unknown"
}

// Direction is the direction a packet travels.
type Direction uint8

const (
	Serverbound Direction = iota // client to server
	Clientbound                  // server to client
)

func (d Direction) String() string {
	switch d {
	case Serverbound:
		return "serverbound"
	case Clientbound:
		return "clientbound"
	}
	return "unknown"
}
