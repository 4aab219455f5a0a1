// Package status defines the status phase used by the server list ping.
package status

import (
	"github.com/Tnze/go-mc/chat"
	"github.com/google/uuid"

	"github.com/go-mclib/transport/pkg/protocol"
	"github.com/go-mclib/transport/pkg/wire"
)

// Packet IDs. Each direction numbers its packets independently.
const (
	StatusRequestID  int32 = 0x00
	PingRequestID    int32 = 0x01
	StatusResponseID int32 = 0x00
	PongResponseID   int32 = 0x01
)

const maxResponseLen = 32767 * 3

// Response is the JSON document a server reports in StatusResponse.
type Response struct {
	Version            Version      `json:"version"`
	Players            *Players     `json:"players,omitempty"`
	Description        chat.Message `json:"description"`
	Favicon            string       `json:"favicon,omitempty"`
	EnforcesSecureChat bool         `json:"enforcesSecureChat,omitempty"`
}

type Version struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

type Players struct {
	Max    int            `json:"max"`
	Online int            `json:"online"`
	Sample []PlayerSample `json:"sample,omitempty"`
}

type PlayerSample struct {
	Name string    `json:"name"`
	ID   uuid.UUID `json:"id"`
}

// serverbound

type StatusRequest struct{}

func (p *StatusRequest) ID() int32                    { return StatusRequestID }
func (p *StatusRequest) Write(*wire.Writer)           {}
func (p *StatusRequest) Read(*wire.Reader) error      { return nil }
func (p *StatusRequest) Handle(h ServerHandler) error { return h.HandleStatusRequest(p) }

type PingRequest struct {
	Payload int64
}

func (p *PingRequest) ID() int32            { return PingRequestID }
func (p *PingRequest) Write(w *wire.Writer) { w.WriteInt64(p.Payload) }

func (p *PingRequest) Read(r *wire.Reader) (err error) {
	p.Payload, err = r.ReadInt64()
	return err
}

func (p *PingRequest) Handle(h ServerHandler) error { return h.HandlePingRequest(p) }

// clientbound

type StatusResponse struct {
	Status Response
}

func (p *StatusResponse) ID() int32            { return StatusResponseID }
func (p *StatusResponse) Write(w *wire.Writer) { w.WriteJSON(p.Status) }

func (p *StatusResponse) Read(r *wire.Reader) error {
	return r.ReadJSON(&p.Status, maxResponseLen)
}

func (p *StatusResponse) Handle(h ClientHandler) error { return h.HandleStatusResponse(p) }

type PongResponse struct {
	Payload int64
}

func (p *PongResponse) ID() int32            { return PongResponseID }
func (p *PongResponse) Write(w *wire.Writer) { w.WriteInt64(p.Payload) }

func (p *PongResponse) Read(r *wire.Reader) (err error) {
	p.Payload, err = r.ReadInt64()
	return err
}

func (p *PongResponse) Handle(h ClientHandler) error { return h.HandlePongResponse(p) }

// ServerHandler handles serverbound status packets.
type ServerHandler interface {
	protocol.DisconnectHandler
	HandleStatusRequest(p *StatusRequest) error
	HandlePingRequest(p *PingRequest) error
}

// ClientHandler handles clientbound status packets.
type ClientHandler interface {
	protocol.DisconnectHandler
	HandleStatusResponse(p *StatusResponse) error
	HandlePongResponse(p *PongResponse) error
}

type UnimplementedServerHandler struct{}

func (UnimplementedServerHandler) HandleStatusRequest(*StatusRequest) error { return nil }
func (UnimplementedServerHandler) HandlePingRequest(*PingRequest) error     { return nil }
func (UnimplementedServerHandler) HandleDisconnect()                        {}

type UnimplementedClientHandler struct{}

func (UnimplementedClientHandler) HandleStatusResponse(*StatusResponse) error { return nil }
func (UnimplementedClientHandler) HandlePongResponse(*PongResponse) error     { return nil }
func (UnimplementedClientHandler) HandleDisconnect()                          {}

// Protocol is the status phase registry.
var Protocol = newProtocol()

func newProtocol() *protocol.Protocol {
	p := protocol.New(protocol.Status)
	p.RegisterServerbound(StatusRequestID, func() protocol.Packet { return &StatusRequest{} })
	p.RegisterServerbound(PingRequestID, func() protocol.Packet { return &PingRequest{} })
	p.RegisterClientbound(StatusResponseID, func() protocol.Packet { return &StatusResponse{} })
	p.RegisterClientbound(PongResponseID, func() protocol.Packet { return &PongResponse{} })
	return p
}
