// Package login defines the offline subset of the login phase: the client
// introduces itself, the server may enable compression, then either
// finishes the login or disconnects the client.
package login

import (
	"crypto/md5"
	"fmt"

	"github.com/Tnze/go-mc/chat"
	"github.com/google/uuid"

	"github.com/go-mclib/transport/pkg/protocol"
	"github.com/go-mclib/transport/pkg/wire"
)

const (
	HelloID             int32 = 0x00
	LoginAcknowledgedID int32 = 0x03

	LoginDisconnectID  int32 = 0x00
	LoginFinishedID    int32 = 0x02
	LoginCompressionID int32 = 0x03
)

const (
	maxNameLen   = 16
	maxReasonLen = 262144
	maxProperty  = 32767
)

// OfflineUUID returns the UUID an offline-mode server assigns to name: a
// version 3 UUID over the MD5 of "OfflinePlayer:<name>".
func OfflineUUID(name string) uuid.UUID {
	h := md5.Sum([]byte("OfflinePlayer:" + name))
	h[6] = h[6]&0x0f | 0x30
	h[8] = h[8]&0x3f | 0x80
	return uuid.UUID(h)
}

// serverbound

type Hello struct {
	Name string
	UUID uuid.UUID
}

func (p *Hello) ID() int32 { return HelloID }

func (p *Hello) Write(w *wire.Writer) {
	w.WriteString(p.Name).WriteUUID(p.UUID)
}

func (p *Hello) Read(r *wire.Reader) (err error) {
	if p.Name, err = r.ReadString(maxNameLen); err != nil {
		return err
	}
	p.UUID, err = r.ReadUUID()
	return err
}

func (p *Hello) Handle(h ServerHandler) error { return h.HandleHello(p) }

type LoginAcknowledged struct{}

func (p *LoginAcknowledged) ID() int32                    { return LoginAcknowledgedID }
func (p *LoginAcknowledged) Write(*wire.Writer)           {}
func (p *LoginAcknowledged) Read(*wire.Reader) error      { return nil }
func (p *LoginAcknowledged) Handle(h ServerHandler) error { return h.HandleLoginAcknowledged(p) }

// clientbound

type LoginDisconnect struct {
	Reason chat.Message
}

func (p *LoginDisconnect) ID() int32            { return LoginDisconnectID }
func (p *LoginDisconnect) Write(w *wire.Writer) { w.WriteJSON(p.Reason) }

func (p *LoginDisconnect) Read(r *wire.Reader) error {
	return r.ReadJSON(&p.Reason, maxReasonLen)
}

func (p *LoginDisconnect) Handle(h ClientHandler) error { return h.HandleLoginDisconnect(p) }

type Property struct {
	Name      string
	Value     string
	Signature *string
}

type LoginFinished struct {
	UUID       uuid.UUID
	Name       string
	Properties []Property
}

func (p *LoginFinished) ID() int32 { return LoginFinishedID }

func (p *LoginFinished) Write(w *wire.Writer) {
	w.WriteUUID(p.UUID).WriteString(p.Name).WriteVarInt(int32(len(p.Properties)))
	for _, prop := range p.Properties {
		w.WriteString(prop.Name).WriteString(prop.Value).WriteBool(prop.Signature != nil)
		if prop.Signature != nil {
			w.WriteString(*prop.Signature)
		}
	}
}

func (p *LoginFinished) Read(r *wire.Reader) (err error) {
	if p.UUID, err = r.ReadUUID(); err != nil {
		return err
	}
	if p.Name, err = r.ReadString(maxNameLen); err != nil {
		return err
	}
	n, err := r.ReadVarInt()
	if err != nil {
		return err
	}
	// every property takes at least 3 bytes
	if n < 0 || int(n) > r.Remaining()/3 {
		return fmt.Errorf("login: bad property count %d", n)
	}
	p.Properties = make([]Property, n)
	for i := range p.Properties {
		prop := &p.Properties[i]
		if prop.Name, err = r.ReadString(64); err != nil {
			return err
		}
		if prop.Value, err = r.ReadString(maxProperty); err != nil {
			return err
		}
		signed, err := r.ReadBool()
		if err != nil {
			return err
		}
		if signed {
			sig, err := r.ReadString(1024)
			if err != nil {
				return err
			}
			prop.Signature = &sig
		}
	}
	return nil
}

func (p *LoginFinished) Handle(h ClientHandler) error { return h.HandleLoginFinished(p) }

// LoginCompression enables compression for every later frame in both
// directions. A negative threshold disables it.
type LoginCompression struct {
	Threshold int32
}

func (p *LoginCompression) ID() int32            { return LoginCompressionID }
func (p *LoginCompression) Write(w *wire.Writer) { w.WriteVarInt(p.Threshold) }

func (p *LoginCompression) Read(r *wire.Reader) (err error) {
	p.Threshold, err = r.ReadVarInt()
	return err
}

func (p *LoginCompression) Handle(h ClientHandler) error { return h.HandleLoginCompression(p) }

// ServerHandler handles serverbound login packets.
type ServerHandler interface {
	protocol.DisconnectHandler
	HandleHello(p *Hello) error
	HandleLoginAcknowledged(p *LoginAcknowledged) error
}

// ClientHandler handles clientbound login packets.
type ClientHandler interface {
	protocol.DisconnectHandler
	HandleLoginDisconnect(p *LoginDisconnect) error
	HandleLoginFinished(p *LoginFinished) error
	HandleLoginCompression(p *LoginCompression) error
}

type UnimplementedServerHandler struct{}

func (UnimplementedServerHandler) HandleHello(*Hello) error                         { return nil }
func (UnimplementedServerHandler) HandleLoginAcknowledged(*LoginAcknowledged) error { return nil }
func (UnimplementedServerHandler) HandleDisconnect()                                {}

type UnimplementedClientHandler struct{}

func (UnimplementedClientHandler) HandleLoginDisconnect(*LoginDisconnect) error   { return nil }
func (UnimplementedClientHandler) HandleLoginFinished(*LoginFinished) error       { return nil }
func (UnimplementedClientHandler) HandleLoginCompression(*LoginCompression) error { return nil }
func (UnimplementedClientHandler) HandleDisconnect()                              {}

// Protocol is the login phase registry.
var Protocol = newProtocol()

func newProtocol() *protocol.Protocol {
	p := protocol.New(protocol.Login)
	p.RegisterServerbound(HelloID, func() protocol.Packet { return &Hello{} })
	p.RegisterServerbound(LoginAcknowledgedID, func() protocol.Packet { return &LoginAcknowledged{} })
	p.RegisterClientbound(LoginDisconnectID, func() protocol.Packet { return &LoginDisconnect{} })
	p.RegisterClientbound(LoginFinishedID, func() protocol.Packet { return &LoginFinished{} })
	p.RegisterClientbound(LoginCompressionID, func() protocol.Packet { return &LoginCompression{} })
	return p
}
