package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Tnze/go-mc/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-mclib/transport/pkg/client"
	"github.com/go-mclib/transport/pkg/helpers"
	"github.com/go-mclib/transport/pkg/protocol/status"
)

func TestVersionShort(t *testing.T) {
	cmd := versionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--short"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "dev\n", out.String())
}

func TestPrintPingTable(t *testing.T) {
	ok := client.PingOutcome{
		Client: client.New("mc.example.com", "x"),
		Result: &client.PingResult{
			Address: client.Address{Host: "mc.example.com", Port: 25565},
			Status: status.Response{
				Version:     status.Version{Name: "1.21.8", Protocol: 772},
				Players:     &status.Players{Max: 20, Online: 3},
				Description: chat.Text("hello"),
			},
			Latency: 12 * time.Millisecond,
		},
	}
	failed := client.PingOutcome{
		Client: client.New("down.example.com", "x"),
		Err:    errors.New("connection refused"),
	}

	var out bytes.Buffer
	printPingTable(&out, []client.PingOutcome{ok, failed})
	s := out.String()
	assert.Contains(t, s, "mc.example.com:25565")
	assert.Contains(t, s, "772")
	assert.Contains(t, s, "3/20")
	assert.Contains(t, s, "12ms")
	assert.Contains(t, s, "hello")
	assert.Contains(t, s, "error: connection refused")
}

func TestPingError(t *testing.T) {
	ok := client.PingOutcome{}
	bad := client.PingOutcome{Err: errors.New("x")}
	assert.NoError(t, pingError([]client.PingOutcome{ok, bad}))
	assert.Error(t, pingError([]client.PingOutcome{bad, bad}))
}

func TestPingerRejectsBadAddress(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &pinger{ctx: ctx, cancel: cancel, flags: helpers.Flags{Cipher: "portable"}}
	assert.ErrorIs(t, p.Submit("host:99999"), client.ErrInvalidAddress)
	require.NoError(t, p.Close())
	assert.Error(t, ctx.Err())
}
