package main

import (
	"github.com/outofforest/huddle/wire"
	"github.com/outofforest/proton"
)

//go:generate go run .
func main() {
	proton.Generate("../types.proton.go",
		proton.Message[wire.Kick](),
		proton.Message[wire.Raw](),
		proton.Message[wire.Envelope](),
		proton.Message[wire.HandshakeRequest](),
		proton.Message[wire.Hello](),
		proton.Message[wire.Invite](),
		proton.Message[wire.InviteReply](),
		proton.Message[wire.Data](),
	)
}
