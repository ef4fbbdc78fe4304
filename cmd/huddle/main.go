package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/outofforest/huddle"
	"github.com/outofforest/huddle/tcpnet"
	"github.com/outofforest/logger"
	"github.com/outofforest/parallel"
	"github.com/outofforest/run"
)

type message struct {
	Text string
}

type flags struct {
	Mode           string
	Name           string
	ServiceID      string
	Listen         string
	Peers          []string
	AppVersion     string
	RequireVersion string
	LegacyVersions []string
	Quiet          bool
}

func main() {
	var f flags

	flagSet := pflag.NewFlagSet("huddle", pflag.ContinueOnError)
	flagSet.StringVar(&f.Mode, "mode", "server", "server or client")
	flagSet.StringVar(&f.Name, "name", "", "display name of the local peer")
	flagSet.StringVar(&f.ServiceID, "service", huddle.DefaultServiceID, "service id to advertise or browse")
	flagSet.StringVar(&f.Listen, "listen", "localhost:7777", "address to accept connections on, empty disables listening")
	flagSet.StringSliceVar(&f.Peers, "peers", nil, "addresses probed when browsing")
	flagSet.StringVar(&f.AppVersion, "app-version", "", "app version sent in the handshake by client")
	flagSet.StringVar(&f.RequireVersion, "require-version", "", "app version required by server from clients")
	flagSet.StringSliceVar(&f.LegacyVersions, "legacy-versions", nil, "versions embedded in the display name accepted by server")
	flagSet.BoolVar(&f.Quiet, "quiet", false, "disable logging")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	run.New().Run(context.Background(), "huddle", func(ctx context.Context) error {
		if f.Quiet {
			ctx = logger.WithLogger(ctx, zap.NewNop())
		}
		return start(ctx, f)
	})
}

func start(ctx context.Context, f flags) error {
	if err := huddle.ValidateDisplayName(f.Name); err != nil {
		return err
	}

	var ls net.Listener
	if f.Listen != "" {
		var err error
		ls, err = net.Listen("tcp", f.Listen)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	node := tcpnet.New(tcpnet.Config{Peers: f.Peers})
	config := huddle.Config{DisplayName: f.Name, ServiceID: f.ServiceID}

	var coordinator interface {
		huddle.Coordinator
		Run(ctx context.Context) error
		Send(content any, peers ...huddle.PeerID) error
	}
	switch f.Mode {
	case "server":
		coordinator = newServer(f, config, node)
	case "client":
		coordinator = newClient(ctx, f, config, node)
	default:
		return errors.Errorf("unknown mode %q", f.Mode)
	}

	huddle.Subscribe(coordinator, func(env huddle.Envelope[message], from huddle.PeerID) {
		fmt.Printf("%s: %s\n", from.DisplayNameWithoutVersion(), env.Content.Text)
	})

	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("node", parallel.Fail, func(ctx context.Context) error {
			return node.Run(ctx, ls)
		})
		spawn("coordinator", parallel.Fail, coordinator.Run)
		spawn("input", parallel.Continue, func(ctx context.Context) error {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				if err := coordinator.Send(message{Text: scanner.Text()}); err != nil {
					logger.Get(ctx).Error("Sending message failed", zap.Error(err))
				}
			}
			return errors.WithStack(scanner.Err())
		})
		return nil
	})
}

func newServer(f flags, config huddle.Config, node *tcpnet.Node) *huddle.Server {
	serverConfig := huddle.ServerConfig{
		Config:         config,
		LegacyVersions: f.LegacyVersions,
	}
	if f.RequireVersion != "" {
		serverConfig.Admission = func(peer huddle.PeerID, request huddle.HandshakeRequest) huddle.HandshakeResponse {
			if request.AppVersion != f.RequireVersion {
				return huddle.HandshakeResponse{Reason: "app version " + f.RequireVersion + " is required"}
			}
			return huddle.HandshakeResponse{Allowed: true}
		}
	}

	server := huddle.NewServer(serverConfig, node)
	server.Observe(func(event huddle.Event) {
		switch e := event.(type) {
		case huddle.PeerConnected:
			fmt.Printf("* %s joined\n", e.Peer.DisplayNameWithoutVersion())
		case huddle.PeerDisconnected:
			fmt.Printf("* %s left\n", e.Peer.DisplayNameWithoutVersion())
		case huddle.PeerRejected:
			fmt.Printf("* %s rejected %s\n", e.Peer.DisplayNameWithoutVersion(), e.Reason)
		}
	})
	return server
}

func newClient(ctx context.Context, f flags, config huddle.Config, node *tcpnet.Node) *huddle.Client {
	log := logger.Get(ctx)

	client := huddle.NewClient(config, node)
	client.Observe(func(event huddle.Event) {
		switch e := event.(type) {
		case huddle.PeerFound:
			if _, ok := client.ServerPeer(); ok {
				return
			}
			fmt.Printf("* joining %s\n", e.Peer.DisplayNameWithoutVersion())
			if err := client.Connect(e.Peer, huddle.HandshakeRequest{
				DeviceDetails: "huddle cli",
				AppVersion:    f.AppVersion,
			}); err != nil {
				log.Error("Connecting failed", zap.Stringer("peer", e.Peer), zap.Error(err))
			}
		case huddle.ConnectionChanged:
			if e.Connected {
				fmt.Printf("* connected to %s\n", e.Peer.DisplayNameWithoutVersion())
			} else {
				fmt.Printf("* disconnected from %s\n", e.Peer.DisplayNameWithoutVersion())
			}
		case huddle.Kicked:
			fmt.Printf("* kicked by %s %s\n", e.Peer.DisplayNameWithoutVersion(), e.Reason)
		}
	})
	return client
}
