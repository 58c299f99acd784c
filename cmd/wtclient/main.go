// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wtclient dials a WebTransport-over-HTTP/3 server and, once the
// session is Established, echoes datagrams read from stdin.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
	"github.com/wt3go/webtransport"
)

func main() {
	app := &cli.App{
		Name:  "wtclient",
		Usage: "WebTransport-over-HTTP/3 test client",
		Commands: []*cli.Command{
			connectCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var connectCommand = &cli.Command{
	Name:  "connect",
	Usage: "connect to a WebTransport server and exchange datagrams",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "server",
			Value: "127.0.0.1",
			Usage: "server host or IP",
		},
		&cli.UintFlag{
			Name:  "port",
			Value: 4443,
			Usage: "server UDP port",
		},
		&cli.StringFlag{
			Name:  "path",
			Value: "/webtransport",
			Usage: "CONNECT :path pseudo-header",
		},
		&cli.BoolFlag{
			Name:  "insecure",
			Usage: "skip TLS certificate verification",
		},
	},
	Action: runConnect,
}

func runConnect(c *cli.Context) error {
	logger := webtransport.NewDefaultLogger()

	client := &webtransport.Client{
		Config: webtransport.ClientConfig{
			ServerAddr:         c.String("server"),
			ServerPort:         uint16(c.Uint("port")),
			Path:               c.String("path"),
			InsecureSkipVerify: c.Bool("insecure"),
			Logger:             &logger,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess, err := client.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	logger.Info().Str("session", sess.ID().String()).Msg("session established")

	go func() {
		for {
			msg, err := sess.ReceiveDatagram(ctx)
			if err != nil {
				return
			}
			fmt.Printf("< %s\n", msg)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := sess.SendDatagram(scanner.Bytes()); err != nil {
			logger.Error().Err(err).Msg("send datagram")
		}
	}

	sess.CloseSession()
	return nil
}
