// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wtserver runs a WebTransport-over-HTTP/3 test server that echoes
// every datagram and every unidirectional WebTransport stream it receives
// back to the peer that sent it. Bidirectional streams are not accepted.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
	"github.com/wt3go/webtransport"
)

func main() {
	app := &cli.App{
		Name:  "wtserver",
		Usage: "WebTransport-over-HTTP/3 test server",
		Commands: []*cli.Command{
			serveCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "accept WebTransport sessions and echo datagrams and unidirectional streams",
	Flags: []cli.Flag{
		&cli.UintFlag{
			Name:  "port",
			Value: 4443,
			Usage: "UDP port to listen on",
		},
		&cli.StringFlag{
			Name:  "cert-hash",
			Usage: "hex SHA-1 thumbprint of the serving certificate, resolved via CertificateHashResolver",
		},
		&cli.StringFlag{
			Name:  "cert",
			Usage: "path to a certificate file; with --cert-hash it is loaded and checked against the thumbprint",
		},
		&cli.StringFlag{
			Name:  "key",
			Usage: "path to the certificate's private key file; also loaded when --cert-hash is set",
		},
		&cli.StringSliceFlag{
			Name:  "allowed-origin",
			Usage: "origin allowed to connect; repeatable. Unset allows all origins",
		},
	},
	Action: runServe,
}

func runServe(c *cli.Context) error {
	logger := webtransport.NewDefaultLogger()

	server := &webtransport.Server{
		ListenAddr:     fmt.Sprintf(":%d", c.Uint("port")),
		AllowedOrigins: c.StringSlice("allowed-origin"),
		Logger:         &logger,
		Handler:        handleSession,
	}

	if hash := c.String("cert-hash"); hash != "" {
		server.CertHash = hash
		server.CertHashResolver = webtransport.FileThumbprintResolver{
			CertFile: webtransport.CertFile{Path: c.String("cert")},
			KeyFile:  webtransport.CertFile{Path: c.String("key")},
		}
	} else {
		server.TLSCert = webtransport.CertFile{Path: c.String("cert")}
		server.TLSKey = webtransport.CertFile{Path: c.String("key")}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// handleSession echoes every datagram and every incoming unidirectional
// stream back to the peer, for exercising a client against this server.
func handleSession(sess *webtransport.Session) {
	go func() {
		for {
			msg, err := sess.ReceiveDatagram(sess.Context())
			if err != nil {
				return
			}
			sess.SendDatagram(msg)
		}
	}()

	for {
		stream, err := sess.AcceptUniStream(sess.Context())
		if err != nil {
			return
		}
		go func() {
			out, err := sess.OpenUniStreamSync(sess.Context())
			if err != nil {
				return
			}
			defer out.Close()
			io.Copy(&out, &stream)
		}()
	}
}
