// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Metrics for webtransport package, exposed on a package-level
// prometheus.Registry that the caller mounts under /metrics themselves; this
// package never starts an HTTP server of its own.

package webtransport

import "github.com/prometheus/client_golang/prometheus"

// Registry collects every metric this package registers. Callers wire it
// into their own promhttp.Handler.
var Registry = prometheus.NewRegistry()

var (
	framesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webtransport_frames_sent_total",
		Help: "HTTP/3 frames written, by frame type.",
	}, []string{"type"})

	framesReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webtransport_frames_received_total",
		Help: "HTTP/3 frames parsed, by frame type.",
	}, []string{"type"})

	bytesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webtransport_bytes_sent_total",
		Help: "Bytes written, by stream class.",
	}, []string{"stream_class"})

	bytesReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webtransport_bytes_received_total",
		Help: "Bytes read, by stream class.",
	}, []string{"stream_class"})

	sessionsEstablished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webtransport_sessions_established_total",
		Help: "Sessions that reached the Established state.",
	})

	sessionsClosed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webtransport_sessions_closed_total",
		Help: "Sessions that reached Closed, by classifying error kind.",
	}, []string{"kind"})

	qpackOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webtransport_qpack_operations_total",
		Help: "QPACK encode/decode invocations.",
	}, []string{"op"})
)

func init() {
	Registry.MustRegister(
		framesSent, framesReceived,
		bytesSent, bytesReceived,
		sessionsEstablished, sessionsClosed,
		qpackOperations,
	)
}

func recordFrameSent(frameType string)     { framesSent.WithLabelValues(frameType).Inc() }
func recordFrameReceived(frameType string) { framesReceived.WithLabelValues(frameType).Inc() }

func recordBytesSent(streamClass string, n int) {
	bytesSent.WithLabelValues(streamClass).Add(float64(n))
}

func recordBytesReceived(streamClass string, n int) {
	bytesReceived.WithLabelValues(streamClass).Add(float64(n))
}

func recordSessionEstablished() { sessionsEstablished.Inc() }

func recordSessionClosed(kind ErrorKind) {
	sessionsClosed.WithLabelValues(kind.String()).Inc()
}

func recordQPACKOp(op string) { qpackOperations.WithLabelValues(op).Inc() }
