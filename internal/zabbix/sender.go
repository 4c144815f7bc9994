// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package zabbix

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net"
	"regexp"
	"strconv"
	"time"
)

// Sender defaults.
const (
	DefaultSenderPort    = 10051
	DefaultSenderTimeout = 10 * time.Second
	DefaultChunkSize     = 250

	// maxResponseSize bounds how much of a server answer is read.
	maxResponseSize = 1 << 20
)

var protocolHeader = []byte("ZBXD\x01")

// Sender pushes values to a Zabbix server or proxy trapper port.
type Sender struct {
	addr      string
	timeout   time.Duration
	chunkSize int
	dialer    net.Dialer
	now       func() time.Time
}

// SenderOptions holds configuration for creating a Sender.
type SenderOptions struct {
	Host      string        // Server or proxy host
	Port      int           // Trapper port (default 10051)
	Timeout   time.Duration // Per-connection timeout
	ChunkSize int           // Values per request (default 250)
}

// NewSender creates a Sender from options.
func NewSender(opts SenderOptions) *Sender {
	port := opts.Port
	if port == 0 {
		port = DefaultSenderPort
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultSenderTimeout
	}
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	return &Sender{
		addr:      net.JoinHostPort(opts.Host, strconv.Itoa(port)),
		timeout:   timeout,
		chunkSize: chunk,
		dialer:    net.Dialer{Timeout: timeout},
		now:       time.Now,
	}
}

// Addr returns the host:port the sender delivers to.
func (s *Sender) Addr() string {
	return s.addr
}

type senderValue struct {
	Host  string `json:"host"`
	Key   string `json:"key"`
	Value string `json:"value"`
	Clock int64  `json:"clock"`
	NS    int64  `json:"ns"`
}

type senderRequest struct {
	Request string        `json:"request"`
	Data    []senderValue `json:"data"`
	Clock   int64         `json:"clock"`
	NS      int64         `json:"ns"`
}

type senderResponse struct {
	Response string `json:"response"`
	Info     string `json:"info"`
}

// Send delivers metrics in chunks. The first failing chunk aborts the call;
// the returned result covers the chunks accepted so far.
func (s *Sender) Send(ctx context.Context, metrics []Metric) (SendResult, error) {
	var total SendResult
	for start := 0; start < len(metrics); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(metrics) {
			end = len(metrics)
		}
		res, err := s.sendChunk(ctx, metrics[start:end])
		if err != nil {
			return total, fmt.Errorf("send to %s: %w", s.addr, err)
		}
		total.Processed += res.Processed
		total.Failed += res.Failed
		total.Total += res.Total
	}
	return total, nil
}

func (s *Sender) sendChunk(ctx context.Context, metrics []Metric) (SendResult, error) {
	now := s.now()
	req := senderRequest{
		Request: "sender data",
		Data:    make([]senderValue, 0, len(metrics)),
		Clock:   now.Unix(),
		NS:      int64(now.Nanosecond()),
	}
	for _, m := range metrics {
		clock, ns := splitClock(m.Clock)
		req.Data = append(req.Data, senderValue{
			Host:  m.Host,
			Key:   m.Key,
			Value: strconv.FormatFloat(m.Value, 'f', -1, 64),
			Clock: clock,
			NS:    ns,
		})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("marshal request: %w", err)
	}

	conn, err := s.dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return SendResult{}, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return SendResult{}, fmt.Errorf("set deadline: %w", err)
	}

	if _, err := conn.Write(EncodePacket(payload)); err != nil {
		return SendResult{}, fmt.Errorf("write request: %w", err)
	}

	body, err := ReadPacket(conn)
	if err != nil {
		return SendResult{}, fmt.Errorf("read response: %w", err)
	}

	var resp senderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return SendResult{}, fmt.Errorf("decode response: %w", err)
	}
	if resp.Response != "success" {
		return SendResult{}, fmt.Errorf("server answered %q: %s", resp.Response, resp.Info)
	}
	return ParseInfo(resp.Info), nil
}

// EncodePacket frames a payload with the ZBXD header and length.
func EncodePacket(payload []byte) []byte {
	buf := make([]byte, 0, len(protocolHeader)+8+len(payload))
	buf = append(buf, protocolHeader...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(payload)))
	return append(buf, payload...)
}

// ReadPacket reads one framed packet and returns its payload.
func ReadPacket(r io.Reader) ([]byte, error) {
	header := make([]byte, len(protocolHeader)+8)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	if !bytes.Equal(header[:len(protocolHeader)], protocolHeader) {
		return nil, fmt.Errorf("unexpected header %q", header[:len(protocolHeader)])
	}
	size := binary.LittleEndian.Uint64(header[len(protocolHeader):])
	if size > maxResponseSize {
		return nil, fmt.Errorf("packet too large: %d bytes", size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

var infoPattern = regexp.MustCompile(`processed:\s*(\d+);\s*failed:\s*(\d+);\s*total:\s*(\d+)`)

// ParseInfo extracts counters from a sender response info string such as
// "processed: 1; failed: 0; total: 1; seconds spent: 0.000055".
func ParseInfo(info string) SendResult {
	m := infoPattern.FindStringSubmatch(info)
	if m == nil {
		return SendResult{}
	}
	processed, _ := strconv.Atoi(m[1])
	failed, _ := strconv.Atoi(m[2])
	total, _ := strconv.Atoi(m[3])
	return SendResult{Processed: processed, Failed: failed, Total: total}
}

// splitClock splits Unix seconds into clock and ns, with ns in [0, 1e9).
func splitClock(ts float64) (int64, int64) {
	sec, frac := math.Modf(ts)
	clock, ns := int64(sec), int64(math.Round(frac*1e9))
	if ns < 0 {
		clock--
		ns += 1e9
	}
	if ns >= 1e9 {
		clock++
		ns -= 1e9
	}
	return clock, ns
}
