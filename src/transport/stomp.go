package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
)

const (
	stompVersion = "1.2"

	hdrAcceptVersion = "accept-version"
	hdrHost          = "host"
	hdrHeartBeat     = "heart-beat"
	hdrDestination   = "destination"
	hdrID            = "id"
	hdrAck           = "ack"
	hdrSubscription  = "subscription"
	hdrMessageID     = "message-id"
	hdrContentType   = "content-type"
	hdrMessage       = "message"
)

var heartbeatPayload = []byte("\n")

func encodeFrame(f *frame.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := frame.NewWriter(&buf).Write(f); err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", f.Command, err)
	}
	return buf.Bytes(), nil
}

// decodeFrames parses every frame carried by one websocket message. Heart-beat
// EOLs before or between frames are skipped, so a message holding only
// heart-beats yields no frames and a nil error. Frames read before a malformed
// one are returned along with the error.
func decodeFrames(data []byte) ([]*frame.Frame, error) {
	data = bytes.TrimLeft(data, "\r\n")
	if len(data) == 0 {
		return nil, nil
	}
	r := frame.NewReader(bytes.NewReader(data))
	var frames []*frame.Frame
	for {
		f, err := r.Read()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("decode frame: %w", err)
		}
		if f != nil {
			frames = append(frames, f)
		}
	}
}

func connectFrame(host string, out, in time.Duration, headers map[string]string) *frame.Frame {
	f := frame.New(frame.CONNECT,
		hdrAcceptVersion, stompVersion,
		hdrHost, host,
		hdrHeartBeat, formatHeartBeat(out, in),
	)
	addHeaders(f, headers)
	return f
}

func subscribeFrame(id, destination string, headers map[string]string) *frame.Frame {
	f := frame.New(frame.SUBSCRIBE,
		hdrID, id,
		hdrDestination, destination,
		hdrAck, "auto",
	)
	addHeaders(f, headers)
	return f
}

func unsubscribeFrame(id string) *frame.Frame {
	return frame.New(frame.UNSUBSCRIBE, hdrID, id)
}

func sendFrame(destination string, body []byte, headers map[string]string) *frame.Frame {
	f := frame.New(frame.SEND,
		hdrDestination, destination,
		hdrContentType, "application/json",
	)
	addHeaders(f, headers)
	f.Body = body
	return f
}

func addHeaders(f *frame.Frame, headers map[string]string) {
	for k, v := range headers {
		f.Header.Add(k, v)
	}
}

func formatHeartBeat(out, in time.Duration) string {
	return strconv.FormatInt(out.Milliseconds(), 10) + "," + strconv.FormatInt(in.Milliseconds(), 10)
}

// parseHeartBeat reads a "sx,sy" heart-beat header. Malformed values disable heart-beats.
func parseHeartBeat(v string) (out, in time.Duration) {
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return 0, 0
	}
	sx, err1 := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	sy, err2 := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err1 != nil || err2 != nil || sx < 0 || sy < 0 {
		return 0, 0
	}
	return time.Duration(sx) * time.Millisecond, time.Duration(sy) * time.Millisecond
}

// negotiateHeartBeat applies the STOMP rule: each direction uses the larger of
// what one side can send and the other side wants, or 0 if either side opts out.
func negotiateHeartBeat(clientOut, clientIn time.Duration, serverHeader string) (send, expect time.Duration) {
	serverOut, serverIn := parseHeartBeat(serverHeader)
	if clientOut > 0 && serverIn > 0 {
		send = max(clientOut, serverIn)
	}
	if clientIn > 0 && serverOut > 0 {
		expect = max(clientIn, serverOut)
	}
	return send, expect
}
