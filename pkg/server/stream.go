package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/resourcemap/pkg/errors"
	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/pipeline"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait).
	pingPeriod = (pongWait * 9) / 10
)

// StreamRequest is one layout request on the stream. Seq must increase.
type StreamRequest struct {
	Seq         int64       `json:"seq"`
	Graph       *graph.Node `json:"graph"`
	AspectRatio float64     `json:"aspect_ratio,omitempty"`
}

// StreamResponse answers the request with the same Seq.
type StreamResponse struct {
	Seq    int64         `json:"seq"`
	Cached bool          `json:"cached,omitempty"`
	Result *graph.Result `json:"result,omitempty"`
	Error  *errorDetail  `json:"error,omitempty"`
}

type streamReply struct {
	resp StreamResponse
	// layout replies are dropped once a newer request arrived
	layout bool
}

// handleStream serves layouts over a WebSocket. Each new request cancels the
// one in flight, and replies to superseded requests are never sent.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var latest atomic.Int64
	out := make(chan streamReply, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer conn.Close()
		defer cancel()
		s.writePump(ctx, conn, out, &latest)
	}()

	conn.SetReadLimit(s.maxBody)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	var wg sync.WaitGroup
	cancelPrev := context.CancelFunc(func() {})
	send := func(reply streamReply) {
		select {
		case out <- reply:
		case <-ctx.Done():
		}
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("stream read failed", "error", err)
			}
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var req StreamRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			detail := errorFor(errors.Wrap(errors.ErrCodeInvalidInput, err, "decode stream message"))
			send(streamReply{resp: StreamResponse{Error: &detail}})
			continue
		}
		if err := prepareGraph(req.Graph); err != nil {
			detail := errorFor(err)
			send(streamReply{resp: StreamResponse{Seq: req.Seq, Error: &detail}})
			continue
		}

		// Publish the new seq before cancelling, so the superseded reply
		// is already stale when it reaches the writer.
		latest.Store(req.Seq)
		cancelPrev()
		reqCtx, reqCancel := context.WithCancel(ctx)
		cancelPrev = reqCancel

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer reqCancel()
			send(streamReply{resp: s.streamLayout(reqCtx, req), layout: true})
		}()
	}

	cancelPrev()
	cancel()
	wg.Wait()
	<-writerDone
}

func (s *Server) streamLayout(ctx context.Context, req StreamRequest) StreamResponse {
	res, hit, err := s.runner.LayoutWithCacheInfo(ctx, req.Graph, pipeline.Options{AspectRatio: req.AspectRatio})
	if err != nil {
		detail := errorFor(err)
		return StreamResponse{Seq: req.Seq, Error: &detail}
	}
	return StreamResponse{Seq: req.Seq, Cached: hit, Result: &res}
}

func (s *Server) writePump(ctx context.Context, conn *websocket.Conn, out <-chan streamReply, latest *atomic.Int64) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case reply := <-out:
			if reply.layout && reply.resp.Seq < latest.Load() {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(reply.resp); err != nil {
				s.logger.Debug("stream write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
