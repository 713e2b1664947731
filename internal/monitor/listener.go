// Package monitor implements the per-runner monitor endpoint described in
// spec.md §4.6: it accepts exactly one connection from an action's child
// process within a bounded wait, decodes a stream of framed outcome/output
// events, and invokes handler callbacks until the child signals completion
// or the connection drops.
//
// Grounded on the teacher's WebSocket-gateway idiom (internal/api/
// monitor_ws.go, internal/api/websocket.go): the same upgrader/connection-
// loop shape, narrowed from a fan-out broadcaster accepting many clients to
// a listener that accepts exactly one.
package monitor

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

// Handler receives callbacks from a Monitor connection. Callbacks for one
// action are invoked in the order the child sent them.
type Handler interface {
	// Output streams one line of console output to the caller; it must not
	// mutate ledger or kill-timer state.
	Output(outcomeName, line string)
	// OutcomeReceived reports one completed outcome; implementations renew
	// the kill-timer here ("one slow method does not kill the whole
	// suite", spec.md §4.4 step 7).
	OutcomeReceived(Envelope)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Listen binds port, waits up to acceptTimeout for exactly one child
// connection, and streams envelopes to handler until a KindDone frame
// arrives or the connection is lost. It returns true if the stream ended
// cleanly, false on accept timeout, connection loss, or protocol error.
//
// conns, if non-nil, is incremented once per connection outcome: "accepted"
// for the one connection that wins the race, "dropped" for any further
// connection attempt on the same listener, and "timeout" if acceptTimeout
// elapses with nobody connecting.
func Listen(port int, handler Handler, acceptTimeout time.Duration, logger *slog.Logger, conns *prometheus.CounterVec) bool {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		if logger != nil {
			logger.Error("monitor listen failed", "port", port, "error", err)
		}
		return false
	}
	defer ln.Close()

	connCh := make(chan *websocket.Conn, 1)
	var once sync.Once

	mux := http.NewServeMux()
	mux.HandleFunc("/monitor", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted := false
		once.Do(func() {
			accepted = true
			connCh <- conn
		})
		if !accepted {
			conn.Close()
			incMonitorConn(conns, "dropped")
		}
	})

	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)
	defer srv.Close()

	select {
	case conn := <-connCh:
		incMonitorConn(conns, "accepted")
		return readStream(conn, handler)
	case <-time.After(acceptTimeout):
		incMonitorConn(conns, "timeout")
		return false
	}
}

func incMonitorConn(conns *prometheus.CounterVec, outcome string) {
	if conns != nil {
		conns.WithLabelValues(outcome).Inc()
	}
}

func readStream(conn *websocket.Conn, handler Handler) bool {
	defer conn.Close()

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return false
		}

		switch env.Kind {
		case KindOutput:
			handler.Output(env.OutcomeName, env.Line)
		case KindOutcome:
			handler.OutcomeReceived(env)
		case KindDone:
			return true
		default:
			return false
		}
	}
}
