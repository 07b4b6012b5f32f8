// Package cardbridge exposes a slot.Slot's insert/remove/status and
// driver-level sector I/O to a browser or external tool as JSON
// commands over a WebSocket connection, grounded on the teacher's
// webui/trayapp web servers (gobwas/ws + wsutil).
package cardbridge

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/saxbophone/wondercard/card"
	"github.com/saxbophone/wondercard/driver"
	"github.com/saxbophone/wondercard/protocol"
	"github.com/saxbophone/wondercard/slot"
)

// Server exposes a *slot.Slot over WebSocket JSON commands. Each
// connected client shares the same underlying slot.
type Server struct {
	slot *slot.Slot
	mux  *http.ServeMux
}

// New returns a Server serving operations against s.
func New(s *slot.Slot) *Server {
	srv := &Server{
		slot: s,
		mux:  http.NewServeMux(),
	}
	srv.mux.Handle("/ws", http.HandlerFunc(srv.handleWebSocket))
	srv.mux.Handle("/", http.HandlerFunc(srv.handleStatusPage))
	return srv
}

// handleStatusPage serves a plain-text status page at "/" reporting
// whether the slot is occupied.
func (s *Server) handleStatusPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "occupied: %v\n", s.slot.Occupied())
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts an HTTP server on addr serving the WebSocket
// endpoint and the status page.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		log.Println(err)
		return
	}
	go s.handleConn(conn)
}

// request is a single JSON command sent by the client.
type request struct {
	Command string `json:"command"`
	Sector  int    `json:"sector,omitempty"`
	Data    []byte `json:"data,omitempty"` // base64-encoded by encoding/json
}

// response is the JSON reply to one request.
type response struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Occupied bool   `json:"occupied,omitempty"`
	Result   string `json:"result,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	var (
		r       = wsutil.NewReader(conn, ws.StateServerSide)
		decoder = json.NewDecoder(r)
		w       = wsutil.NewWriter(conn, ws.StateServerSide, ws.OpText)
		encoder = json.NewEncoder(w)
	)

	for {
		hdr, err := r.NextFrame()
		if err != nil {
			return
		}
		if hdr.OpCode == ws.OpClose {
			return
		}
		if hdr.OpCode != ws.OpText {
			if err := r.Discard(); err != nil {
				return
			}
			continue
		}

		var req request
		if err := decoder.Decode(&req); err != nil {
			log.Println(fmt.Errorf("cardbridge: decode request: %w", err))
			return
		}

		resp := s.dispatch(req)

		if err := encoder.Encode(&resp); err != nil {
			log.Println(fmt.Errorf("cardbridge: encode response: %w", err))
			return
		}
		if err := w.Flush(); err != nil {
			log.Println(fmt.Errorf("cardbridge: flush response: %w", err))
			return
		}
	}
}

func (s *Server) dispatch(req request) response {
	switch req.Command {
	case "insert":
		if err := s.slot.Insert(card.New()); err != nil {
			return response{OK: false, Error: err.Error()}
		}
		return response{OK: true, Occupied: true}

	case "remove":
		if err := s.slot.Remove(); err != nil {
			return response{OK: false, Error: err.Error()}
		}
		return response{OK: true, Occupied: false}

	case "status":
		return response{OK: true, Occupied: s.slot.Occupied()}

	case "read_sector":
		out := make([]byte, protocol.SectorSize)
		result := driver.ReadSector(s.slot, req.Sector, out)
		return response{OK: result == driver.Success, Result: result.String(), Data: out}

	case "write_sector":
		if len(req.Data) != protocol.SectorSize {
			return response{OK: false, Error: fmt.Sprintf("cardbridge: write_sector: expected %d data bytes, got %d", protocol.SectorSize, len(req.Data))}
		}
		result := driver.WriteSector(s.slot, req.Sector, req.Data)
		return response{OK: result == driver.Success, Result: result.String()}

	default:
		return response{OK: false, Error: fmt.Sprintf("cardbridge: unknown command %q", req.Command)}
	}
}
