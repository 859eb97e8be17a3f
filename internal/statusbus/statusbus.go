// Package statusbus implements the StatusBus (spec.md §2, §6): a
// one-to-many notifier that relays engine signals to the GUI observer.
// The fan-out pattern (subscribe/unsubscribe channel registry) is
// adapted from the teacher's window.Manager; the HTTP/WS front end is
// adapted from the teacher's internal/api.Server.
package statusbus

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/bryanchriswhite/vcsengine/internal/logger"
	"github.com/bryanchriswhite/vcsengine/internal/modestore"
)

// SignalKind is one of the closed set of observer-facing signals
// (spec.md §6). Every kind must be handled by the observer.
type SignalKind string

const (
	NewKnownMode            SignalKind = "new_known_mode"
	NewKnownAlias           SignalKind = "new_known_alias"
	ClearKnownModes         SignalKind = "clear_known_modes"
	ClearKnownAliases       SignalKind = "clear_known_aliases"
	NewModeSettingsSourceFile SignalKind = "new_mode_settings_source_file"
	UpdateVideoParams       SignalKind = "update_video_params"
	UpdateCaptureSignalInfo SignalKind = "update_capture_signal_info"
	SetNoSignal             SignalKind = "set_no_signal"
	SetReceivingSignal      SignalKind = "set_receiving_signal"
	NewLogEntry             SignalKind = "new_log_entry"
	UpdateWindowSize        SignalKind = "update_window_size"
)

// Signal is one event dispatched to every subscriber.
type Signal struct {
	Kind SignalKind  `json:"kind"`
	Data interface{} `json:"data,omitempty"`
}

// Bus fans a signal out to every subscriber channel.
type Bus struct {
	mu        sync.Mutex
	listeners []chan Signal
}

func New() *Bus {
	return &Bus{}
}

// Subscribe registers a new listener channel.
func (b *Bus) Subscribe() chan Signal {
	ch := make(chan Signal, 32)
	b.mu.Lock()
	b.listeners = append(b.listeners, ch)
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (b *Bus) Unsubscribe(ch chan Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.listeners {
		if l == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// Publish dispatches a signal to every current subscriber, dropping it
// for any subscriber whose buffer is full rather than blocking the
// pipeline thread (spec.md §5: the pipeline never blocks on a consumer).
func (b *Bus) Publish(sig Signal) {
	b.mu.Lock()
	listeners := append([]chan Signal(nil), b.listeners...)
	b.mu.Unlock()

	for _, l := range listeners {
		select {
		case l <- sig:
		default:
			logger.WithComponent("statusbus").Warn().Str("kind", string(sig.Kind)).Msg("dropping signal, subscriber buffer full")
		}
	}
}

func (b *Bus) NewKnownMode(r modestore.Resolution) {
	b.Publish(Signal{Kind: NewKnownMode, Data: r})
}

func (b *Bus) NewKnownAlias(a modestore.Alias) {
	b.Publish(Signal{Kind: NewKnownAlias, Data: a})
}

func (b *Bus) ClearKnownModes() { b.Publish(Signal{Kind: ClearKnownModes}) }

func (b *Bus) ClearKnownAliases() { b.Publish(Signal{Kind: ClearKnownAliases}) }

func (b *Bus) NewModeSettingsSourceFile(path string) {
	b.Publish(Signal{Kind: NewModeSettingsSourceFile, Data: path})
}

func (b *Bus) UpdateVideoParams(params modestore.ModeParams) {
	b.Publish(Signal{Kind: UpdateVideoParams, Data: params})
}

func (b *Bus) UpdateCaptureSignalInfo(info interface{}) {
	b.Publish(Signal{Kind: UpdateCaptureSignalInfo, Data: info})
}

func (b *Bus) SetNoSignal() { b.Publish(Signal{Kind: SetNoSignal}) }

func (b *Bus) SetReceivingSignal() { b.Publish(Signal{Kind: SetReceivingSignal}) }

func (b *Bus) NewLogEntry(entry string) {
	b.Publish(Signal{Kind: NewLogEntry, Data: entry})
}

func (b *Bus) UpdateWindowSize(w, h int) {
	b.Publish(Signal{Kind: UpdateWindowSize, Data: [2]int{w, h}})
}

// Server is the HTTP/WS front end the GUI observer connects to.
type Server struct {
	router   *mux.Router
	bus      *Bus
	upgrader websocket.Upgrader
}

// NewServer wires routes for a WS signal stream and a metrics handler
// registered by the caller (internal/metrics).
func NewServer(bus *Bus) *Server {
	s := &Server{
		router: mux.NewRouter(),
		bus:    bus,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.router.HandleFunc("/signals", s.handleSignalStream)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	return s
}

// Router exposes the underlying mux.Router so callers (e.g. the
// metrics package) can register additional routes like /metrics.
func (s *Server) Router() *mux.Router { return s.router }

func (s *Server) Start(addr string) error {
	logger.WithComponent("statusbus").Info().Str("addr", addr).Msg("status bus listening")
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleSignalStream(w http.ResponseWriter, r *http.Request) {
	log := logger.WithComponent("statusbus")
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := s.bus.Subscribe()
	defer s.bus.Unsubscribe(updates)

	for sig := range updates {
		if err := conn.WriteJSON(sig); err != nil {
			log.Debug().Err(err).Msg("websocket write failed, closing stream")
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
