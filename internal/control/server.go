//Package control serves a strip over a websocket. Commands are JSON objects, every one is answered
//with the state of the strip after it ran.
package control

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/DerLukas15/ledstrip"
)

// Errors
var (
	ErrUnknownOp = errors.New("unknown op")
	ErrNoColor   = errors.New("color missing")
)

//Command is one request. Which fields are used depends on Op.
/*
	show       Color
	pixel      Index (1-based), Color
	brightness Value (percent)
	on, off, clear, state
	shift      Value
	rotate     Value
	rainbow    Start, End (hues)
*/
type Command struct {
	Op    string  `json:"op"`
	Index int     `json:"index,omitempty"`
	Color *uint32 `json:"color,omitempty"`
	Value int     `json:"value,omitempty"`
	Start int     `json:"start,omitempty"`
	End   int     `json:"end,omitempty"`
}

//State is the answer to a Command.
type State struct {
	On         bool     `json:"on"`
	Lit        bool     `json:"lit"`
	Brightness int      `json:"brightness"`
	Power      int      `json:"power"`
	Pixels     []uint32 `json:"pixels"`
	Result     string   `json:"result,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type request struct {
	cmd   Command
	reply chan State
}

//Server runs commands against one Simple strip. Only the goroutine in Run touches the strip.
type Server struct {
	simple   *ledstrip.Simple
	requests chan request
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

//New returns a Server for s. Commands only run while Run is active.
func New(s *ledstrip.Simple, log zerolog.Logger) *Server {
	return &Server{
		simple:   s,
		requests: make(chan request),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

//Run executes commands until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	updateGauges(s.simple)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-s.requests:
			req.reply <- s.execute(req.cmd)
		}
	}
}

//Do hands cmd to Run and waits for the result.
func (s *Server) Do(ctx context.Context, cmd Command) (State, error) {
	req := request{cmd: cmd, reply: make(chan State, 1)}
	select {
	case <-ctx.Done():
		return State{}, ctx.Err()
	case s.requests <- req:
	}
	select {
	case <-ctx.Done():
		return State{}, ctx.Err()
	case st := <-req.reply:
		return st, nil
	}
}

func (s *Server) execute(cmd Command) State {
	v, err := s.apply(cmd)
	commandCounter.WithLabelValues(cmd.Op).Inc()
	if err == nil {
		err = s.simple.Strip().Err()
	}
	st := s.state()
	if v != ledstrip.Accepted {
		st.Result = v.String()
	}
	if err != nil || v == ledstrip.Rejected {
		rejectedCounter.WithLabelValues(cmd.Op).Inc()
	}
	if err != nil {
		st.Error = err.Error()
		s.log.Warn().Err(err).Str("op", cmd.Op).Msg("command failed")
	} else {
		s.log.Debug().Str("op", cmd.Op).Stringer("result", v).Msg("command")
	}
	updateGauges(s.simple)
	return st
}

func (s *Server) apply(cmd Command) (ledstrip.Validation, error) {
	f := s.simple
	switch cmd.Op {
	case "show":
		if cmd.Color == nil {
			return ledstrip.Rejected, errors.Wrap(ErrNoColor, cmd.Op)
		}
		f.ShowColor(ledstrip.Color(*cmd.Color & 0xffffff))
	case "pixel":
		if cmd.Color == nil {
			return ledstrip.Rejected, errors.Wrap(ErrNoColor, cmd.Op)
		}
		return f.SetPixelColor(cmd.Index, ledstrip.Color(*cmd.Color&0xffffff)), nil
	case "brightness":
		return f.SetBrightness(cmd.Value), nil
	case "on":
		f.TurnOn()
	case "off":
		f.TurnOff()
	case "clear":
		f.Clear()
	case "shift":
		f.Shift(cmd.Value)
	case "rotate":
		f.Rotate(cmd.Value)
	case "rainbow":
		f.ShowRainbow(cmd.Start, cmd.End)
	case "state":
	default:
		return ledstrip.Rejected, errors.Wrapf(ErrUnknownOp, "%q", cmd.Op)
	}
	return ledstrip.Accepted, nil
}

func (s *Server) state() State {
	strip := s.simple.Strip()
	st := State{
		On:         strip.IsOn(),
		Lit:        strip.IsLit(),
		Brightness: s.simple.Brightness(),
		Power:      strip.Power(),
		Pixels:     make([]uint32, strip.Length()),
	}
	for i := range st.Pixels {
		st.Pixels[i] = uint32(strip.Pixel(i))
	}
	return st
}

//Handler serves /ws, /health and /metrics from g.
func (s *Server) Handler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()
	log := s.log.With().Str("remote", r.RemoteAddr).Logger()
	log.Info().Msg("client connected")

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("read")
			}
			return
		}
		st, err := s.Do(r.Context(), cmd)
		if err != nil {
			return
		}
		if err := conn.WriteJSON(st); err != nil {
			log.Warn().Err(err).Msg("write")
			return
		}
	}
}
