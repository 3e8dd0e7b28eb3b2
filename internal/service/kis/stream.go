package kis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"KisTrader/internal/domain/models"
	drepo "KisTrader/internal/domain/repository"
	"KisTrader/pkg/config"

	"github.com/gorilla/websocket"
)

const trIDRealtimePrice = "H0STCNT0"

// LiveStream implements QuoteStream over the brokerage realtime WebSocket.
type LiveStream struct {
	url      string
	appKey   string
	custType string

	conn    *websocket.Conn
	symbols []string
}

// NewLiveStream creates an unconnected realtime stream.
func NewLiveStream(cfg *config.Config) *LiveStream {
	return &LiveStream{
		url:      cfg.KIS.RealtimeURL,
		appKey:   cfg.KIS.AppKey,
		custType: cfg.KIS.CustType,
	}
}

var _ drepo.QuoteStream = (*LiveStream)(nil)

// Connect establishes the WebSocket connection.
func (s *LiveStream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("kis stream connect: %w", err)
	}
	s.conn = conn
	return nil
}

type streamSubscribe struct {
	Header struct {
		ApprovalKey string `json:"approval_key"`
		CustType    string `json:"custtype"`
		TrType      string `json:"tr_type"`
		ContentType string `json:"content-type"`
	} `json:"header"`
	Body struct {
		Input struct {
			TrID  string `json:"tr_id"`
			TrKey string `json:"tr_key"`
		} `json:"input"`
	} `json:"body"`
}

// Subscribe registers a symbol on the realtime price feed.
func (s *LiveStream) Subscribe(_ context.Context, symbol string) error {
	if s.conn == nil {
		return fmt.Errorf("kis stream not connected")
	}
	var msg streamSubscribe
	msg.Header.ApprovalKey = s.appKey
	msg.Header.CustType = s.custType
	msg.Header.TrType = "1"
	msg.Header.ContentType = "utf-8"
	msg.Body.Input.TrID = trIDRealtimePrice
	msg.Body.Input.TrKey = symbol
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe %s: %w", symbol, err)
	}
	s.symbols = append(s.symbols, symbol)
	return nil
}

// Read streams Tick events and errors until the context is cancelled.
// Data frames are pipe-delimited with caret-separated fields; anything
// else is a control frame and is skipped.
func (s *LiveStream) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	ticks := make(chan *models.Tick, 256)
	errs := make(chan error, 1)

	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("kis stream conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("kis stream read: %w", err)
					return
				}
				tick, ok := parseTickFrame(string(b))
				if !ok {
					continue
				}
				select {
				case ticks <- tick:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return ticks, errs
}

// parseTickFrame decodes one realtime data frame. Layout:
// flag|tr_id|count|SYMBOL^HHMMSS^PRICE^...^VOLUME^...
func parseTickFrame(frame string) (*models.Tick, bool) {
	parts := strings.Split(frame, "|")
	if len(parts) < 4 || parts[1] != trIDRealtimePrice {
		return nil, false
	}
	fields := strings.Split(parts[3], "^")
	if len(fields) < 3 {
		return nil, false
	}
	tick := &models.Tick{
		Symbol:    fields[0],
		Price:     parseFloat(fields[2]),
		Timestamp: time.Now().Unix(),
	}
	if len(fields) > 12 {
		tick.Volume = parseFloat(fields[12])
	}
	return tick, true
}

// Close closes the WebSocket connection.
func (s *LiveStream) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// MockStream emits deterministic synthetic ticks around the mock price.
type MockStream struct {
	interval time.Duration
	symbols  []string
}

// NewMockStream creates a synthetic tick stream.
func NewMockStream(interval time.Duration) *MockStream {
	if interval <= 0 {
		interval = time.Second
	}
	return &MockStream{interval: interval}
}

var _ drepo.QuoteStream = (*MockStream)(nil)

func (s *MockStream) Connect(context.Context) error { return nil }

func (s *MockStream) Subscribe(_ context.Context, symbol string) error {
	s.symbols = append(s.symbols, symbol)
	return nil
}

func (s *MockStream) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	ticks := make(chan *models.Tick, 256)
	errs := make(chan error, 1)

	go func() {
		defer close(ticks)
		defer close(errs)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		n := 0
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				for _, sym := range s.symbols {
					tick := &models.Tick{
						Symbol:    sym,
						Price:     MockPrice(sym) + float64(n%5)*10,
						Volume:    float64(1 + n%10),
						Timestamp: now.Unix(),
					}
					select {
					case ticks <- tick:
					default:
					}
				}
				n++
			}
		}
	}()

	return ticks, errs
}

func (s *MockStream) Close() error { return nil }
