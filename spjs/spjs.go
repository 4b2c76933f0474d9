// Package spjs is a client for the Serial Port JSON Server websocket bridge.
package spjs

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// ReconnectDelay is the wait between failed connection attempts.
var ReconnectDelay = 3 * time.Second

// ErrClosed is returned for writes after Close.
var ErrClosed = errors.New("spjs: client closed")

type Client struct {
	url string
	log *slog.Logger

	outgoing  chan message
	incomming chan interface{}
	closeCh   chan struct{}
	closed    int32
}

type message struct {
	done    chan struct{}
	payload []byte
}

type DataFrame struct {
	Port string `json:"P"`
	Data string `json:"D"`
}
type CmdStatus struct {
	Cmd        string
	QueueCount int `json:"QCnt"`
	Type       []string
	Data       []string `json:"D"`
	ID         string   `json:"Id"`
}

type ErrorMessage struct {
	Error string
}
type SerialPortList struct {
	SerialPorts []SerialPort
}
type SerialPort struct {
	Name            string
	Friendly        string
	IsOpen          bool
	IsPrimary       bool
	Baud            int
	BufferAlgorithm string
}

// NewClient connects to url in the background, reconnecting as needed.
func NewClient(url string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sp := &Client{
		url:       url,
		log:       logger,
		outgoing:  make(chan message, 1000),
		incomming: make(chan interface{}, 1000),
		closeCh:   make(chan struct{}),
	}

	go sp.loop()

	return sp
}

// Messages delivers parsed messages from the bridge.
func (sp *Client) Messages() chan interface{} {
	return sp.incomming
}

// Close stops the connection loop.
func (sp *Client) Close() error {
	if atomic.CompareAndSwapInt32(&sp.closed, 0, 1) {
		close(sp.closeCh)
	}
	return nil
}

func parseMessage(data []byte, msg map[string]json.RawMessage) (val interface{}, err error) {
	check := func(fieldName string, v interface{}) bool {
		if msg[fieldName] == nil {
			return false
		}
		val = v
		err = json.Unmarshal(data, val)
		return true
	}
	if check("Error", &ErrorMessage{}) {
		return
	}
	if check("SerialPorts", &SerialPortList{}) {
		return
	}
	if check("Type", &CmdStatus{}) {
		return
	}
	if check("Cmd", &CmdStatus{}) {
		return
	}
	if check("D", &DataFrame{}) {
		return
	}

	return nil, errors.New("unknown message: " + string(data))
}

func (sp *Client) readLoop(ws *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			sp.log.Debug("spjs read", "err", err)
			return
		}
		if !bytes.HasPrefix(data, []byte("{")) {
			// ignore echo messages
			continue
		}
		var msg map[string]json.RawMessage
		err = json.Unmarshal(data, &msg)
		if err != nil {
			sp.log.Error("spjs read", "err", err)
			continue
		}
		val, err := parseMessage(data, msg)
		if err != nil {
			sp.log.Warn("spjs parse", "err", err)
			continue
		}
		select {
		case sp.incomming <- val:
		case <-sp.closeCh:
			return
		}
	}
}

func (sp *Client) loop() {
	var nextUp message

reconnect:
	for {
		select {
		case <-sp.closeCh:
			return
		default:
		}
		sp.log.Info("connecting to spjs", "url", sp.url)
		ws, _, err := websocket.DefaultDialer.Dial(sp.url, nil)
		if err != nil {
			sp.log.Error("spjs connect", "err", err)
			select {
			case <-time.After(ReconnectDelay):
			case <-sp.closeCh:
				return
			}
			continue
		}
		sp.log.Info("connected to spjs", "url", sp.url)
		ch := make(chan struct{})
		go sp.readLoop(ws, ch)
		go sp.WriteString("list") // refresh list on reconnect

		for {
			if nextUp.done != nil {
				err = ws.WriteMessage(websocket.TextMessage, nextUp.payload)
				if err != nil {
					sp.log.Error("spjs send", "err", err)
					ws.Close()
					continue reconnect
				}
				close(nextUp.done)
				nextUp.done = nil
			}

			select {
			case <-ch:
				ws.Close()
				continue reconnect
			case <-sp.closeCh:
				ws.Close()
				return
			case nextUp = <-sp.outgoing:
			}
		}
	}
}

type JSON struct {
	Port string `json:"P"`
	Data []Data
}
type Data struct {
	Data string `json:"D"`
	ID   string `json:"Id"`
}

var lastID int64

// NextID returns a process-unique command id.
func NextID() string {
	id := atomic.AddInt64(&lastID, 1)
	return "cmd_" + strconv.FormatInt(id, 36)
}

// SendJSON queues v as a sendjson command and waits until it is written.
func (sp *Client) SendJSON(v JSON) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return sp.send(append([]byte("sendjson "), data...))
}

// WriteString sends a raw bridge command like "list".
func (sp *Client) WriteString(data string) error {
	return sp.send([]byte(data))
}

func (sp *Client) send(payload []byte) error {
	if atomic.LoadInt32(&sp.closed) == 1 {
		return ErrClosed
	}
	ch := make(chan struct{})
	select {
	case sp.outgoing <- message{done: ch, payload: payload}:
	case <-sp.closeCh:
		return ErrClosed
	}
	select {
	case <-ch:
		return nil
	case <-sp.closeCh:
		return ErrClosed
	}
}
