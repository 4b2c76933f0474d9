package sink

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mastercactapus/clpost/spjs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBridge answers like a Serial Port JSON Server with one closed port.
type fakeBridge struct {
	mx       sync.Mutex
	commands []string
	lines    []string
	wipe     bool
}

func (b *fakeBridge) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ws, err := (&websocket.Upgrader{}).Upgrade(w, req, nil)
	if err != nil {
		return
	}
	defer ws.Close()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		msg := string(data)
		switch {
		case msg == "list":
			ws.WriteMessage(websocket.TextMessage, []byte(`{"SerialPorts":[{"Name":"COM3","IsOpen":false}]}`))
		case strings.HasPrefix(msg, "sendjson "):
			var j spjs.JSON
			if err := json.Unmarshal([]byte(strings.TrimPrefix(msg, "sendjson ")), &j); err != nil {
				return
			}
			b.mx.Lock()
			for _, d := range j.Data {
				b.lines = append(b.lines, d.Data)
			}
			wipe := b.wipe
			b.mx.Unlock()
			resp := `{"Cmd":"Complete","Id":"` + j.Data[len(j.Data)-1].ID + `","P":"COM3"}`
			if wipe {
				resp = `{"Cmd":"WipedQueue","QCnt":0}`
			}
			ws.WriteMessage(websocket.TextMessage, []byte(resp))
		default:
			b.mx.Lock()
			b.commands = append(b.commands, msg)
			b.mx.Unlock()
		}
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSPJS(t *testing.T) {
	b := &fakeBridge{}
	srv := httptest.NewServer(b)
	defer srv.Close()

	s := NewSPJS(spjs.NewClient(wsURL(srv), nil), "COM3", nil)
	s.Timeout = 5 * time.Second

	for i := 0; i < 150; i++ {
		require.NoError(t, s.WriteLine("G01 X1 Y2 Z3"))
	}
	require.NoError(t, s.Close())

	b.mx.Lock()
	defer b.mx.Unlock()
	assert.Len(t, b.lines, 150)
	assert.Equal(t, "G01 X1 Y2 Z3\n", b.lines[149])
}

func TestSPJS_Wiped(t *testing.T) {
	b := &fakeBridge{wipe: true}
	srv := httptest.NewServer(b)
	defer srv.Close()

	s := NewSPJS(spjs.NewClient(wsURL(srv), nil), "COM3", nil)
	s.Timeout = 5 * time.Second

	require.NoError(t, s.WriteLine("N1 M30"))
	assert.Equal(t, ErrWipedQueue, s.Close())
}
