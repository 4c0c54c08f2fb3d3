package live

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// ErrTransportUnavailable indica que a assinatura push não pôde ser aberta
var ErrTransportUnavailable = errors.New("push transport unavailable")

const readWait = 90 * time.Second

// Transport é o lado push. Subscribe bloqueia enquanto a assinatura estiver viva,
// chama onOpen uma vez ao assinar e onMessage na ordem de recebimento.
type Transport interface {
	Subscribe(ctx context.Context, onOpen func(), onMessage func([]byte)) error
}

// WSTransport assina o canal /ws da API via gorilla/websocket
type WSTransport struct {
	URL    string
	Dialer *websocket.Dialer
}

func NewWSTransport(url string) *WSTransport {
	return &WSTransport{URL: url, Dialer: websocket.DefaultDialer}
}

func (t *WSTransport) Subscribe(ctx context.Context, onOpen func(), onMessage func([]byte)) error {
	conn, _, err := t.Dialer.DialContext(ctx, t.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}
	defer conn.Close()

	// o servidor manda ping periódico; cada ping renova o prazo de leitura
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	onOpen()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("ws read: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		onMessage(msg)
	}
}
