// Package whatsapp implements the direct socket transport over a paired
// WhatsApp device session.
package whatsapp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mdp/qrterminal/v3"
	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waCompanionReg"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"github.com/recruiterhub/wabot/channel"

	_ "github.com/mattn/go-sqlite3"
)

const reconnectDelay = 5 * time.Second

// Adapter drives a whatsmeow client session and feeds inbound text
// messages to a registered handler.
type Adapter struct {
	sessionName string
	storageDir  string
	osName      string

	client    *whatsmeow.Client
	container *sqlstore.Container
	handlerID uint32

	mu        sync.RWMutex
	handler   channel.Handler
	loggedOut bool
}

// NewAdapter creates a socket adapter. Connect must be called before use.
func NewAdapter(sessionName, storageDir, osName string) *Adapter {
	return &Adapter{
		sessionName: sessionName,
		storageDir:  storageDir,
		osName:      osName,
	}
}

// OnMessage registers the handler invoked for each inbound text message.
func (a *Adapter) OnMessage(handler channel.Handler) {
	a.mu.Lock()
	a.handler = handler
	a.mu.Unlock()
}

// Connect opens the session store, pairs the device if needed (printing
// the QR code to stdout) and establishes the socket connection.
func (a *Adapter) Connect(ctx context.Context) error {
	if err := os.MkdirAll(a.storageDir, 0755); err != nil {
		return fmt.Errorf("failed to create storage dir: %w", err)
	}

	dbPath := filepath.Join(a.storageDir, fmt.Sprintf("whatsapp-%s.db", a.sessionName))
	dbLog := waLog.Stdout("Session", "INFO", true)

	container, err := sqlstore.New(ctx, "sqlite3", "file:"+dbPath+"?_foreign_keys=on", dbLog)
	if err != nil {
		return fmt.Errorf("failed to init session db: %w", err)
	}
	a.container = container

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}
	if device == nil {
		device = container.NewDevice()
	}

	chromePlatform := waCompanionReg.DeviceProps_CHROME
	store.DeviceProps.PlatformType = &chromePlatform
	store.DeviceProps.Os = &a.osName

	clientLog := waLog.Stdout("Client", "INFO", true)
	a.client = whatsmeow.NewClient(device, clientLog)
	a.client.AutoTrustIdentity = true
	a.handlerID = a.client.AddEventHandler(a.handleEvent)

	if a.client.Store.ID == nil {
		qrChan, _ := a.client.GetQRChannel(ctx)
		if err := a.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect new client: %w", err)
		}
		for evt := range qrChan {
			if evt.Event == "code" {
				logrus.Info("[WHATSAPP] Scan the QR code to pair the session")
				qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
			} else {
				logrus.Infof("[WHATSAPP] Login event: %s", evt.Event)
			}
		}
		return nil
	}

	if err := a.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	return nil
}

// Disconnect tears down the socket connection.
func (a *Adapter) Disconnect() {
	if a.client != nil {
		a.client.Disconnect()
	}
}

// IsLoggedIn reports whether the session is authenticated.
func (a *Adapter) IsLoggedIn() bool {
	return a.client != nil && a.client.IsLoggedIn()
}

// SendMessage sends a text message to the chat.
func (a *Adapter) SendMessage(ctx context.Context, chatID, text string) error {
	if a.client == nil {
		return fmt.Errorf("no client")
	}
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("invalid JID: %w", err)
	}
	_, err = a.client.SendMessage(ctx, jid, &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text: proto.String(text),
		},
	})
	return err
}

// SendPresence reports a typing state to the chat.
func (a *Adapter) SendPresence(ctx context.Context, chatID, state string) error {
	if a.client == nil {
		return fmt.Errorf("no client")
	}
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("invalid JID: %w", err)
	}
	presence := types.ChatPresencePaused
	if state == channel.PresenceComposing {
		presence = types.ChatPresenceComposing
	}
	return a.client.SendChatPresence(ctx, jid, presence, types.ChatPresenceMediaText)
}

func (a *Adapter) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Message:
		a.handleMessage(v)

	case *events.LoggedOut:
		a.mu.Lock()
		a.loggedOut = true
		a.mu.Unlock()
		logrus.Warn("[WHATSAPP] Session logged out, pairing required")

	case *events.Disconnected:
		a.mu.RLock()
		out := a.loggedOut
		a.mu.RUnlock()
		if out {
			return
		}
		logrus.Warnf("[WHATSAPP] Disconnected, reconnecting in %s", reconnectDelay)
		go func() {
			time.Sleep(reconnectDelay)
			if err := a.client.Connect(); err != nil {
				logrus.Errorf("[WHATSAPP] Reconnect failed: %v", err)
			}
		}()
	}
}

func (a *Adapter) handleMessage(v *events.Message) {
	if v.Info.IsFromMe {
		return
	}
	if v.Info.Chat.Server != types.DefaultUserServer && v.Info.Chat.Server != types.HiddenUserServer {
		// Groups, broadcasts and status updates are out of scope.
		return
	}

	text := extractText(v.Message)
	if strings.TrimSpace(text) == "" {
		return
	}

	a.mu.RLock()
	handler := a.handler
	a.mu.RUnlock()
	if handler == nil {
		return
	}

	handler(context.Background(), channel.IncomingMessage{
		ChatID:    v.Info.Chat.String(),
		MessageID: v.Info.ID,
		SenderID:  v.Info.Sender.String(),
		Text:      text,
	})
}

func extractText(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	if t := msg.GetConversation(); t != "" {
		return t
	}
	if t := msg.GetExtendedTextMessage().GetText(); t != "" {
		return t
	}
	return ""
}
