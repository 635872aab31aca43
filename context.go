package main

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/bihua-university/aplayer/internal/music"
	"github.com/bihua-university/aplayer/internal/player"
	"github.com/bihua-university/aplayer/internal/syncx"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

type H = music.H

// Connection is one websocket client. Writes go through an unbounded
// channel so a slow client never blocks the player's event loop.
type Connection struct {
	id   string
	conn *websocket.Conn
	send syncx.UnboundedChan[[]byte]

	sub string // player event subscription, "" until Attach

	mu     sync.Mutex
	closed bool
}

func NewConnection(wc *websocket.Conn) *Connection {
	return &Connection{
		id:   uuid.New().String(),
		conn: wc,
		send: syncx.NewUnboundedChan[[]byte](8),
	}
}

// Start pumps queued payloads to the socket until Close.
func (c *Connection) Start() {
	go func() {
		for x := range c.send.Out() {
			_ = c.conn.WriteMessage(websocket.TextMessage, x)
		}
	}()
}

// Attach forwards player events to this client until Close.
func (c *Connection) Attach(p *player.Player) {
	id, ch := p.Subscribe()
	c.sub = id
	go func() {
		for ev := range ch {
			c.Send(H{"type": ev.Type, "data": ev.Data})
		}
	}()
}

// Close tears the connection down. Handlers and the event pump run on
// their own goroutines and may still call Send afterwards; those sends
// are dropped, never pushed into the closed channel.
func (c *Connection) Close(p *player.Player) {
	if c.sub != "" {
		p.Unsubscribe(c.sub)
	}
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.send.Close()
	}
	c.mu.Unlock()
}

func (c *Connection) Send(j any) {
	b, err := json.Marshal(j)
	if err != nil {
		log.Printf("send %s: %v", c.id, err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.send.In() <- b
}

// Context carries one decoded command through its handler.
type Context struct {
	conn   *Connection
	player *player.Player
	data   gjson.Result
}

func (c *Context) Get(p string) gjson.Result {
	return c.data.Get(p)
}

// Songs decodes the song payload at path, accepting a single object or
// an array.
func (c *Context) Songs(path string) []music.Song {
	raw := c.Get(path)
	var songs []music.Song

	decode := func(r gjson.Result) {
		var s music.Song
		if err := json.Unmarshal([]byte(r.Raw), &s); err == nil && s.ID != "" {
			songs = append(songs, s)
		}
	}
	if raw.IsArray() {
		for _, r := range raw.Array() {
			decode(r)
		}
	} else if raw.IsObject() {
		decode(raw)
	}
	return songs
}

func (c *Context) OK(data H) {
	c.conn.Send(H{"type": "result", "data": data})
}

func (c *Context) Error(msg string) {
	c.conn.Send(H{"type": "error", "data": H{"message": msg}})
}
