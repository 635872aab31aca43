package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bihua-university/aplayer/internal/audio"
	"github.com/bihua-university/aplayer/internal/base"
	"github.com/bihua-university/aplayer/internal/music"
	"github.com/bihua-university/aplayer/internal/player"
	"github.com/bihua-university/aplayer/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

const Debug = false

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
} // use default options

var (
	core    *player.Player
	catalog *music.Manager
)

func main() {
	base.InitConfig()

	db, err := store.Open(base.Config.DataDir)
	if err != nil {
		log.Fatal("store:", err)
	}
	defer db.Close()

	qq := music.NewQQ(base.Config.QQAPI)
	netease := music.NewNetease(base.Config.NeteaseAPI, base.Config.Cookie)
	switch base.Config.Provider {
	case "netease":
		catalog = music.NewManager(netease, qq)
	default:
		catalog = music.NewManager(qq, netease)
	}

	saver := store.NewSaver(db.SaveState, store.SaveDelay)
	defer saver.Flush()

	var engine audio.Engine
	if spk, err := audio.NewSpeaker(); err != nil {
		log.Print("speaker unavailable, running headless:", err)
		engine = audio.Noop{}
	} else {
		engine = spk
	}

	core = player.New(player.Options{
		Engine:   engine,
		Assets:   music.NewCache(catalog, db),
		Persist:  saver,
		Provider: catalog.ActiveID(),
	})
	defer core.Close()

	if catalog.ActiveID() == "netease" {
		rec := music.NewRecommender(netease)
		go trackHistory(rec)
		core.SetOnNeedMoreSongs(func() []music.Song {
			if !rec.Ready() {
				return nil
			}
			playlist, _ := core.Snapshot()["playlist"].([]music.Song)
			return rec.Recommend(playlist)
		})
	}

	if st, err := db.LoadState(); err != nil {
		log.Print("load state:", err)
	} else {
		core.Restore(st)
	}

	gin.SetMode(gin.ReleaseMode)
	g := gin.Default()
	g.Use(Cors())
	g.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"audio": audio.AudioAvailable})
	})
	g.Any("/server", serveWS)

	srv := &http.Server{Addr: base.Config.Addr, Handler: g}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Print("listening on ", base.Config.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// trackHistory feeds played songs into the recommender so queue
// extension has seeds to work from.
func trackHistory(rec *music.Recommender) {
	_, ch := core.Subscribe()
	for ev := range ch {
		if ev.Type != player.EventSong {
			continue
		}
		if s, ok := ev.Data["song"].(music.Song); ok {
			rec.AddHistory(s.ID)
		}
	}
}

func serveWS(c *gin.Context) {
	w, r := c.Writer, c.Request
	wc, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer wc.Close()

	conn := NewConnection(wc)
	conn.Start()
	conn.Attach(core)
	defer conn.Close(core)

	// greet with the full state so a reconnecting client catches up
	syncState(&Context{conn: conn, player: core})

	for {
		_, message, err := wc.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			return
		}

		// async handle command
		go func() {
			msg := gjson.ParseBytes(message)
			handler := route[msg.Get("action").String()]

			if Debug {
				log.Println("cmd:", msg.Get("action").String(), "data:", msg.Get("data").String())
			}

			if handler != nil {
				handler(&Context{
					conn:   conn,
					player: core,
					data:   msg.Get("data"),
				})
			} else {
				log.Printf("unhandled message: %s", message)
			}
		}()
	}
}

var route = map[string]func(ctx *Context){
	"/player/play":     playMusic,
	"/player/playlist": playPlaylist,
	"/player/add":      addMusic,
	"/player/delete":   deleteMusic,
	"/player/jump":     jumpMusic,
	"/player/toggle":   togglePlay,
	"/player/next":     nextMusic,
	"/player/prev":     prevMusic,
	"/player/seek":     seekMusic,
	"/player/stop":     stopMusic,
	"/player/mode":     setMode,
	"/player/volume":   setVolume,
	"/player/quality":  setQuality,
	"/player/sync":     syncState,
	"/player/lyric":    getLyric,
	"/music/search":    searchMusic,
	"/music/songlist":  searchSongList,
}

func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "token,content-type,accesstoken")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
