package main

import (
	"time"

	"github.com/bihua-university/aplayer/internal/music"
	"github.com/bihua-university/aplayer/internal/player"
)

// playMusic plays one song right away, queueing it after the current one.
func playMusic(c *Context) {
	songs := c.Songs("song")
	if len(songs) == 0 {
		c.Error("missing song")
		return
	}
	c.player.PlaySong(songs[0])
}

// playPlaylist loads a list of songs and starts from index.
func playPlaylist(c *Context) {
	songs := c.Songs("songs")
	if len(songs) == 0 {
		c.Error("missing songs")
		return
	}
	c.player.PlayPlaylist(songs, int(c.Get("index").Int()))
}

// addMusic appends songs to the end of the queue.
func addMusic(c *Context) {
	songs := c.Songs("songs")
	if len(songs) == 0 {
		songs = c.Songs("song")
	}
	if len(songs) == 0 {
		c.Error("missing songs")
		return
	}
	c.player.AddToQueue(songs)
}

func deleteMusic(c *Context) {
	c.player.RemoveFromQueue(int(c.Get("index").Int()))
}

func jumpMusic(c *Context) {
	c.player.PlayAtIndex(int(c.Get("index").Int()))
}

func togglePlay(c *Context) {
	c.player.TogglePlay()
}

func nextMusic(c *Context) {
	c.player.PlayNext()
}

func prevMusic(c *Context) {
	c.player.PlayPrev()
}

func seekMusic(c *Context) {
	ms := c.Get("position").Int()
	c.player.Seek(time.Duration(ms) * time.Millisecond)
}

func stopMusic(c *Context) {
	c.player.Stop()
}

// setMode switches the play mode; without a mode argument it cycles
// order -> single -> shuffle.
func setMode(c *Context) {
	if m := c.Get("mode"); m.Exists() {
		c.player.SetPlayMode(player.ParseMode(m.String()))
	} else {
		c.player.CyclePlayMode()
	}
}

func setVolume(c *Context) {
	c.player.SetVolume(c.Get("volume").Float())
}

func setQuality(c *Context) {
	c.player.SetQuality(c.Get("quality").String())
}

// syncState pushes the full player snapshot to the requesting client,
// used on connect and after reconnects.
func syncState(c *Context) {
	snap := c.player.Snapshot()
	snap["position"] = c.player.Position().Milliseconds()
	snap["duration"] = c.player.Duration().Milliseconds()
	c.OK(snap)
}

func getLyric(c *Context) {
	l := c.player.Lyric()
	if l == nil {
		c.OK(H{"lyric": nil})
		return
	}
	c.OK(H{"lyric": l})
}

func searchMusic(c *Context) {
	r := catalog.Search(music.SearchOption{
		Keyword:  c.Get("name").String(),
		Page:     c.Get("pageIndex").Int(),
		PageSize: c.Get("pageSize").Int(),
	})
	c.OK(H{"total": r.Total, "list": r.Data})
}

func searchSongList(c *Context) {
	r := catalog.SongList(music.SearchOption{
		ID:       c.Get("id").String(),
		Page:     c.Get("pageIndex").Int(),
		PageSize: c.Get("pageSize").Int(),
	})
	c.OK(H{"total": r.Total, "list": r.Data})
}
