package drill

import (
	"strings"
	"sync"

	"languagecoach/internal/schedule"
)

// cueTrack owns the audio cues of the current item. Every method must be
// called with mu held; auto cues take mu themselves when they fire.
type cueTrack struct {
	mu        *sync.Mutex
	scheduler schedule.Scheduler
	speaker   Speaker

	gen   uint64
	tasks []schedule.Task
}

func newCueTrack(mu *sync.Mutex, scheduler schedule.Scheduler, speaker Speaker) *cueTrack {
	return &cueTrack{mu: mu, scheduler: scheduler, speaker: speaker}
}

// play speaks text now, replacing any cue still pending for this item.
func (c *cueTrack) play(text, lang string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	c.stopPending()
	c.tasks = append(c.tasks, c.speaker.Speak(text, lang))
}

// auto schedules text after AutoCueDelay. The cue is dropped if the item
// changes before it fires.
func (c *cueTrack) auto(text, lang string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	gen := c.gen
	task := c.scheduler.AfterFunc(AutoCueDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen != gen {
			return
		}
		c.tasks = append(c.tasks, c.speaker.Speak(text, lang))
	})
	c.tasks = append(c.tasks, task)
}

// reset cancels everything scheduled for the current item.
func (c *cueTrack) reset() {
	c.gen++
	c.stopPending()
}

func (c *cueTrack) stopPending() {
	for _, t := range c.tasks {
		t.Stop()
	}
	c.tasks = c.tasks[:0]
}
