package session

import (
	"context"
	"os"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/sirupsen/logrus"

	"ttsoverlay/input"
	"ttsoverlay/mic"
	"ttsoverlay/voice"
)

const (
	stuckKeyInterval = 2 * time.Second
	sweepInterval    = 6 * time.Hour
	// CacheCeiling is the byte budget the periodic sweep enforces per
	// cache directory.
	CacheCeiling = 100 << 20
)

// WatchStuckKey periodically checks for a push-to-talk key held down
// with no live injection owning it, and force-releases it. Guards
// against a crashed or killed injection leaving the key latched.
func WatchStuckKey(ctx context.Context, keys input.Keys, hold *mic.KeyHold, key func() string) {
	ticker := time.NewTicker(stuckKeyInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		k := key()
		if k == "" || hold.Count() > 0 {
			continue
		}
		down, err := keys.IsPressed(k)
		if err != nil || !down {
			continue
		}

		logrus.WithField("key", k).Warnln("push-to-talk key stuck, releasing")
		if err := keys.Release(k); err != nil {
			logrus.WithError(err).WithField("key", k).Errorln("failed to release stuck key")
		}
	}
}

// SweepCaches trims each cache directory back under the ceiling on a
// slow cadence, oldest artifacts first.
func SweepCaches(ctx context.Context, dirs []string, ceiling int64) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for _, dir := range dirs {
			if removed := voice.SweepCache(dir, ceiling); removed > 0 {
				logrus.WithFields(logrus.Fields{
					"dir":     dir,
					"removed": removed,
				}).Infoln("cache sweep reclaimed artifacts")
			}
		}
	}
}

// Janitor reclaims transient synthesis files a while after they were
// produced. A file still open by a playback stream (windows holds the
// lock) is rescheduled instead of leaked.
type Janitor struct {
	files *ttlcache.Cache[string, struct{}]
}

func NewJanitor(ttl time.Duration) *Janitor {
	files := ttlcache.New[string, struct{}](
		ttlcache.WithTTL[string, struct{}](ttl),
	)
	j := &Janitor{files: files}

	files.OnEviction(func(_ context.Context, _ ttlcache.EvictionReason, item *ttlcache.Item[string, struct{}]) {
		path := item.Key()
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logrus.WithField("file", path).Debugln("transient file still busy, rescheduling")
			// re-arm outside the eviction callback
			go j.Track(path)
		}
	})
	return j
}

// Track schedules path for removal after the janitor's TTL.
func (j *Janitor) Track(path string) {
	j.files.Set(path, struct{}{}, ttlcache.DefaultTTL)
}

// Start runs expiry in the background until Stop.
func (j *Janitor) Start() {
	go j.files.Start()
}

// Stop halts expiry and removes everything still tracked.
func (j *Janitor) Stop() {
	j.files.Stop()
	for _, item := range j.files.Items() {
		if err := os.Remove(item.Key()); err != nil && !os.IsNotExist(err) {
			logrus.WithField("file", item.Key()).Debugln("leaving busy transient file behind")
		}
	}
	j.files.DeleteAll()
}
