/*
Package eventlog provides an append-only, line-delimited JSON event log.

Significant room events (joins, chat, bids, auction lifecycle, announcements) are
written one record per line to a daily file (server-YYYY-MM-DD.log) in a configured
directory. Writes happen on a dedicated goroutine fed by a bounded queue, so a slow
or failing disk can never stall an event handler; records are dropped instead.
The log is purely observational and is never read back by the server.
*/
package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"aucroom/internal/pkg/logx"
)

const recordQueueSize = 1024

// entry is a single queued event-log record.
type entry struct {
	eventType string
	message   string
	data      map[string]any
}

// Recorder writes room events to daily log files. A Recorder constructed with an
// empty directory is disabled: every Record call becomes a no-op.
type Recorder struct {
	dir     string
	queue   chan entry
	wg      sync.WaitGroup
	file    *os.File
	fileDay string
	logger  zerolog.Logger
}

// New creates a Recorder writing to dir and starts its writer goroutine.
// An empty dir disables the recorder.
func New(dir string) *Recorder {
	r := &Recorder{
		dir:    dir,
		logger: logx.Logger().With().Str("component", "eventlog").Logger(),
	}

	if dir == "" {
		return r
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.logger.Error().Err(err).Str("dir", dir).Msg("Failed to create event log directory. Event log disabled.")
		r.dir = ""
		return r
	}

	r.queue = make(chan entry, recordQueueSize)
	r.wg.Add(1)
	go r.runWriter()

	return r
}

// Record queues one event record. It never blocks: if the queue is full the
// record is dropped and a warning is logged.
func (r *Recorder) Record(eventType, message string, data map[string]any) {
	if r.dir == "" {
		return
	}

	select {
	case r.queue <- entry{eventType: eventType, message: message, data: data}:
	default:
		r.logger.Warn().Str("event_type", eventType).Msg("Event log queue full, dropping record.")
	}
}

// Close stops accepting records, flushes the queue, and closes the current file.
func (r *Recorder) Close() {
	if r.dir == "" {
		return
	}

	close(r.queue)
	r.wg.Wait()
}

// runWriter drains the queue, rotating to a new file whenever the calendar day changes.
func (r *Recorder) runWriter() {
	defer r.wg.Done()
	defer func() {
		if r.file != nil {
			r.file.Close()
		}
	}()

	for e := range r.queue {
		if err := r.write(e); err != nil {
			r.logger.Error().Err(err).Str("event_type", e.eventType).Msg("Failed to write event log record.")
		}
	}
}

func (r *Recorder) write(e entry) error {
	day := time.Now().Format("2006-01-02")

	if r.file == nil || day != r.fileDay {
		if r.file != nil {
			r.file.Close()
		}

		path := filepath.Join(r.dir, fmt.Sprintf("server-%s.log", day))
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}

		r.file = file
		r.fileDay = day
	}

	record := zerolog.New(r.file).With().Timestamp().Logger()
	event := record.Log().Str("type", e.eventType)
	if len(e.data) > 0 {
		event = event.Interface("data", e.data)
	}
	event.Msg(e.message)

	return nil
}

// Convenience wrappers, one per significant room event.

func (r *Recorder) ServerStarted(port int) {
	r.Record("SERVER_START", fmt.Sprintf("Server started on port %d", port), map[string]any{
		"port": port,
	})
}

func (r *Recorder) UserJoin(username, connectionID string) {
	r.Record("USER_JOIN", fmt.Sprintf("User joined: %s", username), map[string]any{
		"username":     username,
		"connectionId": connectionID,
	})
}

func (r *Recorder) UserLeave(username, connectionID string) {
	r.Record("USER_LEAVE", fmt.Sprintf("User left: %s", username), map[string]any{
		"username":     username,
		"connectionId": connectionID,
	})
}

func (r *Recorder) ChatMessage(username, message string) {
	r.Record("CHAT", fmt.Sprintf("%s: %s", username, message), map[string]any{
		"username": username,
		"message":  message,
	})
}

func (r *Recorder) Announcement(adminUsername, message string) {
	r.Record("ANNOUNCEMENT", fmt.Sprintf("Announcement by %s: %s", adminUsername, message), map[string]any{
		"adminUsername": adminUsername,
		"message":       message,
	})
}

func (r *Recorder) AuctionCreated(adminUsername, itemName string, startingPrice int) {
	r.Record("AUCTION_CREATE", fmt.Sprintf("Auction created by %s for %s at $%d", adminUsername, itemName, startingPrice), map[string]any{
		"adminUsername": adminUsername,
		"itemName":      itemName,
		"startingPrice": startingPrice,
	})
}

func (r *Recorder) AuctionStarted(itemName string) {
	r.Record("AUCTION_START", fmt.Sprintf("Auction started for %s", itemName), map[string]any{
		"itemName": itemName,
	})
}

func (r *Recorder) BidPlaced(username, itemName string, amount int) {
	r.Record("BID", fmt.Sprintf("Bid placed by %s on %s for $%d", username, itemName, amount), map[string]any{
		"username": username,
		"itemName": itemName,
		"amount":   amount,
	})
}

func (r *Recorder) AuctionEnded(itemName, winner string, finalPrice int) {
	r.Record("AUCTION_END", fmt.Sprintf("Auction ended: %s won by %s at $%d", itemName, winner, finalPrice), map[string]any{
		"itemName":   itemName,
		"winner":     winner,
		"finalPrice": finalPrice,
	})
}

func (r *Recorder) AuctionUnsold(itemName string) {
	r.Record("AUCTION_END", fmt.Sprintf("Auction ended unsold: %s", itemName), map[string]any{
		"itemName": itemName,
	})
}
