package seatfeed

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins — adjust for production if needed
		return true
	},
}

// Feed fans seat-count changes out to websocket subscribers, keyed by class id.
type Feed struct {
	mu   sync.Mutex
	subs map[string][]chan []byte
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[string][]chan []byte)}
}

type seatUpdate struct {
	Type             string `json:"type"`
	ClassID          string `json:"classId"`
	AvailableSeats   int    `json:"availableSeats"`
	EnrolledStudents int    `json:"enrolledStudents"`
}

func (f *Feed) subscribe(classID string) chan []byte {
	ch := make(chan []byte, 8)
	f.mu.Lock()
	f.subs[classID] = append(f.subs[classID], ch)
	f.mu.Unlock()
	return ch
}

func (f *Feed) unsubscribe(classID string, ch chan []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	chans := f.subs[classID]
	newList := make([]chan []byte, 0, len(chans))
	for _, c := range chans {
		if c != ch {
			newList = append(newList, c)
		}
	}
	if len(newList) == 0 {
		delete(f.subs, classID)
	} else {
		f.subs[classID] = newList
	}
}

// Publish sends the current counters to every subscriber of the class.
// Slow subscribers are skipped rather than blocking the settlement path.
func (f *Feed) Publish(classID string, availableSeats, enrolledStudents int) {
	data, err := json.Marshal(seatUpdate{
		Type:             "seat_update",
		ClassID:          classID,
		AvailableSeats:   availableSeats,
		EnrolledStudents: enrolledStudents,
	})
	if err != nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[classID] {
		select {
		case ch <- data:
		default:
			log.Printf("seatfeed: dropping update for class %s, subscriber is slow", classID)
		}
	}
}

// GET /ws/classes/:id/seats
func (f *Feed) ServeWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	classID := ps.ByName("id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	ch := f.subscribe(classID)
	defer func() {
		f.unsubscribe(classID, ch)
		conn.Close()
	}()

	done := make(chan struct{})
	go func() {
		// Drain reads so we notice the client going away.
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case data := <-ch:
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
