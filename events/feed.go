package events

import (
	"slices"
	"sync"
	"time"

	"github.com/taskhive/go-tasks/models"
)

// session là một client SSE đang lắng nghe sự kiện của một user
type session struct {
	userID       int64
	stateChannel chan models.Event
}

type sessionsLock struct {
	MU       sync.Mutex
	sessions []*session
}

func (sl *sessionsLock) addSession(s *session) {
	sl.MU.Lock()
	sl.sessions = append(sl.sessions, s)
	sl.MU.Unlock()
}

func (sl *sessionsLock) removeSession(s *session) {
	sl.MU.Lock()
	idx := slices.Index(sl.sessions, s)
	if idx != -1 {
		sl.sessions[idx] = nil
		sl.sessions = slices.Delete(sl.sessions, idx, idx+1)
	}
	sl.MU.Unlock()
}

var currentSessions sessionsLock

// Subscribe đăng ký nhận sự kiện của một user, trả về channel sự kiện và
// hàm hủy đăng ký
func Subscribe(userID int64) (<-chan models.Event, func()) {
	s := &session{
		userID:       userID,
		stateChannel: make(chan models.Event, 16),
	}
	currentSessions.addSession(s)

	return s.stateChannel, func() { currentSessions.removeSession(s) }
}

// Publish phát một sự kiện tới mọi session SSE của user liên quan và tới
// MQTT broker (nếu đã kết nối). Không bao giờ chặn request.
func Publish(event models.Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	currentSessions.MU.Lock()
	for _, s := range currentSessions.sessions {
		if s.userID != event.ActorID {
			continue
		}
		select {
		case s.stateChannel <- event:
		default:
			// client đọc quá chậm thì bỏ qua sự kiện
		}
	}
	currentSessions.MU.Unlock()

	publishMQTT(event)
}
