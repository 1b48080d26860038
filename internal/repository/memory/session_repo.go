package memory

import (
	"sync"

	"github.com/tea-corner/go-backend/internal/domain"
)

// SessionRepo хранит состояния диалогов в памяти процесса.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[int64]*domain.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{
		sessions: make(map[int64]*domain.Session),
	}
}

// GetOrCreate возвращает сессию пользователя, создавая её при первом обращении.
func (s *SessionRepo) GetOrCreate(userID int64) *domain.Session {
	s.mu.RLock()
	session, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return session
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[userID]; ok {
		return session
	}

	session = domain.NewSession(userID)
	s.sessions[userID] = session

	return session
}

// Clear удаляет сессию пользователя.
func (s *SessionRepo) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
}
