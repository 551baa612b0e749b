package telegram

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// chatQueues runs at most one handler per chat. A chat's worker exits once
// its queue is empty and the next message starts a new one.
type chatQueues struct {
	mu      sync.Mutex
	pending map[int64][]*tgbotapi.Message
	wg      sync.WaitGroup
}

func newChatQueues() *chatQueues {
	return &chatQueues{pending: make(map[int64][]*tgbotapi.Message)}
}

func (q *chatQueues) push(chatID int64, msg *tgbotapi.Message, handle func(*tgbotapi.Message)) {
	q.mu.Lock()
	queued, running := q.pending[chatID]
	q.pending[chatID] = append(queued, msg)
	q.mu.Unlock()

	if running {
		return
	}
	q.wg.Add(1)
	go q.drain(chatID, handle)
}

func (q *chatQueues) drain(chatID int64, handle func(*tgbotapi.Message)) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		queued := q.pending[chatID]
		if len(queued) == 0 {
			delete(q.pending, chatID)
			q.mu.Unlock()
			return
		}
		msg := queued[0]
		q.pending[chatID] = queued[1:]
		q.mu.Unlock()

		handle(msg)
	}
}

// wait blocks until every queued message has been handled.
func (q *chatQueues) wait() {
	q.wg.Wait()
}
