package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/skponto/skponto-backend-go/internal/domain/notification"
)

// NotificationRepository keeps notifications in memory.
type NotificationRepository struct {
	mu            sync.Mutex
	notifications map[string]*notification.Notification

	// Err makes every write fail.
	Err error
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{notifications: map[string]*notification.Notification{}}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

func (r *NotificationRepository) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, n := range ns {
		c := *n
		r.notifications[n.ID] = &c
	}
	return nil
}

func (r *NotificationRepository) GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*notification.Notification
	for _, n := range r.notifications {
		if n.RecipientID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		c := *n
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page, pageSize), len(out), nil
}

func (r *NotificationRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notifications {
		if n.RecipientID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, ids []string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, id := range ids {
		if n, ok := r.notifications[id]; ok && n.RecipientID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, n := range r.notifications {
		if n.RecipientID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

// Count returns how many notifications are stored.
func (r *NotificationRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notifications)
}
