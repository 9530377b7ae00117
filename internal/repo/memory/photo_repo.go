// Package memory provides process-local stores for single-instance deployments
// and tests. Mutations that touch display order are serialized per event;
// calls on different events never contend beyond short map lookups.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eventwall/photowall/internal/domain/enums"
	"github.com/eventwall/photowall/internal/domain/errs"
	"github.com/eventwall/photowall/internal/domain/model"
	"github.com/eventwall/photowall/internal/domain/rules"
)

type PhotoRepo struct {
	mu      sync.RWMutex
	photos  map[string]model.Photo
	byEvent map[string][]string

	eventLocks sync.Map
	now        func() time.Time
}

func NewPhotoRepo() *PhotoRepo {
	return &PhotoRepo{
		photos:  make(map[string]model.Photo),
		byEvent: make(map[string][]string),
		now:     time.Now,
	}
}

func (r *PhotoRepo) CreatePhoto(_ context.Context, photo model.Photo) (model.Photo, error) {
	eventID := strings.TrimSpace(photo.EventID)
	if eventID == "" {
		return model.Photo{}, fmt.Errorf("%w: event id is required", errs.ErrInvalidRequest)
	}

	now := r.now().UTC()
	photo = photo.Clone()
	if strings.TrimSpace(photo.ID) == "" {
		photo.ID = uuid.NewString()
	}
	photo.EventID = eventID
	photo.Status = enums.PhotoStatusPending
	photo.DisplayOrder = nil
	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = now
	}
	photo.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.photos[photo.ID]; exists {
		return model.Photo{}, fmt.Errorf("%w: photo %s already exists", errs.ErrInvalidRequest, photo.ID)
	}
	r.photos[photo.ID] = photo
	r.byEvent[eventID] = append(r.byEvent[eventID], photo.ID)

	return photo.Clone(), nil
}

func (r *PhotoRepo) GetPhoto(_ context.Context, photoID string) (model.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	photo, ok := r.photos[photoID]
	if !ok {
		return model.Photo{}, fmt.Errorf("%w: photo %s", errs.ErrNotFound, photoID)
	}
	return photo.Clone(), nil
}

// ListPhotos returns the event's photos newest first. An empty status lists all.
func (r *PhotoRepo) ListPhotos(_ context.Context, eventID string, status enums.PhotoStatus) ([]model.Photo, error) {
	r.mu.RLock()
	items := r.eventPhotosLocked(eventID)
	r.mu.RUnlock()

	out := make([]model.Photo, 0, len(items))
	for _, photo := range items {
		if status != "" && photo.Status != status {
			continue
		}
		out = append(out, photo)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *PhotoRepo) ListApproved(ctx context.Context, eventID string) ([]model.Photo, error) {
	return r.ListPhotos(ctx, eventID, enums.PhotoStatusApproved)
}

func (r *PhotoRepo) CountByStatus(_ context.Context, eventID string) (model.StatusCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var counts model.StatusCounts
	for _, id := range r.byEvent[eventID] {
		switch r.photos[id].Status {
		case enums.PhotoStatusPending:
			counts.Pending++
		case enums.PhotoStatusApproved:
			counts.Approved++
		case enums.PhotoStatusRejected:
			counts.Rejected++
		case enums.PhotoStatusArchived:
			counts.Archived++
		}
	}
	return counts, nil
}

// SetStatus stores status on the photo. A photo entering approved without a
// display order is appended after the event's current last approved photo.
func (r *PhotoRepo) SetStatus(_ context.Context, photoID string, status enums.PhotoStatus) (model.Photo, error) {
	eventID, err := r.eventOf(photoID)
	if err != nil {
		return model.Photo{}, err
	}

	lock := r.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	photo := r.photos[photoID].Clone()
	if !rules.CanTransition(photo.Status, status) {
		r.mu.RUnlock()
		return model.Photo{}, fmt.Errorf("%w: %s -> %s", errs.ErrInvalidState, photo.Status, status)
	}
	if status == enums.PhotoStatusApproved && photo.DisplayOrder == nil {
		photo.DisplayOrder = model.IntPtr(rules.NextDisplayOrder(r.eventPhotosLocked(eventID)))
	}
	r.mu.RUnlock()

	photo.Status = status
	photo.UpdatedAt = r.now().UTC()

	r.mu.Lock()
	r.photos[photoID] = photo
	r.mu.Unlock()

	return photo.Clone(), nil
}

// ApplyOrders writes the batch atomically per event. Unknown ids are skipped;
// when an id repeats, the last entry wins. The result lists applied photos in
// first-seen batch order.
func (r *PhotoRepo) ApplyOrders(_ context.Context, assignments []model.OrderAssignment) ([]model.Photo, error) {
	if len(assignments) == 0 {
		return []model.Photo{}, nil
	}

	final := make(map[string]int, len(assignments))
	order := make([]string, 0, len(assignments))
	eventSet := make(map[string]struct{})

	r.mu.RLock()
	for _, a := range assignments {
		photo, ok := r.photos[a.PhotoID]
		if !ok {
			continue
		}
		if _, seen := final[a.PhotoID]; !seen {
			order = append(order, a.PhotoID)
		}
		final[a.PhotoID] = a.DisplayOrder
		eventSet[photo.EventID] = struct{}{}
	}
	r.mu.RUnlock()

	if len(order) == 0 {
		return []model.Photo{}, nil
	}

	unlock := r.lockEvents(eventSet)
	defer unlock()

	now := r.now().UTC()
	out := make([]model.Photo, 0, len(order))

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range order {
		photo := r.photos[id].Clone()
		photo.DisplayOrder = model.IntPtr(final[id])
		photo.UpdatedAt = now
		r.photos[id] = photo
		out = append(out, photo.Clone())
	}

	return out, nil
}

// PromoteToFront gives photoID order 0 and shifts the event's other approved
// photos back by one. The photo must be approved.
func (r *PhotoRepo) PromoteToFront(_ context.Context, photoID string) (model.Photo, error) {
	eventID, err := r.eventOf(photoID)
	if err != nil {
		return model.Photo{}, err
	}

	lock := r.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	target := r.photos[photoID]
	if target.Status != enums.PhotoStatusApproved {
		return model.Photo{}, fmt.Errorf("%w: photo %s is %s, not approved", errs.ErrInvalidState, photoID, target.Status)
	}

	now := r.now().UTC()
	for _, a := range rules.PromoteAssignments(r.eventPhotosLocked(eventID), photoID) {
		photo := r.photos[a.PhotoID].Clone()
		photo.DisplayOrder = model.IntPtr(a.DisplayOrder)
		photo.UpdatedAt = now
		r.photos[a.PhotoID] = photo
	}

	return r.photos[photoID].Clone(), nil
}

func (r *PhotoRepo) eventOf(photoID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	photo, ok := r.photos[photoID]
	if !ok {
		return "", fmt.Errorf("%w: photo %s", errs.ErrNotFound, photoID)
	}
	return photo.EventID, nil
}

func (r *PhotoRepo) eventLock(eventID string) *sync.Mutex {
	lock, _ := r.eventLocks.LoadOrStore(eventID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (r *PhotoRepo) lockEvents(eventSet map[string]struct{}) func() {
	ids := make([]string, 0, len(eventSet))
	for id := range eventSet {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	locks := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		lock := r.eventLock(id)
		lock.Lock()
		locks = append(locks, lock)
	}

	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// eventPhotosLocked copies the event's photos. Caller holds r.mu.
func (r *PhotoRepo) eventPhotosLocked(eventID string) []model.Photo {
	ids := r.byEvent[eventID]
	out := make([]model.Photo, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.photos[id].Clone())
	}
	return out
}
