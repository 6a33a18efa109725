package services

import (
	"context"

	"github.com/yeremiapane/club-manager/kds"
	"github.com/yeremiapane/club-manager/models"
	"github.com/yeremiapane/club-manager/repository"
	"github.com/yeremiapane/club-manager/utils"
)

type Earnings struct {
	Total    float64            `json:"total"`
	Entries  int                `json:"entries"`
	ByStatus map[string]int     `json:"by_status"`
	ByType   map[string]float64 `json:"by_type"`
}

type HistoryService struct {
	store repository.Store
	hub   Broadcaster
}

func NewHistoryService(store repository.Store, hub Broadcaster) *HistoryService {
	return &HistoryService{store: store, hub: orNop(hub)}
}

// ListHistory returns entries newest first.
func (s *HistoryService) ListHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	entries, err := s.store.ListHistory(ctx)
	if err != nil {
		return nil, storeErr("list history", err, nil)
	}
	return entries, nil
}

func (s *HistoryService) ClearHistory(ctx context.Context) (int64, error) {
	n, err := s.store.ClearHistory(ctx)
	if err != nil {
		return 0, storeErr("clear history", err, nil)
	}
	utils.InfoLogger.Infof("History cleared (%d entries)", n)
	s.hub.Broadcast(kds.EventHistoryUpdate, map[string]interface{}{"cleared": n})
	return n, nil
}

// Earnings totals the amounts collected. Canceled entries count towards
// ByStatus only.
func (s *HistoryService) Earnings(ctx context.Context) (*Earnings, error) {
	entries, err := s.ListHistory(ctx)
	if err != nil {
		return nil, err
	}
	e := &Earnings{
		Entries:  len(entries),
		ByStatus: make(map[string]int),
		ByType:   make(map[string]float64),
	}
	for _, h := range entries {
		e.ByStatus[h.Status]++
		if h.Status == models.HistoryStatusCanceled {
			continue
		}
		e.Total += h.Amount
		e.ByType[h.Type] += h.Amount
	}
	return e, nil
}
